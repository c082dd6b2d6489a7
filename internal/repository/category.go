package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/splitmyexpenses/backend/internal/classify"
	"example.com/splitmyexpenses/backend/internal/models"
)

type CategoryRepository struct {
	db *pgxpool.Pool
}

// NewCategoryRepository creates the category repository.
func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// seedQuerier is the slice of the pool the seeder needs. Tests substitute an
// in-memory fake to exercise the created/updated/no-op counting.
type seedQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Seed upserts the fixed catalog by name: missing categories are created,
// existing ones get their icon/color refreshed only when they differ. Running
// it twice with the same catalog reports zero updates the second time.
func (r *CategoryRepository) Seed(ctx context.Context) (created, updated int, err error) {
	return seedCatalog(ctx, r.db)
}

func seedCatalog(ctx context.Context, db seedQuerier) (created, updated int, err error) {
	for _, seed := range classify.Catalog {
		var outcome string
		err = db.QueryRow(ctx,
			`INSERT INTO categories (name, icon, color)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO UPDATE
			 SET icon = EXCLUDED.icon, color = EXCLUDED.color
			 WHERE categories.icon IS DISTINCT FROM EXCLUDED.icon
			    OR categories.color IS DISTINCT FROM EXCLUDED.color
			 RETURNING CASE WHEN xmax = 0 THEN 'created' ELSE 'updated' END`,
			seed.Name, seed.Icon, seed.Color,
		).Scan(&outcome)
		if err != nil {
			// No row returned means the conflict update matched nothing:
			// the category already exists with identical display fields.
			if errors.Is(err, pgx.ErrNoRows) {
				err = nil
				continue
			}
			return created, updated, err
		}

		switch outcome {
		case "created":
			created++
		case "updated":
			updated++
		}
	}

	return created, updated, nil
}

// List returns the catalog ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, icon, color, created_at
		 FROM categories
		 ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Icon, &category.Color, &category.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

// GetByName returns a category by its canonical name.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (models.Category, error) {
	var category models.Category

	err := r.db.QueryRow(ctx,
		`SELECT id, name, icon, color, created_at
		 FROM categories
		 WHERE name = $1`,
		name,
	).Scan(&category.ID, &category.Name, &category.Icon, &category.Color, &category.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category, ErrNotFound
		}
		return category, err
	}

	return category, nil
}

// NamesByID resolves category ids to names for breakdown labelling.
func (r *CategoryRepository) NamesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, name FROM categories WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return names, nil
}
