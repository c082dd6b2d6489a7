package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/splitmyexpenses/backend/internal/models"
)

type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository creates the group repository.
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create stores a group with its members. The creator is always included in
// the member set even if the caller leaves it out.
func (r *GroupRepository) Create(ctx context.Context, name string, createdBy uuid.UUID, memberIDs []uuid.UUID) (models.Group, error) {
	var group models.Group

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return group, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO groups (name, created_by)
		 VALUES ($1, $2)
		 RETURNING id, name, created_by, created_at, updated_at`,
		name, createdBy,
	).Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return group, err
	}

	members := dedupeMembers(createdBy, memberIDs)
	for _, memberID := range members {
		if _, err := tx.Exec(ctx,
			`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`,
			group.ID, memberID,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return group, ErrInvalid
			}
			return group, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return group, err
	}

	group.Members = members
	return group, nil
}

// Get returns a group with its current member ids, but only to members.
func (r *GroupRepository) Get(ctx context.Context, groupID, userID uuid.UUID) (models.Group, error) {
	var group models.Group

	err := r.db.QueryRow(ctx,
		`SELECT g.id, g.name, g.created_by, g.created_at, g.updated_at
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE g.id = $1 AND m.user_id = $2`,
		groupID, userID,
	).Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return group, ErrNotFound
		}
		return group, err
	}

	group.Members, err = r.MemberIDs(ctx, groupID)
	return group, err
}

// ListByMember returns the groups the user belongs to.
func (r *GroupRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	rows, err := r.db.Query(ctx,
		`SELECT g.id, g.name, g.created_by, g.created_at, g.updated_at
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = $1
		 ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		members, err := r.MemberIDs(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Members = members
	}

	return groups, nil
}

// MemberIDs returns the group's current member ids. Split computations call
// this at computation time; membership is never snapshotted.
func (r *GroupRepository) MemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY joined_at`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// Update renames the group and replaces its member set. Only members may
// update; the creator always stays a member.
func (r *GroupRepository) Update(ctx context.Context, groupID, userID uuid.UUID, name string, memberIDs []uuid.UUID) (models.Group, error) {
	group, err := r.Get(ctx, groupID, userID)
	if err != nil {
		return group, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return group, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`UPDATE groups SET name = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, name, created_by, created_at, updated_at`,
		groupID, name,
	).Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return group, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM group_members WHERE group_id = $1`, groupID); err != nil {
		return group, err
	}

	members := dedupeMembers(group.CreatedBy, memberIDs)
	for _, memberID := range members {
		if _, err := tx.Exec(ctx,
			`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`,
			groupID, memberID,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return group, ErrInvalid
			}
			return group, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return group, err
	}

	group.Members = members
	return group, nil
}

// Delete removes a group. Only the creator may delete it; member rows and
// expense group references cascade per schema.
func (r *GroupRepository) Delete(ctx context.Context, groupID, createdBy uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM groups WHERE id = $1 AND created_by = $2`,
		groupID, createdBy,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func dedupeMembers(createdBy uuid.UUID, memberIDs []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{createdBy: {}}
	members := []uuid.UUID{createdBy}
	for _, id := range memberIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}
	return members
}
