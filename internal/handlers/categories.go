package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/splitmyexpenses/backend/internal/models"
	"example.com/splitmyexpenses/backend/internal/repository"
)

type CategoryHandler struct {
	Categories *repository.CategoryRepository
}

// NewCategoryHandler creates the category handler.
func NewCategoryHandler(categories *repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns the full category catalog.
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.Categories.List(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	response := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, toCategoryResponse(category))
	}

	return c.JSON(http.StatusOK, map[string][]CategoryResponse{"categories": response})
}

func toCategoryResponse(category models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Icon:      category.Icon,
		Color:     category.Color,
		CreatedAt: category.CreatedAt,
	}
}
