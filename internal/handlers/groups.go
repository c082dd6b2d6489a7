package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/splitmyexpenses/backend/internal/auth"
	"example.com/splitmyexpenses/backend/internal/models"
	"example.com/splitmyexpenses/backend/internal/notifications"
	"example.com/splitmyexpenses/backend/internal/repository"
)

type GroupHandler struct {
	Groups   *repository.GroupRepository
	Notifier *notifications.Hub
}

// NewGroupHandler creates the group handler.
func NewGroupHandler(groups *repository.GroupRepository, notifier *notifications.Hub) *GroupHandler {
	return &GroupHandler{Groups: groups, Notifier: notifier}
}

type GroupRequest struct {
	Name    string      `json:"name" validate:"required,max=200"`
	Members []uuid.UUID `json:"members"`
}

type GroupResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	CreatedBy uuid.UUID   `json:"created_by"`
	Members   []uuid.UUID `json:"members"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Create creates a group. The creator is always a member.
func (h *GroupHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req GroupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}

	group, err := h.Groups.Create(c.Request().Context(), name, userID, req.Members)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "unknown member")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, toGroupResponse(group))
}

// List returns the groups the user belongs to.
func (h *GroupHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	groups, err := h.Groups.ListByMember(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	response := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		response = append(response, toGroupResponse(group))
	}

	return c.JSON(http.StatusOK, map[string][]GroupResponse{"groups": response})
}

// Get returns one group the user is a member of.
func (h *GroupHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid group id")
	}

	group, err := h.Groups.Get(c.Request().Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "group not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toGroupResponse(group))
}

// Update renames a group and replaces its member set. Members only; the
// creator always stays in the group.
func (h *GroupHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid group id")
	}

	var req GroupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}

	group, err := h.Groups.Update(c.Request().Context(), groupID, userID, name, req.Members)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "group not found")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "unknown member")
		}
		return serverError(c)
	}

	if h.Notifier != nil {
		h.Notifier.PublishToMany(group.Members, notifications.Event{
			Type: notifications.EventGroupUpdated,
			Data: map[string]string{"group_id": group.ID.String()},
		})
	}

	return c.JSON(http.StatusOK, toGroupResponse(group))
}

// Delete removes a group. Creator only; expenses in the group cascade.
func (h *GroupHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid group id")
	}

	if err := h.Groups.Delete(c.Request().Context(), groupID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "group not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func toGroupResponse(group models.Group) GroupResponse {
	members := group.Members
	if members == nil {
		members = []uuid.UUID{}
	}
	return GroupResponse{
		ID:        group.ID,
		Name:      group.Name,
		CreatedBy: group.CreatedBy,
		Members:   members,
		CreatedAt: group.CreatedAt,
		UpdatedAt: group.UpdatedAt,
	}
}
