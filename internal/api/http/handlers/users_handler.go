package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/vex-labs/ticket-view/internal/api/dto"
	"github.com/vex-labs/ticket-view/internal/domain"
	"github.com/vex-labs/ticket-view/internal/service"
	apperrors "github.com/vex-labs/ticket-view/pkg/util/errorutil"
)

// UsersHandler serves users and forwards user commands.
type UsersHandler struct {
	service *service.ViewService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(viewService *service.ViewService) *UsersHandler {
	return &UsersHandler{service: viewService}
}

// ListUsers GET /users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUser GET /users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	id, err := idParam(c, "user")
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(*user)})
}

// CreateUser POST /users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.CreateUser(c.UserContext(), req.Name, req.Email)
	if err != nil {
		return err
	}
	return userResult(c, http.StatusCreated, user, 0)
}

// UpdateUser PUT /users/:id.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := idParam(c, "user")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.UpdateUser(c.UserContext(), id, service.UserEdit{Name: req.Name, Email: req.Email})
	if err != nil {
		return err
	}
	return userResult(c, http.StatusOK, user, id)
}

// DeleteUser DELETE /users/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := idParam(c, "user")
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return userResult(c, http.StatusOK, nil, id)
}

// userResult writes the echoed user, or a plain acknowledgement when the
// backend echoed none.
func userResult(c *fiber.Ctx, status int, user *domain.UserView, id int64) error {
	if user == nil || user.ID <= 0 {
		return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": dto.CommandAccepted{UserID: id, Status: "accepted"}})
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.NewUserResponse(*user)})
}
