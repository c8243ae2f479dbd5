package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/shield/internal/directory"
	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/repository"
)

type UsersHandler struct {
	service *directory.Service
	users   repository.UserRepositoryInterface
	logger  *slog.Logger
}

func NewUsersHandler(service *directory.Service, users repository.UserRepositoryInterface, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{
		service: service,
		users:   users,
		logger:  logger,
	}
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	user, err := h.service.Register(c.Context(), req.Username, req.Email, req.Role)
	if err != nil {
		return err
	}

	h.logger.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username),
	)

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest
	}

	user, err := h.users.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(user)
}

func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, err := h.users.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": users,
		"meta": fiber.Map{
			"limit":  limit,
			"offset": offset,
		},
	})
}

func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest
	}

	if err := h.users.Delete(c.Context(), id); err != nil {
		return err
	}

	h.logger.Info("user deleted", slog.String("user_id", id.String()))

	return c.SendStatus(fiber.StatusNoContent)
}
