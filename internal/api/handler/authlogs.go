package handler

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/repository"
)

type AuthorizationLogsHandler struct {
	logs   repository.AuthorizationLogRepositoryInterface
	logger *slog.Logger
}

func NewAuthorizationLogsHandler(logs repository.AuthorizationLogRepositoryInterface, logger *slog.Logger) *AuthorizationLogsHandler {
	return &AuthorizationLogsHandler{
		logs:   logs,
		logger: logger,
	}
}

func (h *AuthorizationLogsHandler) List(c *fiber.Ctx) error {
	filter := repository.AuthorizationLogFilter{
		Claimant: c.Query("claimant"),
		Limit:    c.QueryInt("limit", 100),
		Offset:   c.QueryInt("offset", 0),
	}

	if raw := c.Query("authorized"); raw != "" {
		authorized, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.ErrBadRequest
		}
		filter.Authorized = &authorized
	}

	logs, err := h.logs.List(c.Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": logs,
		"meta": fiber.Map{
			"limit":  filter.Limit,
			"offset": filter.Offset,
		},
	})
}
