package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/schooldesk/backend/internal/config"
	"github.com/schooldesk/backend/internal/http/dto"
	"github.com/schooldesk/backend/internal/middleware"
	"github.com/schooldesk/backend/internal/services"
	"go.uber.org/zap"
)

type AuditHandler struct {
	audit    *services.AuditService
	rollback *services.RollbackService
	cfg      *config.Config
	log      *zap.Logger
}

func NewAuditHandler(audit *services.AuditService, rollback *services.RollbackService, cfg *config.Config, log *zap.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, rollback: rollback, cfg: cfg, log: log}
}

func (h *AuditHandler) ListLogs(c *fiber.Ctx) error {
	limit := h.cfg.LogListLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	entries, err := h.audit.List(c.Context(), limit, offset)
	if err != nil {
		h.log.Error("failed to list log entries", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "failed to list log entries"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *AuditHandler) GetLog(c *fiber.Ctx) error {
	entry, err := h.audit.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "log entry not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entry})
}

// Rollback undoes a single past action. Errors map onto the engine's
// taxonomy; nothing is retried here, the operator retries manually and must
// not fire concurrent retries for the same entry.
func (h *AuditHandler) Rollback(c *fiber.Ctx) error {
	logID := c.Params("id")
	actorID := middleware.GetAdminID(c)

	err := h.rollback.Rollback(c.Context(), logID, actorID)
	if err == nil {
		return c.JSON(dto.SuccessResponse{OK: true})
	}

	var nre *services.NotReversibleError
	var uae *services.UnsupportedActionError
	switch {
	case errors.Is(err, services.ErrLogNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.As(err, &nre), errors.As(err, &uae):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrMissingTargetID), errors.Is(err, services.ErrMissingRestoreData):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrBatchCommitFailed):
		h.log.Error("rollback commit failed", zap.String("log_id", logID), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
	default:
		h.log.Error("rollback failed", zap.String("log_id", logID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
}
