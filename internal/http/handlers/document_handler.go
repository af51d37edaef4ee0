package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/schooldesk/backend/internal/http/dto"
	"github.com/schooldesk/backend/internal/middleware"
	"github.com/schooldesk/backend/internal/services"
	"github.com/schooldesk/backend/internal/store"
	"go.uber.org/zap"
)

// DocumentHandler is the generic entity write surface. Entity-specific
// validation belongs to richer controllers; every write through here is
// captured in the action log with the snapshots a rollback needs.
type DocumentHandler struct {
	docs *services.DocumentService
	log  *zap.Logger
}

func NewDocumentHandler(docs *services.DocumentService, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, log: log}
}

func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	body, err := h.docs.Get(c.Context(), c.Params("entity"), c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "document not found"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: body})
}

func (h *DocumentHandler) SaveDocument(c *fiber.Ctx) error {
	var req dto.SaveDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "body is required"})
	}

	created, err := h.docs.Save(c.Context(), c.Params("entity"), c.Params("id"), req.Body, middleware.GetAdminID(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.SuccessResponse{OK: true, Data: dto.SaveDocumentResponse{Created: created}})
}

func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	err := h.docs.Delete(c.Context(), c.Params("entity"), c.Params("id"), middleware.GetAdminID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "document not found"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
