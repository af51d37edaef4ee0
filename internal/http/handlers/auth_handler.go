package handlers

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/schooldesk/backend/internal/auth"
	"github.com/schooldesk/backend/internal/config"
	"github.com/schooldesk/backend/internal/http/dto"
	"go.uber.org/zap"
)

type AuthHandler struct {
	cfg *config.Config
	log *zap.Logger
}

func NewAuthHandler(cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, log: log}
}

// Login exchanges the deployment API key for an admin session token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	if h.cfg.AdminAPIKey == "" {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "login is disabled"})
	}
	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.cfg.AdminAPIKey)) != 1 {
		h.log.Debug("login rejected: bad api key")
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid api key"})
	}

	name := req.Name
	if name == "" {
		name = "admin"
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, "admin:"+name, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to sign token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to sign token"})
	}

	return c.JSON(dto.AuthResponse{Token: token})
}
