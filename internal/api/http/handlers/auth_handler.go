package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/certtrack-service/internal/api/dto"
	"github.com/spec-kit/certtrack-service/internal/service"
	apperrors "github.com/spec-kit/certtrack-service/pkg/util"
)

// AuthHandler exposes the admin login endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	token, expiresAt, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: expiresAt}})
}
