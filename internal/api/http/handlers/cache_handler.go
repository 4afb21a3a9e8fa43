package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/certtrack-service/internal/api/dto"
	"github.com/spec-kit/certtrack-service/internal/domain"
	"github.com/spec-kit/certtrack-service/internal/service"
	apperrors "github.com/spec-kit/certtrack-service/pkg/util"
)

// CacheHandler exposes the cached profile collection.
type CacheHandler struct {
	profiles *service.ProfileService
}

// NewCacheHandler constructs handler.
func NewCacheHandler(profileService *service.ProfileService) *CacheHandler {
	return &CacheHandler{profiles: profileService}
}

// GetCache handles GET /api/cache.
func (h *CacheHandler) GetCache(c *fiber.Ctx) error {
	profiles, err := h.profiles.GetCache(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(profiles)
}

// GetUser handles GET /api/users/:email.
func (h *CacheHandler) GetUser(c *fiber.Ctx) error {
	email := c.Params("email")
	profile, err := h.profiles.GetUser(c.Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// PutUser handles PUT /api/users, the requirement-validated write.
func (h *CacheHandler) PutUser(c *fiber.Ctx) error {
	var req dto.PutUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	certs := make([]domain.CertificationRecord, 0, len(req.Certifications))
	for _, payload := range req.Certifications {
		certs = append(certs, domain.CertificationRecord{
			Provider:  payload.Provider,
			Name:      payload.Name,
			EarnedAt:  payload.EarnedAt,
			ExpiresAt: payload.ExpiresAt,
			Status:    domain.CertificationStatus(payload.Status),
			Meta:      payload.Meta,
		})
	}

	profile, err := h.profiles.PutUser(c.Context(), service.ProfileWriteInput{
		Email:          req.Email,
		Name:           req.Name,
		Role:           req.Role,
		SearchString:   req.SearchString,
		Certifications: certs,
	})
	if err != nil {
		return err
	}
	return c.JSON(profile)
}
