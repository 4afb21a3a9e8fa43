package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/certtrack-service/internal/api/dto"
	"github.com/spec-kit/certtrack-service/internal/service"
)

// SyncHandler triggers refresh passes against the credential source.
type SyncHandler struct {
	sync *service.SyncService
}

// NewSyncHandler constructs handler.
func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{sync: syncService}
}

// RefreshCache handles POST /api/refresh-cache. Per-user fetch failures are
// absorbed by the pass itself; the endpoint only fails when the store does.
func (h *SyncHandler) RefreshCache(c *fiber.Ctx) error {
	count, err := h.sync.RefreshCache(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.RefreshResponse{Success: true, Count: count})
}
