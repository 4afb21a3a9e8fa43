package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/certtrack-service/internal/service"
	apperrors "github.com/spec-kit/certtrack-service/pkg/util"
)

// ImportHandler accepts CSV roster uploads.
type ImportHandler struct {
	imports *service.ImportService
}

// NewImportHandler constructs handler.
func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{imports: importService}
}

// UploadCSV handles POST /api/upload-csv with a multipart "file" part.
func (h *ImportHandler) UploadCSV(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file is required", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	result, err := h.imports.ImportCSV(c.Context(), string(content))
	if err != nil {
		return err
	}
	return c.JSON(result)
}
