package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/certtrack-service/internal/api/dto"
	"github.com/spec-kit/certtrack-service/internal/domain"
	"github.com/spec-kit/certtrack-service/internal/service"
	apperrors "github.com/spec-kit/certtrack-service/pkg/util"
)

// ComplianceHandler serves compliance reports, exports and stats.
type ComplianceHandler struct {
	compliance *service.ComplianceService
	registry   *domain.RequirementRegistry
}

// NewComplianceHandler constructs handler.
func NewComplianceHandler(complianceService *service.ComplianceService, registry *domain.RequirementRegistry) *ComplianceHandler {
	return &ComplianceHandler{compliance: complianceService, registry: registry}
}

// Evaluate handles GET /api/compliance.
func (h *ComplianceHandler) Evaluate(c *fiber.Ctx) error {
	params, err := parseEvaluationQuery(c)
	if err != nil {
		return err
	}

	report, err := h.compliance.Evaluate(c.Context(), params)
	if err != nil {
		return err
	}

	rows := make([]dto.ComplianceRowResponse, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, complianceRowResponse(row))
	}
	return c.JSON(dto.ComplianceResponse{
		Columns: report.Columns,
		Rows:    rows,
		Year:    params.Year,
		Role:    params.Role,
	})
}

// Export handles GET /api/compliance/export, returning the report as CSV.
func (h *ComplianceHandler) Export(c *fiber.Ctx) error {
	params, err := parseEvaluationQuery(c)
	if err != nil {
		return err
	}

	report, err := h.compliance.Evaluate(c.Context(), params)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="compliance_report.csv"`)
	return c.Send(service.ExportCSV(report))
}

// Stats handles GET /api/stats.
func (h *ComplianceHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.compliance.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// ListRoles handles GET /api/roles, returning the full requirement map.
func (h *ComplianceHandler) ListRoles(c *fiber.Ctx) error {
	return c.JSON(h.registry.Snapshot())
}

func parseEvaluationQuery(c *fiber.Ctx) (service.EvaluationParams, error) {
	params := service.EvaluationParams{
		Role:      c.Query("role"),
		Year:      time.Now().Year(),
		ShowDates: c.QueryBool("showDates"),
		SortBy:    c.Query("sortBy"),
		SortDesc:  c.Query("sortDir") == "desc",
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return params, apperrors.NewValidationError("invalid year", map[string]any{"year": yearStr})
		}
		params.Year = year
	}
	return params, nil
}

func complianceRowResponse(row domain.ComplianceRow) dto.ComplianceRowResponse {
	pep := domain.CellNo
	if row.PepCompliant {
		pep = domain.CellYes
	}
	return dto.ComplianceRowResponse{
		Name:          row.Name,
		Email:         row.Email,
		Role:          row.Role,
		CertStatus:    row.CertStatus,
		PepCompliant:  pep,
		CertsThisYear: row.CertsThisYear,
	}
}
