package service

import (
	"bytes"
	"context"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/certtrack-service/internal/domain"
	"github.com/spec-kit/certtrack-service/internal/repository"
	apperrors "github.com/spec-kit/certtrack-service/pkg/util"
)

// EvaluationParams are the explicit inputs of one compliance evaluation.
// Role empty means all roles. The report is a pure function of these plus
// the profile set and the requirement registry.
type EvaluationParams struct {
	Role      string
	Year      int
	ShowDates bool
	SortBy    string
	SortDesc  bool
}

// ComplianceReport is the evaluation output. Columns lists the distinct
// certification names across the whole dataset in alphabetical order; every
// row's CertStatus has exactly these keys.
type ComplianceReport struct {
	Columns []string               `json:"columns"`
	Rows    []domain.ComplianceRow `json:"rows"`
}

// ComplianceStats summarizes the cached dataset.
type ComplianceStats struct {
	TotalUsers     int            `json:"totalUsers"`
	TotalCerts     int            `json:"totalCerts"`
	CertNameCounts map[string]int `json:"certNameCounts"`
}

// ComplianceService evaluates PEP compliance over the cached profiles. It
// only reads the store.
type ComplianceService struct {
	store    repository.ProfileStore
	registry *domain.RequirementRegistry
	logger   *zap.Logger
}

// NewComplianceService builds the service.
func NewComplianceService(store repository.ProfileStore, registry *domain.RequirementRegistry, logger *zap.Logger) *ComplianceService {
	return &ComplianceService{store: store, registry: registry, logger: logger}
}

// Evaluate loads the cache and computes the report for the given filters.
func (s *ComplianceService) Evaluate(ctx context.Context, params EvaluationParams) (*ComplianceReport, error) {
	profiles, err := s.store.Load(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	report := EvaluateProfiles(profiles, s.registry, params)
	if params.SortBy != "" {
		SortRows(report.Rows, params.SortBy, params.SortDesc)
	}
	return report, nil
}

// Stats computes dataset totals for the overview endpoint.
func (s *ComplianceService) Stats(ctx context.Context) (*ComplianceStats, error) {
	profiles, err := s.store.Load(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	stats := &ComplianceStats{CertNameCounts: map[string]int{}}
	stats.TotalUsers = len(profiles)
	for _, profile := range profiles {
		for _, cert := range profile.Certifications {
			stats.TotalCerts++
			stats.CertNameCounts[displayCertName(cert.Name)]++
		}
	}
	return stats, nil
}

// EvaluateProfiles is the pure evaluation core: one row per profile passing
// the role filter, against the column schema derived from every profile's
// certifications.
func EvaluateProfiles(profiles []domain.UserProfile, registry *domain.RequirementRegistry, params EvaluationParams) *ComplianceReport {
	columns := allUniqueCertNames(profiles)

	rows := []domain.ComplianceRow{}
	for _, profile := range profiles {
		if params.Role != "" && profile.Role != params.Role {
			continue
		}
		rows = append(rows, evaluateProfile(profile, columns, registry, params))
	}
	return &ComplianceReport{Columns: columns, Rows: rows}
}

func evaluateProfile(profile domain.UserProfile, columns []string, registry *domain.RequirementRegistry, params EvaluationParams) domain.ComplianceRow {
	certStatus := make(map[string]string, len(columns))
	for _, column := range columns {
		certStatus[column] = domain.CellNo
		for _, cert := range profile.Certifications {
			if displayCertName(cert.Name) != column {
				continue
			}
			if params.ShowDates && cert.EarnedAt != "" {
				certStatus[column] = domain.CellYes + " (" + cert.EarnedAt + ")"
			} else {
				certStatus[column] = domain.CellYes
			}
			break
		}
	}

	allMandatoryCompleted := true
	for _, required := range registry.RequirementsFor(profile.Role) {
		if !profile.HasCertification(required) {
			allMandatoryCompleted = false
			break
		}
	}

	certsThisYear := 0
	for _, cert := range profile.Certifications {
		if year, ok := cert.EarnedYear(); ok && year == params.Year {
			certsThisYear++
		}
	}

	name := profile.Name
	if name == "" {
		name = "N/A"
	}

	return domain.ComplianceRow{
		Name:          name,
		Email:         profile.Email,
		Role:          profile.Role,
		CertStatus:    certStatus,
		PepCompliant:  allMandatoryCompleted && certsThisYear >= 2,
		CertsThisYear: certsThisYear,
	}
}

// allUniqueCertNames collects the distinct certification names across every
// profile, alphabetically. The report schema depends on the whole dataset,
// not just the filtered users.
func allUniqueCertNames(profiles []domain.UserProfile) []string {
	seen := map[string]struct{}{}
	names := []string{}
	for _, profile := range profiles {
		for _, cert := range profile.Certifications {
			name := displayCertName(cert.Name)
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// displayCertName substitutes a placeholder for records with no name so they
// still get a column.
func displayCertName(name string) string {
	if name == "" {
		return "N/A"
	}
	return name
}

// SortRows stable-sorts rows by the given column. String columns compare
// lexicographically, certsThisYear numerically; Yes/No columns (cert columns
// and pepCompliant) order Yes before No in ascending order, with ties broken
// lexicographically so dated Yes cells stay grouped.
func SortRows(rows []domain.ComplianceRow, key string, descending bool) {
	less := func(a, b domain.ComplianceRow) bool {
		switch key {
		case "name":
			return a.Name < b.Name
		case "email":
			return a.Email < b.Email
		case "role":
			return a.Role < b.Role
		case "certsThisYear":
			return a.CertsThisYear < b.CertsThisYear
		case "pepCompliant":
			return a.PepCompliant && !b.PepCompliant
		default:
			return yesNoLess(a.CertStatus[key], b.CertStatus[key])
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if descending {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

func yesNoLess(a, b string) bool {
	aYes := strings.HasPrefix(a, domain.CellYes)
	bYes := strings.HasPrefix(b, domain.CellYes)
	if aYes != bYes {
		return aYes
	}
	return a < b
}

// ExportCSV renders the report in the layout the reporting UI exports:
// identity columns, one column per certification, then the summary columns.
func ExportCSV(report *ComplianceReport) []byte {
	var buf bytes.Buffer

	headers := append([]string{"Name", "Email", "Role"}, report.Columns...)
	headers = append(headers, "PEP Compliant", "Certs This Year")
	writeCSVLine(&buf, headers)

	for _, row := range report.Rows {
		fields := []string{row.Name, row.Email, row.Role}
		for _, column := range report.Columns {
			fields = append(fields, row.CertStatus[column])
		}
		pep := domain.CellNo
		if row.PepCompliant {
			pep = domain.CellYes
		}
		fields = append(fields, pep, strconv.Itoa(row.CertsThisYear))
		writeCSVLine(&buf, fields)
	}
	return buf.Bytes()
}

func writeCSVLine(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}
