package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/certtrack-service/internal/domain"
)

func datedCert(name, earnedAt string) domain.CertificationRecord {
	c := cert(name)
	c.EarnedAt = earnedAt
	return c
}

func adminProfile(certs ...domain.CertificationRecord) domain.UserProfile {
	return domain.UserProfile{
		Email:          "a@x.com",
		Role:           "Admin",
		SearchString:   "a",
		Certifications: certs,
	}
}

func TestEvaluateMandatoryIncompleteDespiteTwoCertsThisYear(t *testing.T) {
	// two same-name records in the target year do not substitute for the
	// missing mandatory certification
	profiles := []domain.UserProfile{adminProfile(
		datedCert("Administrator", "2024-01-01"),
		datedCert("Administrator", "2024-06-01"),
	)}

	report := EvaluateProfiles(profiles, domain.NewRequirementRegistry(nil), EvaluationParams{Year: 2024})
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.Equal(t, 2, row.CertsThisYear)
	assert.False(t, row.PepCompliant)
}

func TestEvaluateCompliantWhenMandatoryMetAndTwoThisYear(t *testing.T) {
	profiles := []domain.UserProfile{adminProfile(
		datedCert("Administrator", "2024-01-01"),
		datedCert("Administrator", "2024-06-01"),
		datedCert("Advanced Administrator", "2023-01-01"),
	)}

	report := EvaluateProfiles(profiles, domain.NewRequirementRegistry(nil), EvaluationParams{Year: 2024})
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	// only 2024-dated records count toward the year rule
	assert.Equal(t, 2, row.CertsThisYear)
	assert.True(t, row.PepCompliant)
}

func TestEvaluateUnknownRoleStillNeedsTwoThisYear(t *testing.T) {
	profiles := []domain.UserProfile{{
		Email:          "u@x.com",
		Role:           "UnknownRole",
		Certifications: []domain.CertificationRecord{datedCert("Anything", "2024-02-02")},
	}}

	report := EvaluateProfiles(profiles, domain.NewRequirementRegistry(nil), EvaluationParams{Year: 2024})
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 1, report.Rows[0].CertsThisYear)
	assert.False(t, report.Rows[0].PepCompliant)
}

func TestEvaluateColumnsDeriveFromWholeDataset(t *testing.T) {
	profiles := []domain.UserProfile{
		{Email: "a@x.com", Role: "Admin", Certifications: []domain.CertificationRecord{datedCert("Zeta Cert", "2024-01-01")}},
		{Email: "b@x.com", Role: "Analyst", Certifications: []domain.CertificationRecord{datedCert("Alpha Cert", "2024-01-01")}},
	}

	// role filter narrows the rows but not the column schema
	report := EvaluateProfiles(profiles, domain.NewRequirementRegistry(nil), EvaluationParams{Role: "Admin", Year: 2024})
	assert.Equal(t, []string{"Alpha Cert", "Zeta Cert"}, report.Columns)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.Equal(t, "a@x.com", row.Email)
	assert.Equal(t, domain.CellNo, row.CertStatus["Alpha Cert"])
	assert.Equal(t, domain.CellYes, row.CertStatus["Zeta Cert"])
}

func TestEvaluateShowDatesAnnotatesHeldCerts(t *testing.T) {
	profiles := []domain.UserProfile{adminProfile(datedCert("Administrator", "2024-01-01"))}

	report := EvaluateProfiles(profiles, domain.NewRequirementRegistry(nil), EvaluationParams{Year: 2024, ShowDates: true})
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "Yes (2024-01-01)", report.Rows[0].CertStatus["Administrator"])
}

func TestEvaluateFallbacksForMissingNames(t *testing.T) {
	profiles := []domain.UserProfile{{
		Email:          "a@x.com",
		Role:           "Admin",
		Certifications: []domain.CertificationRecord{datedCert("", "2024-01-01")},
	}}

	report := EvaluateProfiles(profiles, domain.NewRequirementRegistry(nil), EvaluationParams{Year: 2024})
	assert.Equal(t, []string{"N/A"}, report.Columns)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "N/A", report.Rows[0].Name)
	assert.Equal(t, domain.CellYes, report.Rows[0].CertStatus["N/A"])
}

func TestEvaluateIsDeterministic(t *testing.T) {
	profiles := []domain.UserProfile{
		adminProfile(datedCert("Administrator", "2024-01-01")),
		{Email: "b@x.com", Role: "Analyst", Certifications: []domain.CertificationRecord{datedCert("Platform Developer I", "2023-05-05")}},
	}
	registry := domain.NewRequirementRegistry(nil)
	params := EvaluationParams{Year: 2024}

	first := EvaluateProfiles(profiles, registry, params)
	second := EvaluateProfiles(profiles, registry, params)
	assert.Equal(t, first, second)
}

func TestSortRowsYesBeforeNoAscending(t *testing.T) {
	rows := []domain.ComplianceRow{
		{Email: "no@x.com", CertStatus: map[string]string{"Administrator": "No"}},
		{Email: "dated@x.com", CertStatus: map[string]string{"Administrator": "Yes (2024-01-01)"}},
		{Email: "plain@x.com", CertStatus: map[string]string{"Administrator": "Yes"}},
	}

	SortRows(rows, "Administrator", false)
	assert.Equal(t, "plain@x.com", rows[0].Email)
	assert.Equal(t, "dated@x.com", rows[1].Email)
	assert.Equal(t, "no@x.com", rows[2].Email)

	SortRows(rows, "Administrator", true)
	assert.Equal(t, "no@x.com", rows[0].Email)
}

func TestSortRowsByNumericAndStringColumns(t *testing.T) {
	rows := []domain.ComplianceRow{
		{Email: "b@x.com", CertsThisYear: 3},
		{Email: "a@x.com", CertsThisYear: 1},
		{Email: "c@x.com", CertsThisYear: 2},
	}

	SortRows(rows, "certsThisYear", false)
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].CertsThisYear, rows[1].CertsThisYear, rows[2].CertsThisYear})

	SortRows(rows, "email", true)
	assert.Equal(t, "c@x.com", rows[0].Email)
}

func TestSortRowsPepCompliantBinary(t *testing.T) {
	rows := []domain.ComplianceRow{
		{Email: "no@x.com", PepCompliant: false},
		{Email: "yes@x.com", PepCompliant: true},
	}

	SortRows(rows, "pepCompliant", false)
	assert.Equal(t, "yes@x.com", rows[0].Email)
}

func TestSortRowsIsStable(t *testing.T) {
	rows := []domain.ComplianceRow{
		{Email: "first@x.com", Role: "Admin"},
		{Email: "second@x.com", Role: "Admin"},
		{Email: "third@x.com", Role: "Admin"},
	}

	SortRows(rows, "role", false)
	assert.Equal(t, "first@x.com", rows[0].Email)
	assert.Equal(t, "second@x.com", rows[1].Email)
	assert.Equal(t, "third@x.com", rows[2].Email)
}

func TestExportCSVLayoutAndQuoting(t *testing.T) {
	report := &ComplianceReport{
		Columns: []string{"Administrator"},
		Rows: []domain.ComplianceRow{{
			Name:          `Ada "The Admin"`,
			Email:         "a@x.com",
			Role:          "Admin",
			CertStatus:    map[string]string{"Administrator": "Yes"},
			PepCompliant:  true,
			CertsThisYear: 2,
		}},
	}

	out := string(ExportCSV(report))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Name","Email","Role","Administrator","PEP Compliant","Certs This Year"`, lines[0])
	assert.Equal(t, `"Ada ""The Admin""","a@x.com","Admin","Yes","Yes","2"`, lines[1])
}

func TestStatsCountsDataset(t *testing.T) {
	store := newMemStore(
		adminProfile(datedCert("Administrator", "2024-01-01"), datedCert("Advanced Administrator", "2023-01-01")),
		domain.UserProfile{Email: "b@x.com", Role: "Analyst", Certifications: []domain.CertificationRecord{datedCert("Administrator", "2022-01-01")}},
	)
	svc := NewComplianceService(store, domain.NewRequirementRegistry(nil), zap.NewNop())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalCerts)
	assert.Equal(t, 2, stats.CertNameCounts["Administrator"])
	assert.Equal(t, 1, stats.CertNameCounts["Advanced Administrator"])
}
