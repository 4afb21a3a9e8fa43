package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/certtrack-service/internal/domain"
	"github.com/spec-kit/certtrack-service/internal/events"
	"github.com/spec-kit/certtrack-service/internal/repository"
	apperrors "github.com/spec-kit/certtrack-service/pkg/util"
)

// ImportRowError records one rejected CSV row. Row numbers are 1-based and
// include the header line, so the first data row is row 2.
type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult summarizes a bulk import batch.
type ImportResult struct {
	BatchID   string           `json:"batchId"`
	Processed int              `json:"processed"`
	Success   int              `json:"success"`
	Errors    []ImportRowError `json:"errors"`
}

// ImportService ingests CSV rosters into the cache. Rows carry
// email,role,searchString; imported profiles start with no certifications
// and a null lastUpdated until the next sync pass fills them in. Mandatory
// certification rules are intentionally not enforced here.
type ImportService struct {
	store      repository.ProfileStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewImportService builds the service.
func NewImportService(store repository.ProfileStore, dispatcher events.Dispatcher, logger *zap.Logger) *ImportService {
	return &ImportService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// ImportCSV processes every data row, collecting per-row errors instead of
// aborting, and persists the updated collection once at the end.
func (s *ImportService) ImportCSV(ctx context.Context, content string) (*ImportResult, error) {
	result := &ImportResult{
		BatchID: uuid.NewString(),
		Errors:  []ImportRowError{},
	}

	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) <= 1 {
		return result, nil
	}

	cache, err := s.store.Load(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	for i, line := range lines[1:] {
		result.Processed++
		entry, ok := parseImportRow(line)
		if !ok {
			// +2: 1-based numbering plus the skipped header.
			result.Errors = append(result.Errors, ImportRowError{Row: i + 2, Error: "Invalid row"})
			continue
		}
		cache = mergeImportedProfile(cache, entry)
		result.Success++
	}

	if err := s.store.Save(ctx, cache); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishImportCompleted(ctx, result)
	s.logger.Info("csv import completed",
		zap.String("batch_id", result.BatchID),
		zap.Int("processed", result.Processed),
		zap.Int("success", result.Success),
		zap.Int("failed", len(result.Errors)))
	return result, nil
}

// parseImportRow splits a raw comma-separated line. The row is valid iff all
// three fields are non-empty after trimming; splitting stays naive on
// purpose, matching how rosters for this system are produced.
func parseImportRow(line string) (domain.UserProfile, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 3 {
		return domain.UserProfile{}, false
	}
	email := strings.TrimSpace(fields[0])
	role := strings.TrimSpace(fields[1])
	searchString := strings.TrimSpace(fields[2])
	if email == "" || role == "" || searchString == "" {
		return domain.UserProfile{}, false
	}
	return domain.UserProfile{
		Email:          email,
		Role:           role,
		SearchString:   searchString,
		Certifications: []domain.CertificationRecord{},
		LastUpdated:    nil,
	}, true
}

// mergeImportedProfile upserts the entry, overwriting the row-supplied
// fields on an existing profile while keeping fields the row does not carry
// (display name).
func mergeImportedProfile(cache []domain.UserProfile, entry domain.UserProfile) []domain.UserProfile {
	for i := range cache {
		if cache[i].Email == entry.Email {
			entry.Name = cache[i].Name
			cache[i] = entry
			return cache
		}
	}
	return append(cache, entry)
}

func (s *ImportService) publishImportCompleted(ctx context.Context, result *ImportResult) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventImportCompleted,
		Timestamp: s.now(),
		Payload: events.ImportCompletedPayload{
			BatchID:   result.BatchID,
			Processed: result.Processed,
			Success:   result.Success,
			Failed:    len(result.Errors),
		},
	})
}
