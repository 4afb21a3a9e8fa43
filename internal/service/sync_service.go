package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/certtrack-service/internal/domain"
	"github.com/spec-kit/certtrack-service/internal/events"
	"github.com/spec-kit/certtrack-service/internal/observability"
	"github.com/spec-kit/certtrack-service/internal/repository"
	"github.com/spec-kit/certtrack-service/internal/salesforce"
	apperrors "github.com/spec-kit/certtrack-service/pkg/util"
)

// SyncService refreshes every cached profile from the credential source in
// one pass. Fetches may run on a bounded worker pool; results are written
// into an index-addressed slice so persisted order always matches cache
// order and one user's failure never affects another.
type SyncService struct {
	store       repository.ProfileStore
	fetcher     salesforce.CredentialFetcher
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	concurrency int
	now         func() time.Time
}

// NewSyncService builds the service. Concurrency below 1 means sequential.
func NewSyncService(store repository.ProfileStore, fetcher salesforce.CredentialFetcher, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger, concurrency int) *SyncService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SyncService{
		store:       store,
		fetcher:     fetcher,
		dispatcher:  dispatcher,
		metrics:     metrics,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// RefreshCache runs a full sync pass and returns the number of users
// processed. A failed fetch clears that user's certifications; this drops
// last-known-good data on transient upstream failures and is logged per
// user so operators can see it happening.
func (s *SyncService) RefreshCache(ctx context.Context) (int, error) {
	profiles, err := s.store.Load(ctx)
	if err != nil {
		return 0, apperrors.NewInternalError(err)
	}

	results := make([]domain.UserProfile, len(profiles))
	var failures atomic.Int64

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = s.refreshOne(ctx, profiles[i], &failures)
			}
		}()
	}
	for i := range profiles {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	if err := s.store.Save(ctx, results); err != nil {
		return 0, apperrors.NewInternalError(err)
	}

	s.metrics.RecordSyncPass()
	s.publishSyncCompleted(ctx, len(results), int(failures.Load()))
	s.logger.Info("sync pass completed",
		zap.Int("processed", len(results)),
		zap.Int64("fetch_failures", failures.Load()))
	return len(results), nil
}

func (s *SyncService) refreshOne(ctx context.Context, profile domain.UserProfile, failures *atomic.Int64) domain.UserProfile {
	updated := profile
	record, err := s.fetcher.Fetch(ctx, profile.SearchString, profile.Role)
	if err != nil {
		failures.Add(1)
		s.metrics.RecordFetchFailure()
		updated.Certifications = []domain.CertificationRecord{}
		s.logger.Warn("fetch failed, clearing certifications",
			zap.String("email", profile.Email),
			zap.String("search_string", profile.SearchString))
	} else {
		updated.Certifications = salesforce.MapCertifications(record)
	}
	now := s.now()
	updated.LastUpdated = &now
	return updated
}

func (s *SyncService) publishSyncCompleted(ctx context.Context, processed, failures int) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSyncCompleted,
		Timestamp: s.now(),
		Payload: events.SyncCompletedPayload{
			Processed:     processed,
			FetchFailures: failures,
		},
	})
}
