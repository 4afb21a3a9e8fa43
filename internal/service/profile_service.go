package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/certtrack-service/internal/domain"
	"github.com/spec-kit/certtrack-service/internal/events"
	"github.com/spec-kit/certtrack-service/internal/repository"
	apperrors "github.com/spec-kit/certtrack-service/pkg/util"
)

// ProfileService serves cache reads and the requirement-validated write.
// This is the only write path that enforces mandatory certifications; sync
// and bulk import deliberately bypass it.
type ProfileService struct {
	store      repository.ProfileStore
	registry   *domain.RequirementRegistry
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewProfileService builds the service.
func NewProfileService(store repository.ProfileStore, registry *domain.RequirementRegistry, dispatcher events.Dispatcher, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		store:      store,
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// GetCache returns the full cached collection in stored order.
func (s *ProfileService) GetCache(ctx context.Context) ([]domain.UserProfile, error) {
	profiles, err := s.store.Load(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return profiles, nil
}

// GetUser looks up a single profile by exact email.
func (s *ProfileService) GetUser(ctx context.Context, email string) (*domain.UserProfile, error) {
	profile, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return profile, nil
}

// ProfileWriteInput carries an explicit profile write.
type ProfileWriteInput struct {
	Email          string
	Name           string
	Role           string
	SearchString   string
	Certifications []domain.CertificationRecord
}

// PutUser validates the write against the role's mandatory certifications
// and upserts the profile. When updating an existing profile without a
// search string, the prior one is retained; everything else is a full
// replace.
func (s *ProfileService) PutUser(ctx context.Context, input ProfileWriteInput) (*domain.UserProfile, error) {
	email := strings.TrimSpace(input.Email)
	role := strings.TrimSpace(input.Role)
	if email == "" || role == "" {
		return nil, apperrors.NewValidationError("email and role required", nil)
	}

	required := s.registry.RequirementsFor(role)
	missing := missingCertifications(required, input.Certifications)
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(
			"Missing mandatory certifications: "+strings.Join(missing, ", "),
			map[string]any{"missing": missing})
	}

	existing, err := s.store.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	searchString := input.SearchString
	if searchString == "" && existing != nil {
		searchString = existing.SearchString
	}
	certs := input.Certifications
	if certs == nil {
		certs = []domain.CertificationRecord{}
	}

	now := s.now()
	profile := domain.UserProfile{
		Email:          email,
		Name:           input.Name,
		Role:           role,
		SearchString:   searchString,
		Certifications: certs,
		LastUpdated:    &now,
	}

	if err := s.store.Upsert(ctx, profile); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishProfileUpdated(ctx, profile)
	s.logger.Info("profile upserted",
		zap.String("email", profile.Email),
		zap.String("role", profile.Role),
		zap.Int("certifications", len(profile.Certifications)))
	return &profile, nil
}

func (s *ProfileService) publishProfileUpdated(ctx context.Context, profile domain.UserProfile) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventProfileUpdated,
		Email:     profile.Email,
		Timestamp: s.now(),
		Payload: events.ProfileUpdatedPayload{
			Role:               profile.Role,
			CertificationCount: len(profile.Certifications),
		},
	})
}

// missingCertifications returns the required names absent from the supplied
// records, preserving requirement order.
func missingCertifications(required []string, certs []domain.CertificationRecord) []string {
	held := make(map[string]struct{}, len(certs))
	for _, cert := range certs {
		held[cert.Name] = struct{}{}
	}
	missing := []string{}
	for _, name := range required {
		if _, ok := held[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
