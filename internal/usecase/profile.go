package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/core/port"
	"github.com/tarasovcad/matchme-platform/internal/infra/config"
	"github.com/tarasovcad/matchme-platform/internal/repository"
)

var (
	// ErrProfileNotFound indicates no visible profile matches the request.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileForbidden indicates the actor may not modify the profile.
	ErrProfileForbidden = errors.New("profile does not belong to actor")
)

const (
	maxNameLength    = 100
	maxTaglineLength = 160
	maxAboutLength   = 4000
	maxSkills        = 20
)

// UpdateProfileInput captures the editable profile fields.
type UpdateProfileInput struct {
	Name       string
	Tagline    *string
	About      *string
	Skills     []string
	Location   *string
	Visibility domain.ProfileVisibility
}

// ProfileService handles profile reads and edits.
type ProfileService struct {
	profiles port.ProfileRepository
	limiter  *Limiter
	cache    *ReadThroughCache
	ttls     config.CacheSettings
	logger   *zap.Logger
}

// NewProfileService constructs ProfileService.
func NewProfileService(profiles port.ProfileRepository, limiter *Limiter, cache *ReadThroughCache, ttls config.CacheSettings, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{profiles: profiles, limiter: limiter, cache: cache, ttls: ttls, logger: logger}
}

// GetProfile returns the profile behind username. Private profiles are only
// visible to their owner; everyone else sees a not-found answer so the
// response does not leak that the username exists.
func (s *ProfileService) GetProfile(ctx context.Context, viewerID, username string) (*domain.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrProfileNotFound
	}

	profile, err := cachedJSON(ctx, s.cache, profileKey(username), s.ttls.ProfileTTL, func(ctx context.Context) (*domain.Profile, error) {
		return s.profiles.GetByUsername(ctx, username)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("lookup profile: %w", err)
	}

	if !profile.IsPublic() && profile.ID != viewerID {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// GetProfileStats returns the aggregate counters for a profile.
func (s *ProfileService) GetProfileStats(ctx context.Context, profileID string) (*domain.ProfileStats, error) {
	if strings.TrimSpace(profileID) == "" {
		return nil, ErrProfileNotFound
	}

	stats, err := cachedJSON(ctx, s.cache, profileStatsKey(profileID), s.ttls.StatsTTL, func(ctx context.Context) (*domain.ProfileStats, error) {
		return s.profiles.Stats(ctx, profileID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile stats: %w", err)
	}
	return stats, nil
}

// ListProfiles returns a page of public profiles. Only the unfiltered
// listing is cached; filtered variants vary too much to be worth keeping.
func (s *ProfileService) ListProfiles(ctx context.Context, filter domain.ProfileFilter, page domain.Page) ([]domain.Profile, error) {
	page = normalizePage(page)

	if !filter.IsZero() {
		profiles, err := s.profiles.List(ctx, filter, page)
		if err != nil {
			return nil, fmt.Errorf("list profiles: %w", err)
		}
		return profiles, nil
	}

	profiles, err := cachedJSON(ctx, s.cache, profilePageKey(page.Number, page.PerPage), s.ttls.ListingTTL, func(ctx context.Context) ([]domain.Profile, error) {
		return s.profiles.List(ctx, filter, page)
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// UpdateProfile applies the edit after the rate limiter admits it. The
// cached profile entry is invalidated only after the row is written, so a
// failed write never evicts a still-correct entry.
func (s *ProfileService) UpdateProfile(ctx context.Context, subject Subject, input UpdateProfileInput) (*domain.Profile, error) {
	if subject.UserID == "" {
		return nil, ErrProfileForbidden
	}
	if err := validateProfileInput(input); err != nil {
		return nil, err
	}

	if decision := s.limiter.Check(ctx, "profile.update", subject); !decision.Allowed {
		return nil, &ThrottledError{Decision: decision}
	}

	current, err := s.profiles.GetByID(ctx, subject.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("lookup profile: %w", err)
	}

	updated := *current
	updated.Name = strings.TrimSpace(input.Name)
	updated.Tagline = input.Tagline
	updated.About = input.About
	updated.Skills = input.Skills
	updated.Location = input.Location
	if input.Visibility != "" {
		updated.Visibility = input.Visibility
	}

	if err := s.profiles.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.cache.Invalidate(ctx, profileKey(updated.Username), profileStatsKey(updated.ID))
	return &updated, nil
}

func validateProfileInput(input UpdateProfileInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("name exceeds %d characters", maxNameLength)
	}
	if input.Tagline != nil && len(*input.Tagline) > maxTaglineLength {
		return fmt.Errorf("tagline exceeds %d characters", maxTaglineLength)
	}
	if input.About != nil && len(*input.About) > maxAboutLength {
		return fmt.Errorf("about exceeds %d characters", maxAboutLength)
	}
	if len(input.Skills) > maxSkills {
		return fmt.Errorf("at most %d skills are allowed", maxSkills)
	}
	switch input.Visibility {
	case "", domain.ProfileVisibilityPublic, domain.ProfileVisibilityPrivate:
	default:
		return fmt.Errorf("visibility %q is not valid", input.Visibility)
	}
	return nil
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

func normalizePage(page domain.Page) domain.Page {
	if page.Number < 1 {
		page.Number = 1
	}
	if page.PerPage < 1 {
		page.PerPage = defaultPerPage
	}
	if page.PerPage > maxPerPage {
		page.PerPage = maxPerPage
	}
	return page
}
