package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/core/port"
	"github.com/tarasovcad/matchme-platform/internal/repository"
)

// memoryRateLimitStore mirrors the sliding-window semantics of the Redis
// store in plain Go so limiter behavior can be tested deterministically.
type memoryRateLimitStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	err     error

	allowCalls int
}

func newMemoryRateLimitStore() *memoryRateLimitStore {
	return &memoryRateLimitStore{entries: make(map[string][]time.Time)}
}

func (s *memoryRateLimitStore) Allow(_ context.Context, identifier string, quota int, window time.Duration, at time.Time) (port.WindowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.allowCalls++
	if s.err != nil {
		return port.WindowState{}, s.err
	}

	cutoff := at.Add(-window)
	kept := s.entries[identifier][:0]
	for _, t := range s.entries[identifier] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	state := port.WindowState{Count: len(kept)}
	if len(kept) < quota {
		kept = append(kept, at)
		state.Admitted = true
		state.Count = len(kept)
	}
	s.entries[identifier] = kept

	if len(kept) > 0 {
		state.Oldest = kept[0]
		state.HasOldest = true
	}
	return state, nil
}

type limiterMetricsRecorder struct {
	mu       sync.Mutex
	denials  map[string]int
	failOpen int
}

func newLimiterMetricsRecorder() *limiterMetricsRecorder {
	return &limiterMetricsRecorder{denials: make(map[string]int)}
}

func (m *limiterMetricsRecorder) IncDenial(operation, scope string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denials[operation+"/"+scope]++
}

func (m *limiterMetricsRecorder) IncFailOpen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOpen++
}

// fakeCache is an in-memory port.Cache with injectable failures.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	delErr  error
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	value, ok := c.data[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return value, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.delErr != nil {
		return c.delErr
	}
	for _, key := range keys {
		delete(c.data, key)
		c.deleted = append(c.deleted, key)
	}
	return nil
}

// allowAllLimiter returns a limiter whose store always admits.
func allowAllLimiter() *Limiter {
	rules := map[string][]Rule{
		"profile.update":     {{Scope: ScopeUser, Quota: 100, Window: time.Minute}},
		"project.create":     {{Scope: ScopeUser, Quota: 100, Window: time.Minute}},
		"project.update":     {{Scope: ScopeUser, Quota: 100, Window: time.Minute}},
		"project.delete":     {{Scope: ScopeUser, Quota: 100, Window: time.Minute}},
		"interaction.toggle": {{Scope: ScopeUser, Quota: 100, Window: time.Minute}},
		"invitation.send":    {{Scope: ScopeUser, Quota: 100, Window: time.Minute}},
		"invitation.respond": {{Scope: ScopeUser, Quota: 100, Window: time.Minute}},
	}
	return NewLimiter(newMemoryRateLimitStore(), rules)
}

// denyAllLimiter returns a limiter whose quotas are already exhausted for
// the given operation and user.
func denyAllLimiter(operation, userID string) *Limiter {
	store := newMemoryRateLimitStore()
	rules := map[string][]Rule{
		operation: {{Scope: ScopeUser, Quota: 1, Window: time.Hour}},
	}
	limiter := NewLimiter(store, rules)
	limiter.Check(context.Background(), operation, Subject{UserID: userID})
	return limiter
}

type fakeInteractionRepository struct {
	followActive   map[string]bool
	favoriteActive map[string]bool
	toggleErr      error
	toggleCalls    int
	now            time.Time
}

func newFakeInteractionRepository() *fakeInteractionRepository {
	return &fakeInteractionRepository{
		followActive:   make(map[string]bool),
		favoriteActive: make(map[string]bool),
		now:            time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *fakeInteractionRepository) ToggleFollow(_ context.Context, followerID, followingID string) (domain.ToggleOutcome, error) {
	r.toggleCalls++
	if r.toggleErr != nil {
		return domain.ToggleOutcome{}, r.toggleErr
	}
	key := followerID + ":" + followingID
	r.followActive[key] = !r.followActive[key]
	return domain.ToggleOutcome{Active: r.followActive[key], ChangedAt: r.now}, nil
}

func (r *fakeInteractionRepository) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	return r.followActive[followerID+":"+followingID], nil
}

func (r *fakeInteractionRepository) ToggleFavorite(_ context.Context, userID, projectID string) (domain.ToggleOutcome, error) {
	r.toggleCalls++
	if r.toggleErr != nil {
		return domain.ToggleOutcome{}, r.toggleErr
	}
	key := userID + ":" + projectID
	r.favoriteActive[key] = !r.favoriteActive[key]
	return domain.ToggleOutcome{Active: r.favoriteActive[key], ChangedAt: r.now}, nil
}

func (r *fakeInteractionRepository) IsFavorite(_ context.Context, userID, projectID string) (bool, error) {
	return r.favoriteActive[userID+":"+projectID], nil
}

type fakeProfileRepository struct {
	profiles map[string]*domain.Profile
	updated  []domain.Profile
	listErr  error
	lists    int
}

func newFakeProfileRepository(profiles ...domain.Profile) *fakeProfileRepository {
	repo := &fakeProfileRepository{profiles: make(map[string]*domain.Profile)}
	for i := range profiles {
		repo.profiles[profiles[i].ID] = &profiles[i]
	}
	return repo
}

func (r *fakeProfileRepository) GetByUsername(_ context.Context, username string) (*domain.Profile, error) {
	for _, p := range r.profiles {
		if p.Username == username {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProfileRepository) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	if p, ok := r.profiles[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProfileRepository) List(_ context.Context, _ domain.ProfileFilter, _ domain.Page) ([]domain.Profile, error) {
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Profile
	for _, p := range r.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProfileRepository) Update(_ context.Context, profile domain.Profile) error {
	if _, ok := r.profiles[profile.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := profile
	r.profiles[profile.ID] = &copied
	r.updated = append(r.updated, profile)
	return nil
}

func (r *fakeProfileRepository) Stats(_ context.Context, profileID string) (*domain.ProfileStats, error) {
	if _, ok := r.profiles[profileID]; !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.ProfileStats{ProfileID: profileID, Followers: 3, Following: 2, Projects: 1}, nil
}

type fakeProjectRepository struct {
	projects  map[string]*domain.Project
	created   []domain.Project
	updated   []domain.Project
	deleted   []string
	createErr error
	statsHits int
	reads     int
}

func newFakeProjectRepository(projects ...domain.Project) *fakeProjectRepository {
	repo := &fakeProjectRepository{projects: make(map[string]*domain.Project)}
	for i := range projects {
		repo.projects[projects[i].ID] = &projects[i]
	}
	return repo
}

func (r *fakeProjectRepository) Create(_ context.Context, project domain.Project) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, p := range r.projects {
		if p.Slug == project.Slug {
			return repository.ErrAlreadyExists
		}
	}
	copied := project
	r.projects[project.ID] = &copied
	r.created = append(r.created, project)
	return nil
}

func (r *fakeProjectRepository) GetBySlug(_ context.Context, slug string) (*domain.Project, error) {
	r.reads++
	for _, p := range r.projects {
		if p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProjectRepository) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.reads++
	if p, ok := r.projects[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProjectRepository) List(_ context.Context, _ domain.ProjectFilter, _ domain.Page) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range r.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProjectRepository) Update(_ context.Context, project domain.Project) error {
	if _, ok := r.projects[project.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := project
	r.projects[project.ID] = &copied
	r.updated = append(r.updated, project)
	return nil
}

func (r *fakeProjectRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.projects, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeProjectRepository) ListRoles(_ context.Context, _ string) ([]domain.TeamRole, error) {
	return nil, nil
}

func (r *fakeProjectRepository) Stats(_ context.Context, projectID string) (*domain.ProjectStats, error) {
	r.statsHits++
	return &domain.ProjectStats{ProjectID: projectID, Followers: 5, Favorites: 4, Members: 2, OpenRoles: 1}, nil
}

type fakeInvitationRepository struct {
	invitations map[string]*domain.Invitation
	created     []domain.Invitation
	statuses    map[string]domain.InvitationStatus
	reads       int
}

func newFakeInvitationRepository(invitations ...domain.Invitation) *fakeInvitationRepository {
	repo := &fakeInvitationRepository{
		invitations: make(map[string]*domain.Invitation),
		statuses:    make(map[string]domain.InvitationStatus),
	}
	for i := range invitations {
		repo.invitations[invitations[i].ID] = &invitations[i]
	}
	return repo
}

func (r *fakeInvitationRepository) Create(_ context.Context, invitation domain.Invitation) error {
	copied := invitation
	r.invitations[invitation.ID] = &copied
	r.created = append(r.created, invitation)
	return nil
}

func (r *fakeInvitationRepository) GetByID(_ context.Context, id string) (*domain.Invitation, error) {
	r.reads++
	if inv, ok := r.invitations[id]; ok {
		copied := *inv
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeInvitationRepository) FindPending(_ context.Context, projectID, inviteeID string) (*domain.Invitation, error) {
	r.reads++
	for _, inv := range r.invitations {
		if inv.ProjectID == projectID && inv.InviteeID == inviteeID && inv.IsPending() {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeInvitationRepository) ListForInvitee(_ context.Context, inviteeID string, _ domain.Page) ([]domain.Invitation, error) {
	var out []domain.Invitation
	for _, inv := range r.invitations {
		if inv.InviteeID == inviteeID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *fakeInvitationRepository) UpdateStatus(_ context.Context, id string, status domain.InvitationStatus) error {
	inv, ok := r.invitations[id]
	if !ok || !inv.IsPending() {
		return repository.ErrNotFound
	}
	inv.Status = status
	r.statuses[id] = status
	return nil
}

type fakeEventPublisher struct {
	mu         sync.Mutex
	follows    []domain.FollowChangedEvent
	favorites  []domain.FavoriteChangedEvent
	sent       []domain.InvitationSentEvent
	answered   []domain.InvitationAnsweredEvent
	projects   []domain.ProjectChangedEvent
	publishErr error
}

func (p *fakeEventPublisher) PublishFollowChanged(_ context.Context, event domain.FollowChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.follows = append(p.follows, event)
	return nil
}

func (p *fakeEventPublisher) PublishFavoriteChanged(_ context.Context, event domain.FavoriteChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.favorites = append(p.favorites, event)
	return nil
}

func (p *fakeEventPublisher) PublishInvitationSent(_ context.Context, event domain.InvitationSentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.sent = append(p.sent, event)
	return nil
}

func (p *fakeEventPublisher) PublishInvitationAnswered(_ context.Context, event domain.InvitationAnsweredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.answered = append(p.answered, event)
	return nil
}

func (p *fakeEventPublisher) PublishProjectChanged(_ context.Context, event domain.ProjectChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.projects = append(p.projects, event)
	return nil
}
