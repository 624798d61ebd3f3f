package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/models"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/repository"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Friends == nil {
		u.Friends = []primitive.ObjectID{}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.GoogleID != "" && u.GoogleID == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) AddFriend(_ context.Context, userID, friendID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, f := range u.Friends {
		if f == friendID {
			return nil
		}
	}
	u.Friends = append(u.Friends, friendID)
	return nil
}

func (r *fakeUserRepo) FindOnboardedExcluding(_ context.Context, exclude []primitive.ObjectID) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	excluded := make(map[primitive.ObjectID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	var out []models.User
	for _, u := range r.users {
		if u.IsOnboarded && !excluded[u.ID] {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

// fakeFriendRepo is an in-memory FriendRequestRepository.
type fakeFriendRepo struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.FriendRequest
}

func newFakeFriendRepo() *fakeFriendRepo {
	return &fakeFriendRepo{requests: make(map[primitive.ObjectID]*models.FriendRequest)}
}

func (r *fakeFriendRepo) Create(_ context.Context, fr *models.FriendRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fr.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	fr.CreatedAt = now
	fr.UpdatedAt = now
	cp := *fr
	r.requests[fr.ID] = &cp
	return nil
}

func (r *fakeFriendRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fr, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *fr
	return &cp, nil
}

func (r *fakeFriendRepo) FindBetween(_ context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fr := range r.requests {
		if (fr.Sender == a && fr.Recipient == b) || (fr.Sender == b && fr.Recipient == a) {
			cp := *fr
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeFriendRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fr, ok := r.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	fr.Status = status
	fr.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeFriendRepo) list(match func(*models.FriendRequest) bool) []models.FriendRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.FriendRequest
	for _, fr := range r.requests {
		if match(fr) {
			out = append(out, *fr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeFriendRepo) ListByRecipient(_ context.Context, recipient primitive.ObjectID, status string) ([]models.FriendRequest, error) {
	return r.list(func(fr *models.FriendRequest) bool {
		return fr.Recipient == recipient && fr.Status == status
	}), nil
}

func (r *fakeFriendRepo) ListBySender(_ context.Context, sender primitive.ObjectID, status string) ([]models.FriendRequest, error) {
	return r.list(func(fr *models.FriendRequest) bool {
		return fr.Sender == sender && fr.Status == status
	}), nil
}

// fakeStoryRepo is an in-memory StoryRepository.
type fakeStoryRepo struct {
	mu      sync.Mutex
	stories map[primitive.ObjectID]*models.Story
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{stories: make(map[primitive.ObjectID]*models.Story)}
}

func (r *fakeStoryRepo) Insert(_ context.Context, s *models.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Views == nil {
		s.Views = []models.StoryView{}
	}
	cp := *s
	r.stories[s.ID] = &cp
	return nil
}

func (r *fakeStoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStoryRepo) FindActiveByAuthors(_ context.Context, authors []primitive.ObjectID, now time.Time) ([]models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[primitive.ObjectID]bool, len(authors))
	for _, a := range authors {
		wanted[a] = true
	}
	var out []models.Story
	for _, s := range r.stories {
		if s.IsActive && wanted[s.Author] && s.ExpiresAt.After(now) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeStoryRepo) AddView(_ context.Context, storyID primitive.ObjectID, view models.StoryView) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[storyID]
	if !ok {
		return false, repository.ErrNotFound
	}
	for _, v := range s.Views {
		if v.User == view.User {
			return false, nil
		}
	}
	s.Views = append(s.Views, view)
	return true, nil
}

func (r *fakeStoryRepo) Deactivate(_ context.Context, storyID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[storyID]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsActive = false
	return nil
}

func (r *fakeStoryRepo) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.stories {
		if s.IsActive && now.After(s.ExpiresAt) {
			s.IsActive = false
			n++
		}
	}
	return n, nil
}

// fakeGroupRepo is an in-memory GroupRepository.
type fakeGroupRepo struct {
	mu     sync.Mutex
	groups map[primitive.ObjectID]*models.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[primitive.ObjectID]*models.Group)}
}

func (r *fakeGroupRepo) Insert(_ context.Context, g *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	cp := *g
	r.groups[g.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGroupRepo) Save(_ context.Context, g *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[g.ID]; !ok {
		return repository.ErrNotFound
	}
	g.UpdatedAt = time.Now().UTC()
	cp := *g
	r.groups[g.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) ListByMember(_ context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Group
	for _, g := range r.groups {
		if g.IsActive && g.IsMember(userID) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeGroupRepo) ListPublic(_ context.Context, excludeMember primitive.ObjectID, search string, tags []string, page, limit int64) ([]models.Group, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Group
	for _, g := range r.groups {
		if g.IsActive && !g.Settings.IsPrivate && !g.IsMember(excludeMember) {
			all = append(all, *g)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// recordingChat captures provider calls. All methods succeed.
type recordingChat struct {
	mu       sync.Mutex
	upserts  []string
	channels []string
	added    map[string][]string
	removed  map[string][]string
}

func newRecordingChat() *recordingChat {
	return &recordingChat{
		added:   make(map[string][]string),
		removed: make(map[string][]string),
	}
}

func (c *recordingChat) UpsertUser(_ context.Context, id, _, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upserts = append(c.upserts, id)
	return nil
}

func (c *recordingChat) CreateToken(userID string) (string, error) {
	return "token-" + userID, nil
}

func (c *recordingChat) EnsureChannel(_ context.Context, channelID, _, _ string, _ []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels = append(c.channels, channelID)
	return nil
}

func (c *recordingChat) AddChannelMembers(_ context.Context, channelID string, memberIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.added[channelID] = append(c.added[channelID], memberIDs...)
	return nil
}

func (c *recordingChat) RemoveChannelMembers(_ context.Context, channelID string, memberIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removed[channelID] = append(c.removed[channelID], memberIDs...)
	return nil
}

// recordingMailer captures sent emails.
type recordingMailer struct {
	mu    sync.Mutex
	sent  []string
	codes []string
}

func (m *recordingMailer) Send(_ context.Context, to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

func (m *recordingMailer) SendVerificationEmail(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	m.codes = append(m.codes, code)
	return nil
}

// fakeObjectStore keeps uploaded objects in a map.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "https://media.test/" + key, nil
}
