package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"socialwave/internal/cache"
	"socialwave/internal/model"
	"socialwave/internal/queue"
)

// Function-field mocks for the repository interfaces. Each test overrides only
// the calls it cares about; unset functions return zero values or not-found.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)

	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

// stateFollowRepository is a stateful in-memory follow store. The toggle tests
// need real toggle semantics, not canned responses.
type stateFollowRepository struct {
	edges map[[2]int64]bool
}

func newStateFollowRepository() *stateFollowRepository {
	return &stateFollowRepository{edges: make(map[[2]int64]bool)}
}

func (m *stateFollowRepository) Toggle(ctx context.Context, followerID, followeeID int64) (bool, error) {
	key := [2]int64{followerID, followeeID}
	if m.edges[key] {
		delete(m.edges, key)
		return false, nil
	}
	m.edges[key] = true
	return true, nil
}

func (m *stateFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return m.edges[[2]int64{followerID, followeeID}], nil
}

func (m *stateFollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for key := range m.edges {
		if key[1] == userID {
			ids = append(ids, key[0])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *stateFollowRepository) GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for key := range m.edges {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *stateFollowRepository) GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	ids, _ := m.GetFollowerIDs(ctx, userID)
	return summaries(ids), nil
}

func (m *stateFollowRepository) GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	ids, _ := m.GetFolloweeIDs(ctx, userID)
	return summaries(ids), nil
}

func summaries(ids []int64) []model.UserSummary {
	out := make([]model.UserSummary, len(ids))
	for i, id := range ids {
		out[i] = model.UserSummary{ID: id}
	}
	return out
}

type mockPostRepository struct {
	createFn             func(ctx context.Context, authorID int64, authorUsername, body, image string) (*model.Post, error)
	getByIDFn            func(ctx context.Context, postID int64) (*model.Post, error)
	getByIDsFn           func(ctx context.Context, postIDs []int64) ([]model.Post, error)
	listAllFn            func(ctx context.Context) ([]model.Post, error)
	listByUsernameFn     func(ctx context.Context, username string) ([]model.Post, error)
	deleteFn             func(ctx context.Context, postID int64) error
	existsFn             func(ctx context.Context, postID int64) (bool, error)
	countFn              func(ctx context.Context) (int64, error)
	toggleLikeFn         func(ctx context.Context, postID, userID int64) (bool, error)
	getLikerIDsFn        func(ctx context.Context, postID int64) ([]int64, error)
	getLikersByPostIDsFn func(ctx context.Context, postIDs []int64) (map[int64][]int64, error)
	listRecentFn         func(ctx context.Context, limit int) ([]cache.PostScore, error)

	deleteCalls []int64
}

func (m *mockPostRepository) Create(ctx context.Context, authorID int64, authorUsername, body, image string) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, authorID, authorUsername, body, image)
	}
	return &model.Post{
		ID:             1,
		AuthorID:       authorID,
		AuthorUsername: authorUsername,
		Body:           body,
		Image:          image,
		CreatedAt:      time.Now(),
		Likes:          []int64{},
		Comments:       []model.Comment{},
	}, nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, postIDs)
	}
	return nil, nil
}

func (m *mockPostRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockPostRepository) ListByUsername(ctx context.Context, username string) ([]model.Post, error) {
	if m.listByUsernameFn != nil {
		return m.listByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID int64) error {
	m.deleteCalls = append(m.deleteCalls, postID)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID)
	}
	return nil
}

func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return false, nil
}

func (m *mockPostRepository) Count(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockPostRepository) ToggleLike(ctx context.Context, postID, userID int64) (bool, error) {
	if m.toggleLikeFn != nil {
		return m.toggleLikeFn(ctx, postID, userID)
	}
	return false, nil
}

func (m *mockPostRepository) GetLikerIDs(ctx context.Context, postID int64) ([]int64, error) {
	if m.getLikerIDsFn != nil {
		return m.getLikerIDsFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockPostRepository) GetLikersByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	if m.getLikersByPostIDsFn != nil {
		return m.getLikersByPostIDsFn(ctx, postIDs)
	}
	return map[int64][]int64{}, nil
}

func (m *mockPostRepository) ListRecent(ctx context.Context, limit int) ([]cache.PostScore, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return nil, nil
}

type mockCommentRepository struct {
	createFn       func(ctx context.Context, postID, authorID int64, authorUsername, text string) (*model.Comment, error)
	getByPostIDFn  func(ctx context.Context, postID int64) ([]model.Comment, error)
	getByPostIDsFn func(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, postID, authorID int64, authorUsername, text string) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, postID, authorID, authorUsername, text)
	}
	return &model.Comment{
		PostID:         postID,
		AuthorID:       authorID,
		AuthorUsername: authorUsername,
		Text:           text,
		CreatedAt:      time.Now(),
	}, nil
}

func (m *mockCommentRepository) GetByPostID(ctx context.Context, postID int64) ([]model.Comment, error) {
	if m.getByPostIDFn != nil {
		return m.getByPostIDFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockCommentRepository) GetByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
	if m.getByPostIDsFn != nil {
		return m.getByPostIDsFn(ctx, postIDs)
	}
	return map[int64][]model.Comment{}, nil
}

// stateRefreshTokenRepository is a stateful in-memory token store for the
// rotation and reuse-detection tests.
type stateRefreshTokenRepository struct {
	tokens map[string]*model.RefreshToken // keyed by id
	nextID int
}

func newStateRefreshTokenRepository() *stateRefreshTokenRepository {
	return &stateRefreshTokenRepository{tokens: make(map[string]*model.RefreshToken)}
}

func (m *stateRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	m.nextID++
	token.ID = "tok-" + strconv.Itoa(m.nextID)
	token.CreatedAt = time.Now()
	cp := *token
	m.tokens[token.ID] = &cp
	return nil
}

func (m *stateRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	for _, t := range m.tokens {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, model.ErrRefreshTokenNotFound
}

func (m *stateRefreshTokenRepository) Revoke(ctx context.Context, id string, replacedBy *string) error {
	if t, ok := m.tokens[id]; ok && t.RevokedAt == nil {
		now := time.Now()
		t.RevokedAt = &now
		t.ReplacedBy = replacedBy
	}
	return nil
}

func (m *stateRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	now := time.Now()
	for _, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *stateRefreshTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	var n int64
	cutoff := time.Now().Add(-olderThan)
	for id, t := range m.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

func (m *stateRefreshTokenRepository) liveCountForUser(userID int64) int {
	n := 0
	for _, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

type mockPublisher struct {
	published []queue.TimelineEvent
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.TimelineEvent) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.published = append(m.published, event)
	return "1-0", nil
}

// stateTimelineCache is an in-memory TimelineCache for the feed tests.
type stateTimelineCache struct {
	posts  []cache.PostScore
	exists bool
}

func (m *stateTimelineCache) AddPost(ctx context.Context, postID, timestamp int64) error {
	m.posts = append(m.posts, cache.PostScore{PostID: postID, Timestamp: timestamp})
	m.exists = true
	return nil
}

func (m *stateTimelineCache) RemovePost(ctx context.Context, postID int64) error {
	out := m.posts[:0]
	for _, p := range m.posts {
		if p.PostID != postID {
			out = append(out, p)
		}
	}
	m.posts = out
	return nil
}

func (m *stateTimelineCache) GetRecent(ctx context.Context, limit int) ([]int64, error) {
	sorted := make([]cache.PostScore, len(m.posts))
	copy(sorted, m.posts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Timestamp != sorted[j].Timestamp {
			return sorted[i].Timestamp > sorted[j].Timestamp
		}
		return sorted[i].PostID > sorted[j].PostID
	})
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	ids := make([]int64, len(sorted))
	for i, p := range sorted {
		ids[i] = p.PostID
	}
	return ids, nil
}

func (m *stateTimelineCache) Warm(ctx context.Context, posts []cache.PostScore) error {
	m.posts = append(m.posts, posts...)
	m.exists = true
	return nil
}

func (m *stateTimelineCache) Exists(ctx context.Context) (bool, error) {
	return m.exists, nil
}

func (m *stateTimelineCache) Size(ctx context.Context) (int64, error) {
	return int64(len(m.posts)), nil
}
