package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	adminAccessDomain "github.com/allisson/chatseal/internal/adminaccess/domain"
	outboxDomain "github.com/allisson/chatseal/internal/outbox/domain"
	userDomain "github.com/allisson/chatseal/internal/user/domain"
)

// fakeTxManager runs fn inline without a real transaction.
type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*userDomain.User
	err   error
}

func newFakeUserRepository(users ...*userDomain.User) *fakeUserRepository {
	r := &fakeUserRepository{users: make(map[uuid.UUID]*userDomain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, userDomain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepository) RecordAccessRequest(
	ctx context.Context,
	id uuid.UUID,
	requestedAt time.Time,
	reason string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return userDomain.ErrUserNotFound
	}
	u.AdminAccessRequestedAt = &requestedAt
	u.AdminAccessReason = &reason
	u.AdminAccessRevokedAt = nil
	return nil
}

func (r *fakeUserRepository) GrantAdminAccess(
	ctx context.Context,
	id uuid.UUID,
	authorizedAt, expiresAt time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return userDomain.ErrUserNotFound
	}
	u.AdminAccessAuthorized = true
	u.AdminAccessAuthorizedAt = &authorizedAt
	u.AdminAccessExpiresAt = &expiresAt
	u.AdminAccessRevokedAt = nil
	return nil
}

func (r *fakeUserRepository) RevokeAdminAccess(ctx context.Context, id uuid.UUID, revokedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return userDomain.ErrUserNotFound
	}
	u.AdminAccessAuthorized = false
	u.AdminAccessAuthorizedAt = nil
	u.AdminAccessExpiresAt = nil
	u.AdminAccessRevokedAt = &revokedAt
	return nil
}

func (r *fakeUserRepository) ClearExpiredAdminAccess(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.AdminAccessExpired(now) {
		return false, nil
	}
	u.AdminAccessAuthorized = false
	u.AdminAccessExpiresAt = nil
	return true, nil
}

func (r *fakeUserRepository) ClearAllExpiredAdminAccess(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, u := range r.users {
		if u.AdminAccessExpired(now) {
			u.AdminAccessAuthorized = false
			u.AdminAccessExpiresAt = nil
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepository) get(id uuid.UUID) userDomain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[id]
}

type fakeTokenRepository struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*adminAccessDomain.AdminAuthToken
}

func newFakeTokenRepository() *fakeTokenRepository {
	return &fakeTokenRepository{tokens: make(map[uuid.UUID]*adminAccessDomain.AdminAuthToken)}
}

func (r *fakeTokenRepository) Create(ctx context.Context, token *adminAccessDomain.AdminAuthToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *token
	r.tokens[token.ID] = &cp
	return nil
}

func (r *fakeTokenRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*adminAccessDomain.AdminAuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, adminAccessDomain.ErrTokenNotFound
}

func (r *fakeTokenRepository) GetLatestByUserID(
	ctx context.Context,
	userID uuid.UUID,
) (*adminAccessDomain.AdminAuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*adminAccessDomain.AdminAuthToken
	for _, t := range r.tokens {
		if t.UserID == userID {
			list = append(list, t)
		}
	}
	if len(list) == 0 {
		return nil, adminAccessDomain.ErrTokenNotFound
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID.String() > list[j].ID.String() })
	cp := *list[0]
	return &cp, nil
}

func (r *fakeTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok || t.Used {
		return false, nil
	}
	t.Used = true
	t.UsedAt = &usedAt
	return true, nil
}

func (r *fakeTokenRepository) SupersedeOutstanding(
	ctx context.Context,
	userID, keepID uuid.UUID,
	usedAt time.Time,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, t := range r.tokens {
		if t.UserID == userID && t.ID != keepID && !t.Used {
			t.Used = true
			t.UsedAt = &usedAt
			count++
		}
	}
	return count, nil
}

type fakeOutboxRepository struct {
	mu     sync.Mutex
	events []*outboxDomain.OutboxEvent
	err    error
}

func (r *fakeOutboxRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
