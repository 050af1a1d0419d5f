package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/chatseal/internal/conversation/domain"
	conversationService "github.com/allisson/chatseal/internal/conversation/service"
	"github.com/allisson/chatseal/internal/testutil"
	userDomain "github.com/allisson/chatseal/internal/user/domain"
)

type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeConversationRepository struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*domain.Conversation
}

func newFakeConversationRepository() *fakeConversationRepository {
	return &fakeConversationRepository{conversations: make(map[uuid.UUID]*domain.Conversation)}
}

func (r *fakeConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *conversation
	r.conversations[conversation.ID] = &cp
	return nil
}

func (r *fakeConversationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	cp := *conversation
	return &cp, nil
}

func (r *fakeConversationRepository) UpdateContent(ctx context.Context, conversation *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[conversation.ID]; !ok {
		return domain.ErrConversationNotFound
	}
	cp := *conversation
	r.conversations[conversation.ID] = &cp
	return nil
}

func (r *fakeConversationRepository) ListByUserID(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*domain.Conversation
	for _, conversation := range r.conversations {
		if conversation.OwnedBy(userID) {
			cp := *conversation
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID.String() > list[j].ID.String() })
	return page(list, offset, limit), nil
}

type fakeMessageRepository struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*domain.Message
}

func newFakeMessageRepository() *fakeMessageRepository {
	return &fakeMessageRepository{messages: make(map[uuid.UUID]*domain.Message)}
}

func (r *fakeMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *message
	r.messages[message.ID] = &cp
	return nil
}

func (r *fakeMessageRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	cp := *message
	return &cp, nil
}

func (r *fakeMessageRepository) UpdateContent(ctx context.Context, message *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *message
	r.messages[message.ID] = &cp
	return nil
}

func (r *fakeMessageRepository) ListByConversationID(
	ctx context.Context,
	conversationID uuid.UUID,
	offset, limit int,
) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*domain.Message
	for _, message := range r.messages {
		if message.ConversationID == conversationID {
			cp := *message
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID.String() < list[j].ID.String() })
	return page(list, offset, limit), nil
}

func page[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}

// fakeAccessChecker models a time-boxed grant per user.
type fakeAccessChecker struct {
	mu     sync.Mutex
	now    time.Time
	grants map[uuid.UUID]time.Time
	users  map[uuid.UUID]bool
	calls  int
}

func newFakeAccessChecker(now time.Time, users ...uuid.UUID) *fakeAccessChecker {
	c := &fakeAccessChecker{now: now, grants: make(map[uuid.UUID]time.Time), users: make(map[uuid.UUID]bool)}
	for _, u := range users {
		c.users[u] = true
	}
	return c
}

func (c *fakeAccessChecker) grant(userID uuid.UUID, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grants[userID] = c.now.Add(d)
}

func (c *fakeAccessChecker) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeAccessChecker) CheckAuthorization(ctx context.Context, userID uuid.UUID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if !c.users[userID] {
		return false, userDomain.ErrUserNotFound
	}
	expiresAt, ok := c.grants[userID]
	if !ok {
		return false, nil
	}
	if c.now.After(expiresAt) {
		delete(c.grants, userID)
		return false, nil
	}
	return true, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEncryptor(encryptGuest bool) conversationService.FieldEncryptor {
	return conversationService.NewFieldEncryptor(testutil.NewFieldCipher("test-master-secret"), encryptGuest, newTestLogger())
}

func strPtr(s string) *string {
	return &s
}

func ownedBy(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}
