package usecase

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/chatseal/internal/backfill/domain"
	conversationDomain "github.com/allisson/chatseal/internal/conversation/domain"
	conversationService "github.com/allisson/chatseal/internal/conversation/service"
)

// Options configures a backfill run.
type Options struct {
	// BatchSize is the number of rows loaded per page.
	BatchSize int
	// Workers is the number of owners processed in parallel.
	Workers int
}

type backfillUseCase struct {
	conversations ConversationStore
	messages      MessageStore
	encryptor     conversationService.FieldEncryptor
	opts          Options
	logger        *slog.Logger
}

// NewBackfillUseCase creates a new BackfillUseCase. Non-positive options fall
// back to a batch size of 100 and a single worker.
func NewBackfillUseCase(
	conversations ConversationStore,
	messages MessageStore,
	encryptor conversationService.FieldEncryptor,
	opts Options,
	logger *slog.Logger,
) BackfillUseCase {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &backfillUseCase{
		conversations: conversations,
		messages:      messages,
		encryptor:     encryptor,
		opts:          opts,
		logger:        logger,
	}
}

// Migrate runs the backfill. It only returns an error when rows cannot be
// listed or the context ends; per-row failures are in the report.
func (b *backfillUseCase) Migrate(ctx context.Context) (*domain.Report, error) {
	owners, err := b.owners(ctx)
	if err != nil {
		return nil, err
	}

	b.logger.Info("backfill started",
		slog.Int("owners", len(owners)),
		slog.Int("workers", b.opts.Workers),
		slog.Int("batch_size", b.opts.BatchSize),
	)

	var (
		mu     sync.Mutex
		report = &domain.Report{Failures: []*domain.MigrationRowError{}}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for _, owner := range owners {
		g.Go(func() error {
			ownerReport, err := b.migrateOwner(gctx, owner)
			if err != nil {
				return err
			}

			mu.Lock()
			report.Merge(ownerReport)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.logger.Info("backfill finished",
		slog.Int("owners", report.Owners),
		slog.Int("conversations_encrypted", report.ConversationsEncrypted),
		slog.Int("messages_encrypted", report.MessagesEncrypted),
		slog.Int("skipped", report.Skipped),
		slog.Int("failures", len(report.Failures)),
	)
	return report, nil
}

// owners merges the owners of both tables. Guest content sorts last.
func (b *backfillUseCase) owners(ctx context.Context) ([]uuid.NullUUID, error) {
	conversationOwners, err := b.conversations.ListUnencryptedOwners(ctx)
	if err != nil {
		return nil, err
	}
	messageOwners, err := b.messages.ListUnencryptedOwners(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.NullUUID]struct{}, len(conversationOwners)+len(messageOwners))
	var owners []uuid.NullUUID
	for _, owner := range append(conversationOwners, messageOwners...) {
		if _, ok := seen[owner]; ok {
			continue
		}
		seen[owner] = struct{}{}
		owners = append(owners, owner)
	}

	sort.Slice(owners, func(i, j int) bool {
		if owners[i].Valid != owners[j].Valid {
			return owners[i].Valid
		}
		return owners[i].UUID.String() < owners[j].UUID.String()
	})
	return owners, nil
}

func (b *backfillUseCase) migrateOwner(ctx context.Context, owner uuid.NullUUID) (*domain.Report, error) {
	report := &domain.Report{Owners: 1}
	encrypt := b.encryptor.ShouldEncrypt(owner)
	keyID := conversationDomain.GuestKeyID
	if owner.Valid {
		keyID = owner.UUID.String()
	}

	if err := b.migrateConversations(ctx, owner, encrypt, report); err != nil {
		return nil, err
	}
	if err := b.migrateMessages(ctx, owner, encrypt, report); err != nil {
		return nil, err
	}

	b.logger.Info("backfill owner done",
		slog.String("owner", keyID),
		slog.Int("conversations_encrypted", report.ConversationsEncrypted),
		slog.Int("messages_encrypted", report.MessagesEncrypted),
		slog.Int("skipped", report.Skipped),
		slog.Int("failures", len(report.Failures)),
	)
	return report, nil
}

func (b *backfillUseCase) migrateConversations(
	ctx context.Context,
	owner uuid.NullUUID,
	encrypt bool,
	report *domain.Report,
) error {
	afterID := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := b.conversations.ListUnencrypted(ctx, owner, afterID, b.opts.BatchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		for _, conversation := range batch {
			afterID = conversation.ID
			if !encrypt {
				report.Skipped++
				continue
			}

			if err := b.encryptor.EncryptConversation(conversation); err != nil {
				b.recordFailure(report, domain.TableConversations, conversation.ID, err)
				continue
			}
			updated, err := b.conversations.MarkEncrypted(ctx, conversation)
			if err != nil {
				b.recordFailure(report, domain.TableConversations, conversation.ID, err)
				continue
			}
			if !updated {
				report.Skipped++
				continue
			}
			report.ConversationsEncrypted++
		}

		if len(batch) < b.opts.BatchSize {
			return nil
		}
	}
}

func (b *backfillUseCase) migrateMessages(
	ctx context.Context,
	owner uuid.NullUUID,
	encrypt bool,
	report *domain.Report,
) error {
	afterID := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := b.messages.ListUnencrypted(ctx, owner, afterID, b.opts.BatchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		for _, message := range batch {
			afterID = message.ID
			if !encrypt {
				report.Skipped++
				continue
			}

			if err := b.encryptor.EncryptMessage(message); err != nil {
				b.recordFailure(report, domain.TableMessages, message.ID, err)
				continue
			}
			updated, err := b.messages.MarkEncrypted(ctx, message)
			if err != nil {
				b.recordFailure(report, domain.TableMessages, message.ID, err)
				continue
			}
			if !updated {
				report.Skipped++
				continue
			}
			report.MessagesEncrypted++
		}

		if len(batch) < b.opts.BatchSize {
			return nil
		}
	}
}

func (b *backfillUseCase) recordFailure(report *domain.Report, table string, rowID uuid.UUID, err error) {
	b.logger.Warn("backfill row failed",
		slog.String("table", table),
		slog.String("row_id", rowID.String()),
		slog.Any("error", err),
	)
	report.Failures = append(report.Failures, &domain.MigrationRowError{Table: table, RowID: rowID, Err: err})
}
