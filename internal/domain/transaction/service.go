package transaction

import (
	"context"
	"errors"
	"strings"

	"MyFinance/internal/domain/account"
	"MyFinance/internal/domain/shared"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/logger"
	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type Service struct {
	Repository Repository
	Accounts   Accounts
	Budgets    Budgets
	Categories OwnershipChecker
	Pots       Pots
	UnitOfWork shared.UnitOfWork
	Publisher  EventPublisher
	Limits     pkg.ListLimits
}

func NewService(
	repo Repository,
	accounts Accounts,
	budgets Budgets,
	categories OwnershipChecker,
	pots Pots,
	uow shared.UnitOfWork,
	publisher EventPublisher,
	limits pkg.ListLimits,
) *Service {
	if uow == nil {
		uow = shared.Direct
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &Service{
		Repository: repo,
		Accounts:   accounts,
		Budgets:    budgets,
		Categories: categories,
		Pots:       pots,
		UnitOfWork: uow,
		Publisher:  publisher,
		Limits:     limits,
	}
}

// CreateTransaction attributes the parties, rejects double submissions, persists the
// row and applies its balance, budget and pot effects in one unit of work.
func (s *Service) CreateTransaction(ctx context.Context, draft *Draft, actor Actor) (*Transaction, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	var created *Transaction
	err := s.UnitOfWork.Do(ctx, func(ctx context.Context) error {
		acc, err := s.Accounts.GetOrCreate(ctx, actor.UserID)
		if err != nil {
			return err
		}

		if err := s.ensureLinksOwned(ctx, actor.UserID, draft.CategoryId, draft.BudgetId, draft.PotId); err != nil {
			return err
		}

		tx := newTransaction(draft, acc, actor)

		duplicate, err := s.Repository.ExistsDuplicate(ctx, tx.DuplicateKey())
		if err != nil {
			return appErrors.NewDatabaseError(err)
		}
		if duplicate {
			return appErrors.ErrDuplicateTransaction
		}

		if err := s.Repository.Create(ctx, tx); err != nil {
			return appErrors.NewDatabaseError(err)
		}

		if err := s.Accounts.ApplyBalanceDelta(ctx, acc.Id, tx.SignedAmount()); err != nil {
			return err
		}

		if tx.BudgetId != nil {
			if _, err := s.Budgets.ApplyDelta(ctx, *tx.BudgetId, tx.Amount, tx.Type == Debit); err != nil {
				return err
			}
		}

		if tx.PotId != nil {
			if err := s.Pots.ApplySavedDelta(ctx, *tx.PotId, actor.UserID, tx.SignedAmount()); err != nil {
				return err
			}
		}

		s.publishAfterCommit(ctx, EventCreated, tx, tx.SignedAmount())
		created = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateTransaction applies patch to a transaction owned by userID. The balance moves
// by the difference between the new and old signed amounts. A budget kept across the
// update receives the difference of contributions; a changed budget link reverts the
// old contribution and applies the new one. Pots follow the same rule with the signed
// amount as contribution.
func (s *Service) UpdateTransaction(ctx context.Context, transactionID, userID ulid.ULID, patch *Patch) (*Transaction, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var updated *Transaction
	err := s.UnitOfWork.Do(ctx, func(ctx context.Context) error {
		old, err := s.Repository.GetForUpdate(ctx, transactionID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErrors.ErrTransactionNotFound
		}
		if err != nil {
			return appErrors.NewDatabaseError(err)
		}

		next := old.clone()
		patch.applyTo(next)
		next.UpdatedAt = pkg.SetTimestamps()

		if err := s.ensureChangedLinksOwned(ctx, userID, old, next); err != nil {
			return err
		}

		if err := s.Repository.Update(ctx, next); err != nil {
			return appErrors.NewDatabaseError(err)
		}

		balanceDelta := next.SignedAmount() - old.SignedAmount()
		if err := s.Accounts.ApplyBalanceDelta(ctx, old.AccountId, balanceDelta); err != nil {
			return err
		}

		if err := s.reconcileBudgets(ctx, old, next); err != nil {
			return err
		}

		if err := s.reconcilePots(ctx, userID, old, next); err != nil {
			return err
		}

		s.publishAfterCommit(ctx, EventUpdated, next, balanceDelta)
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteTransaction reverts the balance, budget and pot effects and removes the row.
// A pot that cannot give the amount back rejects the delete.
func (s *Service) DeleteTransaction(ctx context.Context, transactionID, userID ulid.ULID) error {
	return s.UnitOfWork.Do(ctx, func(ctx context.Context) error {
		tx, err := s.Repository.GetForUpdate(ctx, transactionID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErrors.ErrTransactionNotFound
		}
		if err != nil {
			return appErrors.NewDatabaseError(err)
		}

		if err := s.Accounts.ApplyBalanceDelta(ctx, tx.AccountId, -tx.SignedAmount()); err != nil {
			return err
		}

		if tx.BudgetId != nil {
			if _, err := s.Budgets.ApplyDelta(ctx, *tx.BudgetId, tx.Amount, tx.Type != Debit); err != nil {
				return err
			}
		}

		if tx.PotId != nil {
			if err := s.Pots.ApplySavedDelta(ctx, *tx.PotId, userID, -tx.SignedAmount()); err != nil {
				return err
			}
		}

		if err := s.Repository.Delete(ctx, tx.Id); err != nil {
			return appErrors.NewDatabaseError(err)
		}

		s.publishAfterCommit(ctx, EventDeleted, tx, -tx.SignedAmount())
		return nil
	})
}

func (s *Service) GetTransaction(ctx context.Context, transactionID, userID ulid.ULID) (*Transaction, error) {
	tx, err := s.Repository.GetByID(ctx, transactionID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return tx, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID ulid.ULID, filter *Filter, sort Sort, pagination *pkg.PaginationParams) ([]*Transaction, int64, error) {
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}

	items, total, err := s.Repository.List(ctx, userID, filter, sort, s.Limits.Apply(pagination))
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return items, total, nil
}

// ExportTransactions returns every transaction matching filter, without a page cap.
func (s *Service) ExportTransactions(ctx context.Context, userID ulid.ULID, filter *Filter, sort Sort) ([]*Transaction, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	items, err := s.Repository.ListAll(ctx, userID, filter, sort)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return items, nil
}

func (s *Service) Summary(ctx context.Context, userID ulid.ULID, window Window) (*Summary, error) {
	if window.From != nil && window.To != nil && window.From.After(*window.To) {
		return nil, appErrors.NewValidationError("start_date", "start date must not be after end date")
	}

	totals, err := s.Repository.SummaryByType(ctx, userID, window)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return NewSummary(totals), nil
}

func (s *Service) ListByAccount(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Transaction, int64, error) {
	acc, err := s.Accounts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.wrapList(s.Repository.ListByAccount(ctx, acc.Id, s.Limits.Apply(pagination)))
}

func (s *Service) ListByBudget(ctx context.Context, budgetID, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Transaction, int64, error) {
	if err := s.Budgets.EnsureOwned(ctx, budgetID, userID); err != nil {
		return nil, 0, err
	}
	return s.wrapList(s.Repository.ListByBudget(ctx, budgetID, s.Limits.Apply(pagination)))
}

func (s *Service) ListByPot(ctx context.Context, potID, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Transaction, int64, error) {
	if err := s.Pots.EnsureOwned(ctx, potID, userID); err != nil {
		return nil, 0, err
	}
	return s.wrapList(s.Repository.ListByPot(ctx, potID, s.Limits.Apply(pagination)))
}

func (s *Service) ListByCategory(ctx context.Context, categoryID, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Transaction, int64, error) {
	if err := s.Categories.EnsureOwned(ctx, categoryID, userID); err != nil {
		return nil, 0, err
	}
	return s.wrapList(s.Repository.ListByCategory(ctx, categoryID, s.Limits.Apply(pagination)))
}

// DeleteByPot hard-deletes a pot's transactions without reconciling balances or budgets.
func (s *Service) DeleteByPot(ctx context.Context, potID ulid.ULID) (int64, error) {
	removed, err := s.Repository.DeleteByPot(ctx, potID)
	if err != nil {
		return 0, appErrors.NewDatabaseError(err)
	}
	return removed, nil
}

func (s *Service) wrapList(items []*Transaction, total int64, err error) ([]*Transaction, int64, error) {
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return items, total, nil
}

func (s *Service) reconcileBudgets(ctx context.Context, old, next *Transaction) error {
	if pkg.SameULID(old.BudgetId, next.BudgetId) {
		if next.BudgetId == nil {
			return nil
		}
		change := next.BudgetContribution() - old.BudgetContribution()
		if change == 0 {
			return nil
		}
		if change > 0 {
			_, err := s.Budgets.ApplyDelta(ctx, *next.BudgetId, change, true)
			return err
		}
		_, err := s.Budgets.ApplyDelta(ctx, *next.BudgetId, -change, false)
		return err
	}

	if old.BudgetId != nil {
		if _, err := s.Budgets.ApplyDelta(ctx, *old.BudgetId, old.Amount, old.Type != Debit); err != nil {
			return err
		}
	}
	if next.BudgetId != nil {
		if _, err := s.Budgets.ApplyDelta(ctx, *next.BudgetId, next.Amount, next.Type == Debit); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) reconcilePots(ctx context.Context, userID ulid.ULID, old, next *Transaction) error {
	if pkg.SameULID(old.PotId, next.PotId) {
		if next.PotId == nil {
			return nil
		}
		return s.Pots.ApplySavedDelta(ctx, *next.PotId, userID, next.SignedAmount()-old.SignedAmount())
	}

	if old.PotId != nil {
		if err := s.Pots.ApplySavedDelta(ctx, *old.PotId, userID, -old.SignedAmount()); err != nil {
			return err
		}
	}
	if next.PotId != nil {
		return s.Pots.ApplySavedDelta(ctx, *next.PotId, userID, next.SignedAmount())
	}
	return nil
}

func (s *Service) ensureLinksOwned(ctx context.Context, userID ulid.ULID, categoryID, budgetID, potID *ulid.ULID) error {
	if categoryID != nil {
		if err := s.Categories.EnsureOwned(ctx, *categoryID, userID); err != nil {
			return err
		}
	}
	if budgetID != nil {
		if err := s.Budgets.EnsureOwned(ctx, *budgetID, userID); err != nil {
			return err
		}
	}
	if potID != nil {
		if err := s.Pots.EnsureOwned(ctx, *potID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ensureChangedLinksOwned(ctx context.Context, userID ulid.ULID, old, next *Transaction) error {
	var categoryID, budgetID, potID *ulid.ULID
	if !pkg.SameULID(old.CategoryId, next.CategoryId) {
		categoryID = next.CategoryId
	}
	if !pkg.SameULID(old.BudgetId, next.BudgetId) {
		budgetID = next.BudgetId
	}
	if !pkg.SameULID(old.PotId, next.PotId) {
		potID = next.PotId
	}
	return s.ensureLinksOwned(ctx, userID, categoryID, budgetID, potID)
}

func (s *Service) publishAfterCommit(ctx context.Context, name string, tx *Transaction, balanceDelta int64) {
	event := Event{
		Name:          name,
		TransactionID: tx.Id.String(),
		UserID:        tx.UserId.String(),
		AccountID:     tx.AccountId.String(),
		Type:          tx.Type,
		Amount:        tx.Amount,
		BalanceDelta:  balanceDelta,
		OccurredAt:    pkg.SetTimestamps(),
	}
	if tx.BudgetId != nil {
		event.BudgetID = tx.BudgetId.String()
	}
	if tx.PotId != nil {
		event.PotID = tx.PotId.String()
	}

	publishCtx := context.WithoutCancel(ctx)
	shared.AfterCommit(ctx, func() {
		if err := s.Publisher.Publish(publishCtx, event); err != nil {
			logger.Warn().
				Err(err).
				Str("event", name).
				Str("transaction_id", event.TransactionID).
				Msg("ledger_event_publish_failed")
		}
	})
}

func newTransaction(draft *Draft, acc *account.Account, actor Actor) *Transaction {
	now := pkg.SetTimestamps()
	date := draft.TransactionDate.UTC()
	if draft.TransactionDate.IsZero() {
		date = now
	}

	tx := &Transaction{
		Id:              pkg.GenerateULIDObject(),
		UserId:          actor.UserID,
		AccountId:       acc.Id,
		CategoryId:      draft.CategoryId,
		BudgetId:        draft.BudgetId,
		PotId:           draft.PotId,
		Description:     strings.TrimSpace(draft.Description),
		Recipient:       strings.TrimSpace(draft.Recipient),
		Sender:          strings.TrimSpace(draft.Sender),
		Amount:          draft.Amount,
		Type:            draft.Type,
		TransactionDate: date,
		Metadata:        draft.Metadata,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if !draft.KeepParties {
		// a debit is paid by the user, a credit is received by the user
		if tx.Type == Debit {
			tx.Sender = actor.Username
		} else {
			tx.Recipient = actor.Username
		}
	}
	return tx
}

func validateDraft(draft *Draft) error {
	if draft == nil {
		return appErrors.ErrBadRequest
	}
	if !draft.Type.Valid() {
		return appErrors.NewValidationError("type", "type must be DEBIT or CREDIT")
	}
	if draft.Amount < 0 {
		return appErrors.NewValidationError("amount", "amount must not be negative")
	}
	if strings.TrimSpace(draft.Description) == "" {
		return appErrors.NewValidationError("description", "description is required")
	}
	return nil
}

func validatePatch(patch *Patch) error {
	if patch == nil {
		return appErrors.ErrBadRequest
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return appErrors.NewValidationError("type", "type must be DEBIT or CREDIT")
	}
	if patch.Amount != nil && *patch.Amount < 0 {
		return appErrors.NewValidationError("amount", "amount must not be negative")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return appErrors.NewValidationError("description", "description is required")
	}
	return nil
}

func validateFilter(filter *Filter) error {
	if filter == nil {
		return nil
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return appErrors.NewValidationError("type", "type must be DEBIT or CREDIT")
	}
	if filter.MinAmount != nil && filter.MaxAmount != nil && *filter.MinAmount > *filter.MaxAmount {
		return appErrors.NewValidationError("min_amount", "min amount must not exceed max amount")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return appErrors.NewValidationError("start_date", "start date must not be after end date")
	}
	return nil
}
