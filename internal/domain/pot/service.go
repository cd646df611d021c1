package pot

import (
	"context"
	"errors"
	"strings"

	"MyFinance/internal/domain/shared"
	"MyFinance/internal/domain/transaction"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/logger"
	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

const progressPlaces = 4

type Service struct {
	Repository   Repository
	Transactions Transactions
	UnitOfWork   shared.UnitOfWork
	SummaryLimit int
	shared.BaseService
}

// NewService leaves Transactions unset; it is wired once the transaction engine exists.
func NewService(repo Repository, uow shared.UnitOfWork, summaryLimit int, userChecker *shared.UserCheckerService) *Service {
	if uow == nil {
		uow = shared.Direct
	}
	if summaryLimit < 1 {
		summaryLimit = 4
	}
	return &Service{
		Repository:   repo,
		UnitOfWork:   uow,
		SummaryLimit: summaryLimit,
		BaseService: shared.BaseService{
			UserChecker: userChecker,
		},
	}
}

func (s *Service) CreatePot(ctx context.Context, req *CreateRequest) (*Pot, error) {
	if err := s.EnsureUserExists(ctx, req.UserId); err != nil {
		return nil, err
	}

	name := shared.NormalizeName(req.Name)
	if name == "" {
		return nil, appErrors.NewValidationError("name", "name is required")
	}
	if req.TargetAmount <= 0 {
		return nil, appErrors.NewValidationError("target_amount", "target amount must be greater than zero")
	}
	if err := s.checkNameNotExists(ctx, name, req.UserId); err != nil {
		return nil, err
	}

	now := pkg.SetTimestamps()
	pot := &Pot{
		Id:           pkg.GenerateULIDObject(),
		UserId:       req.UserId,
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		Color:        shared.NormalizeColor(req.Color),
		TargetAmount: req.TargetAmount,
		SavedAmount:  0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Repository.Create(ctx, pot); err != nil {
		if shared.IsUniqueConstraintError(err) {
			return nil, appErrors.NewDuplicateNameError("Pot", name)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return pot, nil
}

func (s *Service) GetPot(ctx context.Context, potID, userID ulid.ULID) (*Pot, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	pot, err := s.Repository.GetByID(ctx, potID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrPotNotFound
	}
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return pot, nil
}

func (s *Service) ListPots(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Pot, int64, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, 0, err
	}

	pots, total, err := s.Repository.List(ctx, userID, pagination)
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return pots, total, nil
}

// UpdatePot never touches SavedAmount. Lowering the target under the saved amount is refused.
func (s *Service) UpdatePot(ctx context.Context, potID, userID ulid.ULID, req *UpdateRequest) (*Pot, error) {
	var updated *Pot
	err := s.UnitOfWork.Do(ctx, func(ctx context.Context) error {
		pot, err := s.lockPot(ctx, potID, userID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			name := shared.NormalizeName(*req.Name)
			if name == "" {
				return appErrors.NewValidationError("name", "name is required")
			}
			if !strings.EqualFold(name, pot.Name) {
				if err := s.checkNameNotExists(ctx, name, userID); err != nil {
					return err
				}
			}
			pot.Name = name
		}
		if req.Description != nil {
			pot.Description = strings.TrimSpace(*req.Description)
		}
		if req.Color != nil {
			pot.Color = shared.NormalizeColor(*req.Color)
		}
		if req.TargetAmount != nil {
			if *req.TargetAmount <= 0 {
				return appErrors.NewValidationError("target_amount", "target amount must be greater than zero")
			}
			if *req.TargetAmount < pot.SavedAmount {
				return appErrors.ErrPotCeilingViolation
			}
			pot.TargetAmount = *req.TargetAmount
		}
		pot.UpdatedAt = pkg.SetTimestamps()

		if err := s.Repository.Update(ctx, pot); err != nil {
			if shared.IsUniqueConstraintError(err) {
				return appErrors.NewDuplicateNameError("Pot", pot.Name)
			}
			return appErrors.NewDatabaseError(err)
		}
		updated = pot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePot removes the pot and hard-deletes its transactions. Balances and budgets
// touched by those transactions are left as they are.
func (s *Service) DeletePot(ctx context.Context, potID, userID ulid.ULID) error {
	return s.UnitOfWork.Do(ctx, func(ctx context.Context) error {
		if _, err := s.lockPot(ctx, potID, userID); err != nil {
			return err
		}

		removed, err := s.Transactions.DeleteByPot(ctx, potID)
		if err != nil {
			return err
		}

		if err := s.Repository.Delete(ctx, potID, userID); err != nil {
			return appErrors.NewDatabaseError(err)
		}

		logger.Info().
			Str("pot_id", potID.String()).
			Int64("transactions_removed", removed).
			Msg("pot_deleted")
		return nil
	})
}

// AdjustSavedAmount moves money into (signed > 0) or out of the pot through one
// ledger transaction, keeping 0 <= saved <= target. The engine moves saved_amount as
// part of creating that transaction. The account balance is not checked.
func (s *Service) AdjustSavedAmount(ctx context.Context, potID, userID ulid.ULID, actor transaction.Actor, signed int64, reason string) (*Pot, error) {
	if signed == 0 {
		return nil, appErrors.NewValidationError("amount", "amount must not be zero")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.NewValidationError("reason", "reason is required")
	}

	var adjusted *Pot
	err := s.UnitOfWork.Do(ctx, func(ctx context.Context) error {
		pot, err := s.lockPot(ctx, potID, userID)
		if err != nil {
			return err
		}

		if err := pot.CanAdjust(signed); err != nil {
			return err
		}

		draft := &transaction.Draft{
			PotId:           &pot.Id,
			Description:     reason,
			Sender:          SelfParty,
			Recipient:       pot.Name,
			Amount:          abs(signed),
			Type:            transaction.Debit,
			TransactionDate: pkg.SetTimestamps(),
			KeepParties:     true,
		}
		if signed > 0 {
			draft.Type = transaction.Credit
		}

		if _, err := s.Transactions.CreateTransaction(ctx, draft, actor); err != nil {
			return err
		}

		pot.SavedAmount += signed
		pot.UpdatedAt = pkg.SetTimestamps()
		adjusted = pot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}

// ApplySavedDelta moves saved by delta under the pot's row lock, refusing any change
// that leaves [0, target]. The transaction engine calls it for pot-linked rows.
func (s *Service) ApplySavedDelta(ctx context.Context, potID, userID ulid.ULID, delta int64) error {
	if delta == 0 {
		return nil
	}

	return s.UnitOfWork.Do(ctx, func(ctx context.Context) error {
		pot, err := s.lockPot(ctx, potID, userID)
		if err != nil {
			return err
		}

		if err := pot.CanAdjust(delta); err != nil {
			return err
		}

		if err := s.Repository.AddSavedAmount(ctx, potID, delta); err != nil {
			return appErrors.NewDatabaseError(err)
		}

		logger.Debug().
			Str("pot_id", potID.String()).
			Int64("delta", delta).
			Int64("saved", pot.SavedAmount+delta).
			Msg("pot_delta_applied")
		return nil
	})
}

func (s *Service) Summary(ctx context.Context, userID ulid.ULID) (*Summary, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	saved, target, err := s.Repository.Totals(ctx, userID)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	pots, err := s.Repository.ListFirst(ctx, userID, s.SummaryLimit)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	if pots == nil {
		pots = []*Pot{}
	}

	return &Summary{
		TotalSaved:      saved,
		TotalTarget:     target,
		AverageProgress: pkg.Ratio(saved, target, progressPlaces),
		Pots:            pots,
	}, nil
}

// EnsureOwned returns POT_NOT_FOUND unless potID belongs to userID.
func (s *Service) EnsureOwned(ctx context.Context, potID, userID ulid.ULID) error {
	_, err := s.Repository.GetByID(ctx, potID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return appErrors.ErrPotNotFound
	}
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (s *Service) lockPot(ctx context.Context, potID, userID ulid.ULID) (*Pot, error) {
	pot, err := s.Repository.GetForUpdate(ctx, potID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrPotNotFound
	}
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return pot, nil
}

func (s *Service) checkNameNotExists(ctx context.Context, name string, userID ulid.ULID) error {
	existing, err := s.Repository.GetByName(ctx, name, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return appErrors.NewDatabaseError(err)
	}
	if existing != nil {
		return appErrors.NewDuplicateNameError("Pot", name)
	}
	return nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
