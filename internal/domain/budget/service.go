package budget

import (
	"context"
	"errors"
	"strings"

	"MyFinance/internal/domain/shared"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/logger"
	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type Service struct {
	Repository Repository
	Categories CategoryChecker
	UnitOfWork shared.UnitOfWork
	shared.BaseService
}

func NewService(repo Repository, categories CategoryChecker, uow shared.UnitOfWork, userChecker *shared.UserCheckerService) *Service {
	if uow == nil {
		uow = shared.Direct
	}
	return &Service{
		Repository: repo,
		Categories: categories,
		UnitOfWork: uow,
		BaseService: shared.BaseService{
			UserChecker: userChecker,
		},
	}
}

func (s *Service) CreateBudget(ctx context.Context, req *CreateRequest) (*Budget, error) {
	if err := s.EnsureUserExists(ctx, req.UserId); err != nil {
		return nil, err
	}

	name := shared.NormalizeName(req.Name)
	if name == "" {
		return nil, appErrors.NewValidationError("name", "name is required")
	}
	if req.TotalAmount <= 0 {
		return nil, appErrors.NewValidationError("total_amount", "total amount must be greater than zero")
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, appErrors.NewValidationError("start_date", "start date must be before end date")
	}
	if req.CategoryId != nil {
		if err := s.Categories.EnsureOwned(ctx, *req.CategoryId, req.UserId); err != nil {
			return nil, err
		}
	}
	if err := s.checkNameNotExists(ctx, req.UserId, req.CategoryId, name, nil); err != nil {
		return nil, err
	}

	now := pkg.SetTimestamps()
	budget := &Budget{
		Id:          pkg.GenerateULIDObject(),
		UserId:      req.UserId,
		CategoryId:  req.CategoryId,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Color:       shared.NormalizeColor(req.Color),
		TotalAmount: req.TotalAmount,
		SpentAmount: 0,
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	budget.Recompute()

	if err := s.Repository.Create(ctx, budget); err != nil {
		if shared.IsUniqueConstraintError(err) {
			return nil, appErrors.NewDuplicateNameError("Budget", name)
		}
		return nil, appErrors.NewDatabaseError(err)
	}

	return budget, nil
}

// UpdateBudget edits a budget under its row lock so a concurrent ApplyDelta cannot
// interleave between the read of spent and the write of remaining.
func (s *Service) UpdateBudget(ctx context.Context, budgetID, userID ulid.ULID, req *UpdateRequest) (*Budget, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	var updated *Budget
	err := s.UnitOfWork.Do(ctx, func(ctx context.Context) error {
		budget, err := s.lockOwned(ctx, budgetID, userID)
		if err != nil {
			return err
		}
		if err := s.applyUpdate(ctx, budget, userID, req); err != nil {
			return err
		}

		if err := s.Repository.Update(ctx, budget); err != nil {
			if shared.IsUniqueConstraintError(err) {
				return appErrors.NewDuplicateNameError("Budget", budget.Name)
			}
			return appErrors.NewDatabaseError(err)
		}
		updated = budget
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) lockOwned(ctx context.Context, budgetID, userID ulid.ULID) (*Budget, error) {
	budget, err := s.Repository.GetForUpdate(ctx, budgetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrBudgetNotFound
	}
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	if budget.UserId != userID || budget.IsDeleted {
		return nil, appErrors.ErrBudgetNotFound
	}
	return budget, nil
}

func (s *Service) applyUpdate(ctx context.Context, budget *Budget, userID ulid.ULID, req *UpdateRequest) error {
	nameChanged := false
	if req.Name != nil {
		name := shared.NormalizeName(*req.Name)
		if name == "" {
			return appErrors.NewValidationError("name", "name is required")
		}
		nameChanged = !strings.EqualFold(name, budget.Name)
		budget.Name = name
	}
	if req.Description != nil {
		budget.Description = strings.TrimSpace(*req.Description)
	}
	if req.Color != nil {
		budget.Color = shared.NormalizeColor(*req.Color)
	}
	if req.TotalAmount != nil {
		if *req.TotalAmount <= 0 {
			return appErrors.NewValidationError("total_amount", "total amount must be greater than zero")
		}
		budget.TotalAmount = *req.TotalAmount
	}

	categoryChanged := false
	switch {
	case req.ClearCategory:
		categoryChanged = budget.CategoryId != nil
		budget.CategoryId = nil
	case req.CategoryId != nil:
		if err := s.Categories.EnsureOwned(ctx, *req.CategoryId, userID); err != nil {
			return err
		}
		categoryChanged = !pkg.SameULID(budget.CategoryId, req.CategoryId)
		budget.CategoryId = req.CategoryId
	}

	if req.StartDate != nil {
		budget.StartDate = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		budget.EndDate = req.EndDate.UTC()
	}
	if !budget.StartDate.Before(budget.EndDate) {
		return appErrors.NewValidationError("start_date", "start date must be before end date")
	}
	if req.IsActive != nil {
		budget.IsActive = *req.IsActive
	}

	if nameChanged || categoryChanged {
		if err := s.checkNameNotExists(ctx, userID, budget.CategoryId, budget.Name, &budget.Id); err != nil {
			return err
		}
	}

	budget.Recompute()
	budget.UpdatedAt = pkg.SetTimestamps()
	return nil
}

// DeleteBudget is a soft delete; linked transactions keep their reference.
func (s *Service) DeleteBudget(ctx context.Context, budgetID, userID ulid.ULID) error {
	if _, err := s.GetBudgetByID(ctx, budgetID, userID); err != nil {
		return err
	}

	if err := s.Repository.SoftDelete(ctx, budgetID, userID); err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (s *Service) GetBudgetByID(ctx context.Context, budgetID, userID ulid.ULID) (*Budget, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	budget, err := s.Repository.GetByID(ctx, budgetID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrBudgetNotFound
	}
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return budget, nil
}

func (s *Service) ListBudgets(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Budget, int64, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, 0, err
	}

	budgets, total, err := s.Repository.List(ctx, userID, pagination)
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return budgets, total, nil
}

func (s *Service) GetBudgetSummary(ctx context.Context, userID ulid.ULID) (*Summary, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	budgets, err := s.Repository.ListActive(ctx, userID)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	summary := &Summary{Chart: make([]ChartEntry, 0, len(budgets))}
	for _, b := range budgets {
		summary.TotalBudget += b.TotalAmount
		summary.TotalSpent += b.SpentAmount
		summary.TotalRemaining += b.RemainingAmount
		summary.Chart = append(summary.Chart, ChartEntry{
			Label:  b.Name,
			Amount: b.TotalAmount,
			Color:  b.Color,
		})
	}
	return summary, nil
}

// ApplyDelta is the budget amount updater used by the transaction engine. It loads
// the budget by id regardless of is_deleted, locks it, moves spent by +amount for a
// debit or -amount otherwise, and recomputes remaining.
func (s *Service) ApplyDelta(ctx context.Context, budgetID ulid.ULID, amount int64, isDebit bool) (*Budget, error) {
	var updated *Budget
	err := s.UnitOfWork.Do(ctx, func(ctx context.Context) error {
		budget, err := s.Repository.GetForUpdate(ctx, budgetID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErrors.ErrBudgetNotFound
		}
		if err != nil {
			return appErrors.NewDatabaseError(err)
		}

		change := Change(amount, isDebit)
		budget.ApplyChange(change)
		budget.UpdatedAt = pkg.SetTimestamps()

		if err := s.Repository.SaveAmounts(ctx, budget); err != nil {
			return appErrors.NewDatabaseError(err)
		}

		logger.Debug().
			Str("budget_id", budgetID.String()).
			Int64("change", change).
			Int64("spent", budget.SpentAmount).
			Msg("budget_delta_applied")

		updated = budget
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// EnsureOwned returns BUDGET_NOT_FOUND unless budgetID belongs to userID. Soft-deleted
// budgets still count as owned.
func (s *Service) EnsureOwned(ctx context.Context, budgetID, userID ulid.ULID) error {
	ok, err := s.Repository.BelongsToUser(ctx, budgetID, userID)
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	if !ok {
		return appErrors.ErrBudgetNotFound
	}
	return nil
}

func (s *Service) checkNameNotExists(ctx context.Context, userID ulid.ULID, categoryID *ulid.ULID, name string, excludeID *ulid.ULID) error {
	exists, err := s.Repository.ExistsByName(ctx, userID, categoryID, name, excludeID)
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	if exists {
		return appErrors.NewDuplicateNameError("Budget", name)
	}
	return nil
}
