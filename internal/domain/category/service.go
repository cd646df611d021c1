package category

import (
	"context"
	"errors"
	"strings"

	"MyFinance/internal/domain/shared"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type Service struct {
	Repository Repository
	shared.BaseService
}

func NewService(repo Repository, userChecker *shared.UserCheckerService) *Service {
	return &Service{
		Repository: repo,
		BaseService: shared.BaseService{
			UserChecker: userChecker,
		},
	}
}

func (s *Service) Create(ctx context.Context, category *Category) error {
	if err := s.EnsureUserExists(ctx, category.UserId); err != nil {
		return err
	}

	category.Name = shared.NormalizeName(category.Name)
	if category.Name == "" {
		return appErrors.NewValidationError("name", "name is required")
	}
	category.Color = shared.NormalizeColor(category.Color)

	if err := s.checkNameNotExists(ctx, category.Name, category.UserId); err != nil {
		return err
	}

	now := pkg.SetTimestamps()
	category.Id = pkg.GenerateULIDObject()
	category.CreatedAt = now
	category.UpdatedAt = now

	if err := s.Repository.Create(ctx, category); err != nil {
		if shared.IsUniqueConstraintError(err) {
			return appErrors.NewDuplicateNameError("Category", category.Name)
		}
		return appErrors.NewDatabaseError(err)
	}

	return nil
}

func (s *Service) Update(ctx context.Context, categoryID, userID ulid.ULID, req *UpdateRequest) (*Category, error) {
	existing, err := s.GetByID(ctx, categoryID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := shared.NormalizeName(*req.Name)
		if name == "" {
			return nil, appErrors.NewValidationError("name", "name is required")
		}
		if !strings.EqualFold(existing.Name, name) {
			if err := s.checkNameNotExists(ctx, name, userID); err != nil {
				return nil, err
			}
		}
		existing.Name = name
	}
	if req.Color != nil {
		existing.Color = shared.NormalizeColor(*req.Color)
	}
	existing.UpdatedAt = pkg.SetTimestamps()

	if err := s.Repository.Update(ctx, existing); err != nil {
		if shared.IsUniqueConstraintError(err) {
			return nil, appErrors.NewDuplicateNameError("Category", existing.Name)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, categoryID, userID ulid.ULID) error {
	if _, err := s.GetByID(ctx, categoryID, userID); err != nil {
		return err
	}

	if err := s.Repository.Delete(ctx, categoryID, userID); err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, categoryID, userID ulid.ULID) (*Category, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	category, err := s.Repository.GetByID(ctx, categoryID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrCategoryNotFound
	}
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	return category, nil
}

func (s *Service) List(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Category, int64, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, 0, err
	}

	categories, total, err := s.Repository.List(ctx, userID, pagination)
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return categories, total, nil
}

// EnsureOwned returns CATEGORY_NOT_FOUND unless the category exists under userID.
func (s *Service) EnsureOwned(ctx context.Context, categoryID, userID ulid.ULID) error {
	ok, err := s.Repository.BelongsToUser(ctx, categoryID, userID)
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	if !ok {
		return appErrors.ErrCategoryNotFound
	}
	return nil
}

func (s *Service) checkNameNotExists(ctx context.Context, name string, userID ulid.ULID) error {
	existing, err := s.Repository.GetByName(ctx, name, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return appErrors.NewDatabaseError(err)
	}
	if existing != nil {
		return appErrors.NewDuplicateNameError("Category", name)
	}
	return nil
}
