package account

import (
	"context"
	"errors"

	"MyFinance/internal/domain/shared"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/logger"
	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type Service struct {
	shared.BaseService
	Repository Repository
}

func NewService(repo Repository, userChecker *shared.UserCheckerService) *Service {
	return &Service{
		BaseService: shared.BaseService{UserChecker: userChecker},
		Repository:  repo,
	}
}

// GetOrCreate returns the user's account, creating an empty one on first use.
// Concurrent first calls converge on the same row thanks to the unique user index.
func (s *Service) GetOrCreate(ctx context.Context, userID ulid.ULID) (*Account, error) {
	existing, err := s.Repository.GetByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.NewDatabaseError(err)
	}

	created, err := s.Repository.CreateIfMissing(ctx, newAccount(userID))
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	if created {
		logger.Info().Str("user_id", userID.String()).Msg("account_created")
	}

	acc, err := s.Repository.GetByUserID(ctx, userID)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return acc, nil
}

// CreateAccount is the explicit variant of GetOrCreate and refuses a second account.
func (s *Service) CreateAccount(ctx context.Context, userID ulid.ULID) (*Account, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	acc := newAccount(userID)
	created, err := s.Repository.CreateIfMissing(ctx, acc)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	if !created {
		return nil, appErrors.ErrAccountExists
	}
	return acc, nil
}

func (s *Service) GetByUser(ctx context.Context, userID ulid.ULID) (*Account, error) {
	acc, err := s.Repository.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrAccountNotFound
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return acc, nil
}

// ApplyBalanceDelta moves the balance by delta (positive credits, negative debits).
func (s *Service) ApplyBalanceDelta(ctx context.Context, accountID ulid.ULID, delta int64) error {
	if delta == 0 {
		return nil
	}
	if err := s.Repository.ApplyBalanceDelta(ctx, accountID, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErrors.ErrAccountNotFound
		}
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func newAccount(userID ulid.ULID) *Account {
	now := pkg.SetTimestamps()
	return &Account{
		Id:        pkg.GenerateULIDObject(),
		UserId:    userID,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
