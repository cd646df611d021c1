package user

import (
	"context"
	"errors"
	"regexp"
	"strings"

	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const DefaultHashCost = 12

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	specialPattern  = regexp.MustCompile(`[@$!%*?&]`)
)

type Service struct {
	Repository Repository
	HashCost   int
}

func NewService(repo Repository) *Service {
	return &Service{Repository: repo, HashCost: DefaultHashCost}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !usernamePattern.MatchString(username) {
		return nil, appErrors.NewValidationError("username", "username must be 3 to 50 letters, digits or . _ -")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, appErrors.NewValidationError("email", "invalid email")
	}
	if err := PasswordRequirements(req.Password); err != nil {
		return nil, err
	}

	if taken, err := s.exists(s.Repository.GetByEmail(ctx, email)); err != nil {
		return nil, err
	} else if taken {
		return nil, appErrors.ErrEmailAlreadyExists
	}
	if taken, err := s.exists(s.Repository.GetByUsername(ctx, username)); err != nil {
		return nil, err
	} else if taken {
		return nil, appErrors.ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost())
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}

	now := pkg.SetTimestamps()
	user := &User{
		Id:        pkg.GenerateULIDObject(),
		Username:  username,
		Email:     email,
		FullName:  strings.TrimSpace(req.FullName),
		Password:  string(hashed),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Repository.Create(ctx, user); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id ulid.ULID) (*User, error) {
	user, err := s.Repository.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrUserNotFound
	}
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return user, nil
}

// Exists satisfies shared.UserChecker.
func (s *Service) Exists(ctx context.Context, userID ulid.ULID) error {
	_, err := s.GetByID(ctx, userID)
	return err
}

func (s *Service) hashCost() int {
	if s.HashCost < bcrypt.MinCost {
		return DefaultHashCost
	}
	return s.HashCost
}

func (s *Service) exists(_ *User, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, appErrors.NewDatabaseError(err)
}

func PasswordRequirements(password string) error {
	if len(password) < 8 {
		return appErrors.NewValidationError("password", "password must be at least 8 characters")
	}
	if !upperPattern.MatchString(password) {
		return appErrors.NewValidationError("password", "password must contain an uppercase letter")
	}
	if !specialPattern.MatchString(password) {
		return appErrors.NewValidationError("password", "password must contain a special character (@$!%*?&)")
	}
	return nil
}
