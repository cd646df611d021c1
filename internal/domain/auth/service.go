package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"MyFinance/internal/domain/user"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenIssuer is satisfied by middleware.JwtService.
type TokenIssuer interface {
	GenerateToken(u *user.User) (string, time.Time, error)
}

type Login struct {
	Identifier string
	Password   string
}

type Session struct {
	Token     string     `json:"accessToken"`
	TokenType string     `json:"tokenType"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *user.User `json:"user"`
}

type Service struct {
	Repository  user.Repository
	UserService *user.Service
	Tokens      TokenIssuer
}

func NewService(repo user.Repository, userSvc *user.Service, tokens TokenIssuer) *Service {
	return &Service{
		Repository:  repo,
		UserService: userSvc,
		Tokens:      tokens,
	}
}

func (s *Service) Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
	created, err := s.UserService.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("user_id", created.Id.String()).Msg("user_registered")
	return created, nil
}

// Login accepts an email or a username as identifier.
func (s *Service) Login(ctx context.Context, login Login) (*Session, error) {
	identifier := strings.TrimSpace(login.Identifier)
	if identifier == "" {
		return nil, appErrors.NewValidationError("identifier", "email or username is required")
	}
	if login.Password == "" {
		return nil, appErrors.NewValidationError("password", "password is required")
	}

	var (
		entity *user.User
		err    error
	)
	if strings.Contains(identifier, "@") {
		entity, err = s.Repository.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		entity, err = s.Repository.GetByUsername(ctx, identifier)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	if !entity.IsActive {
		return nil, appErrors.ErrInvalidCredentials
	}

	if err := PasswordValidate(login.Password, entity.Password); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.Tokens.GenerateToken(entity)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}

	return &Session{
		Token:     token,
		TokenType: "bearer",
		ExpiresAt: expiresAt,
		User:      entity,
	}, nil
}

func PasswordValidate(inputPassword string, storedPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(storedPassword), []byte(inputPassword)); err != nil {
		return appErrors.ErrInvalidCredentials
	}
	return nil
}
