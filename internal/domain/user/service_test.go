package user_test

import (
	"context"
	"strings"
	"testing"

	"MyFinance/internal/domain/user"
	appErrors "MyFinance/internal/errors"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type memoryUserRepository struct {
	users []*user.User
}

func (m *memoryUserRepository) Create(_ context.Context, u *user.User) error {
	m.users = append(m.users, u)
	return nil
}

func (m *memoryUserRepository) GetByID(_ context.Context, id ulid.ULID) (*user.User, error) {
	for _, u := range m.users {
		if u.Id == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryUserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryUserRepository) GetByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func newService(repo *memoryUserRepository) *user.Service {
	svc := user.NewService(repo)
	svc.HashCost = bcrypt.MinCost
	return svc
}

func TestRegister(t *testing.T) {
	t.Parallel()

	repo := &memoryUserRepository{}
	svc := newService(repo)
	ctx := context.Background()

	created, err := svc.Register(ctx, &user.RegisterRequest{
		Username: "alice",
		Email:    " Alice@Example.com ",
		FullName: "Alice Liddell",
		Password: "Wonder!land1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Email != "alice@example.com" || !created.IsActive {
		t.Fatalf("unexpected user %+v", created)
	}
	if created.Password == "Wonder!land1" {
		t.Fatalf("password must be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("Wonder!land1")); err != nil {
		t.Fatalf("stored hash does not match: %v", err)
	}
	if err := svc.Exists(ctx, created.Id); err != nil {
		t.Fatalf("registered user should exist: %v", err)
	}

	tests := []struct {
		name     string
		req      user.RegisterRequest
		wantCode string
	}{
		{name: "email taken", req: user.RegisterRequest{Username: "bob", Email: "alice@example.com", Password: "Secret!Pass"}, wantCode: appErrors.ErrEmailAlreadyExists.Code},
		{name: "username taken", req: user.RegisterRequest{Username: "ALICE", Email: "other@example.com", Password: "Secret!Pass"}, wantCode: appErrors.ErrUsernameTaken.Code},
		{name: "short password", req: user.RegisterRequest{Username: "carol", Email: "carol@example.com", Password: "S!a"}, wantCode: "VALIDATION_ERROR"},
		{name: "no uppercase", req: user.RegisterRequest{Username: "carol", Email: "carol@example.com", Password: "secret!pass"}, wantCode: "VALIDATION_ERROR"},
		{name: "no special", req: user.RegisterRequest{Username: "carol", Email: "carol@example.com", Password: "SecretPass1"}, wantCode: "VALIDATION_ERROR"},
		{name: "bad username", req: user.RegisterRequest{Username: "a b", Email: "carol@example.com", Password: "Secret!Pass"}, wantCode: "VALIDATION_ERROR"},
		{name: "bad email", req: user.RegisterRequest{Username: "carol", Email: "carol", Password: "Secret!Pass"}, wantCode: "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		req := tt.req
		if _, err := svc.Register(ctx, &req); !appErrors.HasCode(err, tt.wantCode) {
			t.Fatalf("%s: expected %s, got %v", tt.name, tt.wantCode, err)
		}
	}
}

func TestGetByIDNotFound(t *testing.T) {
	t.Parallel()

	_, err := newService(&memoryUserRepository{}).GetByID(context.Background(), ulid.Make())
	if !appErrors.HasCode(err, appErrors.ErrUserNotFound.Code) {
		t.Fatalf("expected %s, got %v", appErrors.ErrUserNotFound.Code, err)
	}
}
