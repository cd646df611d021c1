package category_test

import (
	"context"
	"strings"
	"testing"

	"MyFinance/internal/domain/category"
	"MyFinance/internal/domain/shared"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type fakeCategoryRepository struct {
	createFn        func(ctx context.Context, c *category.Category) error
	updateFn        func(ctx context.Context, c *category.Category) error
	deleteFn        func(ctx context.Context, categoryID, userID ulid.ULID) error
	getByIDFn       func(ctx context.Context, categoryID, userID ulid.ULID) (*category.Category, error)
	getByNameFn     func(ctx context.Context, name string, userID ulid.ULID) (*category.Category, error)
	listFn          func(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*category.Category, int64, error)
	belongsToUserFn func(ctx context.Context, categoryID, userID ulid.ULID) (bool, error)
}

func (f *fakeCategoryRepository) Create(ctx context.Context, c *category.Category) error {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return nil
}

func (f *fakeCategoryRepository) Update(ctx context.Context, c *category.Category) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, c)
	}
	return nil
}

func (f *fakeCategoryRepository) Delete(ctx context.Context, categoryID, userID ulid.ULID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, categoryID, userID)
	}
	return nil
}

func (f *fakeCategoryRepository) GetByID(ctx context.Context, categoryID, userID ulid.ULID) (*category.Category, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, categoryID, userID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategoryRepository) GetByName(ctx context.Context, name string, userID ulid.ULID) (*category.Category, error) {
	if f.getByNameFn != nil {
		return f.getByNameFn(ctx, name, userID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategoryRepository) List(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*category.Category, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, pagination)
	}
	return nil, 0, nil
}

func (f *fakeCategoryRepository) BelongsToUser(ctx context.Context, categoryID, userID ulid.ULID) (bool, error) {
	if f.belongsToUserFn != nil {
		return f.belongsToUserFn(ctx, categoryID, userID)
	}
	return false, nil
}

type allowAllUsers struct{}

func (allowAllUsers) Exists(context.Context, ulid.ULID) error { return nil }

func newService(repo *fakeCategoryRepository) *category.Service {
	return category.NewService(repo, shared.NewUserCheckerService(allowAllUsers{}))
}

func TestCreateCategory(t *testing.T) {
	t.Parallel()

	existingName := "Groceries"
	tests := []struct {
		name     string
		input    category.Category
		wantCode string
		wantName string
	}{
		{name: "normalizes name and color", input: category.Category{Name: "  Eating   out "}, wantName: "Eating out"},
		{name: "empty name", input: category.Category{Name: "   "}, wantCode: "VALIDATION_ERROR"},
		{name: "duplicate name", input: category.Category{Name: existingName}, wantCode: "DUPLICATE_NAME"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var created *category.Category
			repo := &fakeCategoryRepository{
				getByNameFn: func(_ context.Context, name string, userID ulid.ULID) (*category.Category, error) {
					if strings.EqualFold(name, existingName) {
						return &category.Category{Id: ulid.Make(), UserId: userID, Name: existingName}, nil
					}
					return nil, gorm.ErrRecordNotFound
				},
				createFn: func(_ context.Context, c *category.Category) error {
					created = c
					return nil
				},
			}

			input := tt.input
			input.UserId = ulid.Make()
			err := newService(repo).Create(context.Background(), &input)

			if tt.wantCode != "" {
				if !appErrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				if created != nil {
					t.Fatalf("repository should not be called on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if created == nil || created.Name != tt.wantName {
				t.Fatalf("expected name %q, got %+v", tt.wantName, created)
			}
			if created.Color != "#000000" {
				t.Fatalf("expected default color, got %q", created.Color)
			}
			if pkg.IsEmptyULID(created.Id) {
				t.Fatalf("expected generated id")
			}
		})
	}
}

func TestUpdateCategoryNotFound(t *testing.T) {
	t.Parallel()

	name := "Rent"
	_, err := newService(&fakeCategoryRepository{}).Update(context.Background(), ulid.Make(), ulid.Make(), &category.UpdateRequest{Name: &name})
	if !appErrors.HasCode(err, appErrors.ErrCategoryNotFound.Code) {
		t.Fatalf("expected %s, got %v", appErrors.ErrCategoryNotFound.Code, err)
	}
}

func TestUpdateCategoryKeepsSameNameWithoutDuplicateCheck(t *testing.T) {
	t.Parallel()

	userID := ulid.Make()
	stored := &category.Category{Id: ulid.Make(), UserId: userID, Name: "Rent", Color: "#111111"}
	repo := &fakeCategoryRepository{
		getByIDFn: func(context.Context, ulid.ULID, ulid.ULID) (*category.Category, error) {
			return stored, nil
		},
		getByNameFn: func(context.Context, string, ulid.ULID) (*category.Category, error) {
			t.Fatalf("duplicate check should be skipped for an unchanged name")
			return nil, nil
		},
	}

	name, color := "rent", "#222222"
	updated, err := newService(repo).Update(context.Background(), stored.Id, userID, &category.UpdateRequest{Name: &name, Color: &color})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "rent" || updated.Color != "#222222" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}

func TestEnsureOwned(t *testing.T) {
	t.Parallel()

	owner := ulid.Make()
	repo := &fakeCategoryRepository{
		belongsToUserFn: func(_ context.Context, _ ulid.ULID, userID ulid.ULID) (bool, error) {
			return userID == owner, nil
		},
	}
	svc := newService(repo)

	if err := svc.EnsureOwned(context.Background(), ulid.Make(), owner); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.EnsureOwned(context.Background(), ulid.Make(), ulid.Make()); !appErrors.HasCode(err, appErrors.ErrCategoryNotFound.Code) {
		t.Fatalf("expected %s, got %v", appErrors.ErrCategoryNotFound.Code, err)
	}
}
