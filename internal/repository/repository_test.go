package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/cook-api/internal/domain"
)

func TestErrorMapping(t *testing.T) {
	if !errors.Is(mapNoRows(pgx.ErrNoRows), ErrNotFound) {
		t.Fatal("pgx.ErrNoRows must map to ErrNotFound")
	}
	other := errors.New("connection reset")
	if mapNoRows(other) != other {
		t.Fatal("other errors must pass through")
	}

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "app_user_username_key"})
	if !isUniqueViolation(dup, "app_user_username_key") {
		t.Fatal("expected unique violation")
	}
	if isUniqueViolation(dup, "review_recipe_id_user_id_key") {
		t.Fatal("constraint name must match")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(nil, "") {
		t.Fatal("nil is not a unique violation")
	}
}

func TestInMemoryUserRepositoryConcurrentRegistration(t *testing.T) {
	repo := NewInMemoryUserRepository()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		taken   int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, &domain.User{Username: "same", Fullname: "Same Name", Role: domain.RoleUser})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrUsernameTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 || taken != 19 {
		t.Fatalf("expected exactly one registration, got created=%d taken=%d", created, taken)
	}
	exists, err := repo.ExistsByUsername(ctx, "same")
	if err != nil || !exists {
		t.Fatalf("ExistsByUsername() = %v, %v", exists, err)
	}
}

func TestInMemoryUserRepositoryLookups(t *testing.T) {
	repo := NewInMemoryUserRepository()
	ctx := context.Background()

	user := &domain.User{Username: "olga", Fullname: "Olga Oven", Role: domain.RoleUser}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if user.ID == 0 || user.CreatedAt.IsZero() {
		t.Fatalf("id and created_at must be assigned: %+v", user)
	}

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil || byID.Username != "olga" {
		t.Fatalf("GetByID() = %+v, %v", byID, err)
	}
	if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := repo.GetByID(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestInMemoryReviewRepositoryDuplicate(t *testing.T) {
	repo := NewInMemoryReviewRepository()
	ctx := context.Background()

	first := &domain.Review{RecipeID: 1, OwnerID: 2, Title: "a", Content: "b", Rating: 5}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	second := &domain.Review{RecipeID: 1, OwnerID: 2, Title: "c", Content: "d", Rating: 6}
	if err := repo.Create(ctx, second); !errors.Is(err, ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}
	other := &domain.Review{RecipeID: 1, OwnerID: 3, Title: "e", Content: "f", Rating: 7}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	reviews, err := repo.ListByRecipe(ctx, 1)
	if err != nil || len(reviews) != 2 || reviews[0].ID > reviews[1].ID {
		t.Fatalf("ListByRecipe() = %+v, %v", reviews, err)
	}
}

func TestInMemoryRecipeDeleteDropsReviews(t *testing.T) {
	reviews := NewInMemoryReviewRepository()
	recipes := NewInMemoryRecipeRepository().WithReviews(reviews)
	ctx := context.Background()

	kept := &domain.Recipe{OwnerID: 1, Name: "Stew", Ingredients: []string{"beef"}}
	doomed := &domain.Recipe{OwnerID: 1, Name: "Soup", Ingredients: []string{"leek"}}
	for _, recipe := range []*domain.Recipe{kept, doomed} {
		if err := recipes.Create(ctx, recipe); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}
	gone := &domain.Review{RecipeID: doomed.ID, OwnerID: 2, Title: "a", Content: "b", Rating: 5}
	stays := &domain.Review{RecipeID: kept.ID, OwnerID: 2, Title: "c", Content: "d", Rating: 6}
	for _, review := range []*domain.Review{gone, stays} {
		if err := reviews.Create(ctx, review); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	if err := recipes.Delete(ctx, doomed.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := reviews.GetByID(ctx, gone.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected review of deleted recipe to be gone, got %v", err)
	}
	if _, err := reviews.GetByID(ctx, stays.ID); err != nil {
		t.Fatalf("review of other recipe lost: %v", err)
	}
}

func TestInMemoryRecipeIngredientsAreCopied(t *testing.T) {
	recipes := NewInMemoryRecipeRepository()
	ctx := context.Background()

	recipe := &domain.Recipe{OwnerID: 1, Name: "Salad", Ingredients: []string{"lettuce", "oil"}}
	if err := recipes.Create(ctx, recipe); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	recipe.Ingredients[0] = "changed"

	got, err := recipes.GetByID(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Ingredients[0] != "lettuce" {
		t.Fatalf("stored ingredients aliased caller slice: %q", got.Ingredients)
	}
}
