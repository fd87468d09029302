package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/cook-api/internal/domain"
)

// InMemoryRecipeRepository is the process-local recipe store used when no
// Postgres DSN is configured.
type InMemoryRecipeRepository struct {
	mu      sync.RWMutex
	nextID  int64
	recipes map[int64]domain.Recipe
	reviews *InMemoryReviewRepository
}

// NewInMemoryRecipeRepository returns an empty store.
func NewInMemoryRecipeRepository() *InMemoryRecipeRepository {
	return &InMemoryRecipeRepository{recipes: make(map[int64]domain.Recipe)}
}

// WithReviews links the review store so deleting a recipe drops its reviews,
// matching the ON DELETE CASCADE of the review table.
func (r *InMemoryRecipeRepository) WithReviews(reviews *InMemoryReviewRepository) *InMemoryRecipeRepository {
	r.reviews = reviews
	return r
}

func cloneRecipe(recipe domain.Recipe) domain.Recipe {
	recipe.Ingredients = slices.Clone(recipe.Ingredients)
	return recipe
}

func (r *InMemoryRecipeRepository) Create(_ context.Context, recipe *domain.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	recipe.ID = r.nextID
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	r.recipes[recipe.ID] = cloneRecipe(*recipe)
	return nil
}

func (r *InMemoryRecipeRepository) Update(_ context.Context, recipe *domain.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recipes[recipe.ID]; !ok {
		return ErrNotFound
	}
	recipe.UpdatedAt = time.Now().UTC()
	r.recipes[recipe.ID] = cloneRecipe(*recipe)
	return nil
}

func (r *InMemoryRecipeRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recipes[id]; !ok {
		return ErrNotFound
	}
	delete(r.recipes, id)
	if r.reviews != nil {
		r.reviews.deleteByRecipe(id)
	}
	return nil
}

func (r *InMemoryRecipeRepository) GetByID(_ context.Context, id int64) (*domain.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recipe, ok := r.recipes[id]
	if !ok {
		return nil, ErrNotFound
	}
	recipe = cloneRecipe(recipe)
	return &recipe, nil
}

func (r *InMemoryRecipeRepository) List(_ context.Context, limit, offset int) ([]domain.Recipe, error) {
	r.mu.RLock()
	all := make([]domain.Recipe, 0, len(r.recipes))
	for _, recipe := range r.recipes {
		all = append(all, cloneRecipe(recipe))
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return []domain.Recipe{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// InMemoryReviewRepository is the process-local review store. The one review
// per user per recipe rule is enforced under the insert lock.
type InMemoryReviewRepository struct {
	mu      sync.RWMutex
	nextID  int64
	reviews map[int64]domain.Review
}

// NewInMemoryReviewRepository returns an empty store.
func NewInMemoryReviewRepository() *InMemoryReviewRepository {
	return &InMemoryReviewRepository{reviews: make(map[int64]domain.Review)}
}

func (r *InMemoryReviewRepository) Create(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.RecipeID == review.RecipeID && existing.OwnerID == review.OwnerID {
			return ErrDuplicateReview
		}
	}
	r.nextID++
	now := time.Now().UTC()
	review.ID = r.nextID
	review.CreatedAt = now
	review.UpdatedAt = now
	r.reviews[review.ID] = *review
	return nil
}

func (r *InMemoryReviewRepository) Update(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[review.ID]; !ok {
		return ErrNotFound
	}
	review.UpdatedAt = time.Now().UTC()
	r.reviews[review.ID] = *review
	return nil
}

func (r *InMemoryReviewRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *InMemoryReviewRepository) deleteByRecipe(recipeID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, review := range r.reviews {
		if review.RecipeID == recipeID {
			delete(r.reviews, id)
		}
	}
}

func (r *InMemoryReviewRepository) GetByID(_ context.Context, id int64) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &review, nil
}

func (r *InMemoryReviewRepository) ListByRecipe(_ context.Context, recipeID int64) ([]domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var reviews []domain.Review
	for _, review := range r.reviews {
		if review.RecipeID == recipeID {
			reviews = append(reviews, review)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].ID < reviews[j].ID })
	return reviews, nil
}
