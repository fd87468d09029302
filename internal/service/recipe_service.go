package service

import (
	"context"
	"strings"

	"github.com/spec-kit/cook-api/internal/cache"
	"github.com/spec-kit/cook-api/internal/domain"
	"github.com/spec-kit/cook-api/internal/events"
	"github.com/spec-kit/cook-api/internal/repository"
	apperrors "github.com/spec-kit/cook-api/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RecipeInput carries writable recipe fields. Nil pointers leave a field
// unchanged on update.
type RecipeInput struct {
	Name        *string
	Description *string
	Difficulty  *domain.Difficulty
	Calories    *float64
	Ingredients []string
}

// RecipeService manages recipes; only the creator may change or remove one.
type RecipeService struct {
	recipes    repository.RecipeRepository
	cache      cache.RecipeCache
	dispatcher events.Dispatcher
}

// NewRecipeService builds the service. A nil cache disables caching.
func NewRecipeService(recipes repository.RecipeRepository, recipeCache cache.RecipeCache, dispatcher events.Dispatcher) *RecipeService {
	if recipeCache == nil {
		recipeCache = cache.NewNoopRecipeCache()
	}
	return &RecipeService{recipes: recipes, cache: recipeCache, dispatcher: dispatcher}
}

// Create publishes a new recipe owned by principal.
func (s *RecipeService) Create(ctx context.Context, principal domain.AuthenticatedPrincipal, input RecipeInput) (*domain.Recipe, error) {
	recipe := &domain.Recipe{OwnerID: principal.UserID}
	if input.Name == nil || input.Description == nil || input.Difficulty == nil || input.Calories == nil || input.Ingredients == nil {
		return nil, apperrors.NewValidationError("name, description, difficulty, calories, ingredients required", nil)
	}
	if err := applyRecipeInput(recipe, input); err != nil {
		return nil, err
	}
	if err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, err
	}
	s.publishChange(ctx, principal, recipe.ID, "created")
	return recipe, nil
}

// Get returns a recipe, serving from cache when possible.
func (s *RecipeService) Get(ctx context.Context, id int64) (*domain.Recipe, error) {
	if recipe, ok := s.cache.Get(ctx, id); ok {
		return recipe, nil
	}
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "recipe", id)
	}
	s.cache.Set(ctx, recipe)
	return recipe, nil
}

// List returns one page of recipes ordered by id.
func (s *RecipeService) List(ctx context.Context, page, size int) ([]domain.Recipe, error) {
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if page < 0 {
		page = 0
	}
	return s.recipes.List(ctx, size, page*size)
}

// Update applies input to a recipe owned by principal.
func (s *RecipeService) Update(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64, input RecipeInput) (*domain.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "recipe", id)
	}
	if err := guardOwnership(principal, recipe.OwnerID, "you are not allowed to modify this recipe"); err != nil {
		return nil, err
	}
	if err := applyRecipeInput(recipe, input); err != nil {
		return nil, err
	}
	if err := s.recipes.Update(ctx, recipe); err != nil {
		return nil, notFoundOr(err, "recipe", id)
	}
	s.cache.Invalidate(ctx, id)
	s.publishChange(ctx, principal, id, "updated")
	return recipe, nil
}

// Delete removes a recipe owned by principal.
func (s *RecipeService) Delete(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64) error {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "recipe", id)
	}
	if err := guardOwnership(principal, recipe.OwnerID, "you are not allowed to delete this recipe"); err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		return notFoundOr(err, "recipe", id)
	}
	s.cache.Invalidate(ctx, id)
	s.publishChange(ctx, principal, id, "deleted")
	return nil
}

func applyRecipeInput(recipe *domain.Recipe, input RecipeInput) error {
	details := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name == "" {
			details["name"] = "name must not be blank"
		} else {
			recipe.Name = name
		}
	}
	if input.Description != nil {
		if desc := strings.TrimSpace(*input.Description); desc == "" {
			details["description"] = "description must not be blank"
		} else {
			recipe.Description = desc
		}
	}
	if input.Difficulty != nil {
		if d := domain.Difficulty(strings.ToUpper(string(*input.Difficulty))); !d.Valid() {
			details["difficulty"] = "difficulty must be EASY, MEDIUM or HARD"
		} else {
			recipe.Difficulty = d
		}
	}
	if input.Calories != nil {
		if *input.Calories < 0 {
			details["calories"] = "calories must not be negative"
		} else {
			recipe.Calories = *input.Calories
		}
	}
	if input.Ingredients != nil {
		if ingredients, ok := normalizeIngredients(input.Ingredients); !ok {
			details["ingredients"] = "at least one ingredient is required and none may be blank"
		} else {
			recipe.Ingredients = ingredients
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid recipe", details)
	}
	return nil
}

func normalizeIngredients(raw []string) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, false
		}
		out = append(out, name)
	}
	return out, true
}

func (s *RecipeService) publishChange(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64, action string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.New(events.EventRecipeChanged,
		events.Actor{UserID: principal.UserID, Username: principal.Username},
		events.ResourceChangedPayload{ResourceID: id, Action: action}))
}
