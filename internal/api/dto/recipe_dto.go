package dto

import (
	"time"

	"github.com/spec-kit/cook-api/internal/domain"
)

// RecipeRequest is used for both create and partial update.
type RecipeRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Difficulty  *domain.Difficulty `json:"difficulty"`
	Calories    *float64           `json:"calories"`
	Ingredients []string           `json:"ingredients"`
}

// RecipeResponse public recipe view.
type RecipeResponse struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"userId"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Difficulty  domain.Difficulty `json:"difficulty"`
	Calories    float64           `json:"calories"`
	Ingredients []string          `json:"ingredients"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewRecipeResponse maps a recipe.
func NewRecipeResponse(r *domain.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		UserID:      r.OwnerID,
		Name:        r.Name,
		Description: r.Description,
		Difficulty:  r.Difficulty,
		Calories:    r.Calories,
		Ingredients: r.Ingredients,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
