package dto

import (
	"time"

	"github.com/spec-kit/cook-api/internal/domain"
)

// ReviewRequest is used for both create and partial update.
type ReviewRequest struct {
	Title         *string `json:"title"`
	ReviewContent *string `json:"reviewContent"`
	Rating        *int    `json:"rating"`
}

// ReviewResponse public review view.
type ReviewResponse struct {
	ID            int64     `json:"id"`
	RecipeID      int64     `json:"recipeId"`
	UserID        int64     `json:"userId"`
	Title         string    `json:"title"`
	ReviewContent string    `json:"reviewContent"`
	Rating        int       `json:"rating"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewReviewResponse maps a review.
func NewReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:            r.ID,
		RecipeID:      r.RecipeID,
		UserID:        r.OwnerID,
		Title:         r.Title,
		ReviewContent: r.Content,
		Rating:        r.Rating,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
