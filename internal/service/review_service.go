package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/spec-kit/cook-api/internal/domain"
	"github.com/spec-kit/cook-api/internal/events"
	"github.com/spec-kit/cook-api/internal/repository"
	apperrors "github.com/spec-kit/cook-api/pkg/util/errorutil"
)

// ReviewInput carries writable review fields. Nil pointers leave a field
// unchanged on update.
type ReviewInput struct {
	Title   *string
	Content *string
	Rating  *int
}

// ReviewService manages reviews; only the author may change or remove one.
type ReviewService struct {
	reviews    repository.ReviewRepository
	recipes    repository.RecipeRepository
	dispatcher events.Dispatcher
}

// NewReviewService builds the service.
func NewReviewService(reviews repository.ReviewRepository, recipes repository.RecipeRepository, dispatcher events.Dispatcher) *ReviewService {
	return &ReviewService{reviews: reviews, recipes: recipes, dispatcher: dispatcher}
}

// Create adds principal's review to a recipe. Authors cannot review their own
// recipe and may review each recipe once.
func (s *ReviewService) Create(ctx context.Context, principal domain.AuthenticatedPrincipal, recipeID int64, input ReviewInput) (*domain.Review, error) {
	if input.Title == nil || input.Content == nil || input.Rating == nil {
		return nil, apperrors.NewValidationError("title, content, rating required", nil)
	}
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, notFoundOr(err, "recipe", recipeID)
	}
	if recipe.OwnerID == principal.UserID {
		return nil, apperrors.NewForbidden("you are not allowed to review your own recipe")
	}

	review := &domain.Review{RecipeID: recipeID, OwnerID: principal.UserID}
	if err := applyReviewInput(review, input); err != nil {
		return nil, err
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, apperrors.Wrap(apperrors.CodeForbidden,
				"you are not allowed to add multiple reviews to one recipe", http.StatusForbidden, err)
		}
		return nil, err
	}
	s.publishChange(ctx, principal, review.ID, "created")
	return review, nil
}

// Get returns a single review.
func (s *ReviewService) Get(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "review", id)
	}
	return review, nil
}

// ListByRecipe returns every review of a recipe.
func (s *ReviewService) ListByRecipe(ctx context.Context, recipeID int64) ([]domain.Review, error) {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return nil, notFoundOr(err, "recipe", recipeID)
	}
	return s.reviews.ListByRecipe(ctx, recipeID)
}

// Update applies input to a review written by principal.
func (s *ReviewService) Update(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64, input ReviewInput) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "review", id)
	}
	if err := guardOwnership(principal, review.OwnerID, "you are not allowed to modify this review"); err != nil {
		return nil, err
	}
	if err := applyReviewInput(review, input); err != nil {
		return nil, err
	}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, notFoundOr(err, "review", id)
	}
	s.publishChange(ctx, principal, id, "updated")
	return review, nil
}

// Delete removes a review written by principal.
func (s *ReviewService) Delete(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64) error {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "review", id)
	}
	if err := guardOwnership(principal, review.OwnerID, "you are not allowed to delete this review"); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return notFoundOr(err, "review", id)
	}
	s.publishChange(ctx, principal, id, "deleted")
	return nil
}

func applyReviewInput(review *domain.Review, input ReviewInput) error {
	details := map[string]any{}
	if input.Title != nil {
		if title := strings.TrimSpace(*input.Title); title == "" {
			details["title"] = "title must not be blank"
		} else {
			review.Title = title
		}
	}
	if input.Content != nil {
		if content := strings.TrimSpace(*input.Content); content == "" {
			details["content"] = "content must not be blank"
		} else {
			review.Content = content
		}
	}
	if input.Rating != nil {
		if *input.Rating < 1 || *input.Rating > 10 {
			details["rating"] = "rating must be between 1 and 10"
		} else {
			review.Rating = *input.Rating
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid review", details)
	}
	return nil
}

func (s *ReviewService) publishChange(ctx context.Context, principal domain.AuthenticatedPrincipal, id int64, action string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.New(events.EventReviewChanged,
		events.Actor{UserID: principal.UserID, Username: principal.Username},
		events.ResourceChangedPayload{ResourceID: id, Action: action}))
}
