package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/cook-api/internal/domain"
)

// ReviewRepository encapsulates review persistence.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	ListByRecipe(ctx context.Context, recipeID int64) ([]domain.Review, error)
}

type reviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository instantiates repository.
func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &reviewRepository{pool: pool}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	const query = `
        INSERT INTO review (recipe_id, user_id, title, review_content, rating)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		review.RecipeID,
		review.OwnerID,
		review.Title,
		review.Content,
		review.Rating,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if isUniqueViolation(err, "review_recipe_id_user_id_key") {
		return ErrDuplicateReview
	}
	return err
}

func (r *reviewRepository) Update(ctx context.Context, review *domain.Review) error {
	const query = `
        UPDATE review SET title=$1, review_content=$2, rating=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		review.Title,
		review.Content,
		review.Rating,
		review.ID,
	).Scan(&review.UpdatedAt)
	return mapNoRows(err)
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM review WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	const query = `
        SELECT id, recipe_id, user_id, title, review_content, rating, created_at, updated_at
        FROM review WHERE id=$1`

	var review domain.Review
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&review.ID,
		&review.RecipeID,
		&review.OwnerID,
		&review.Title,
		&review.Content,
		&review.Rating,
		&review.CreatedAt,
		&review.UpdatedAt,
	); err != nil {
		return nil, mapNoRows(err)
	}
	return &review, nil
}

func (r *reviewRepository) ListByRecipe(ctx context.Context, recipeID int64) ([]domain.Review, error) {
	const query = `
        SELECT id, recipe_id, user_id, title, review_content, rating, created_at, updated_at
        FROM review WHERE recipe_id=$1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.RecipeID,
			&review.OwnerID,
			&review.Title,
			&review.Content,
			&review.Rating,
			&review.CreatedAt,
			&review.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
