package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/cook-api/internal/domain"
)

// RecipeRepository encapsulates recipe persistence.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *domain.Recipe) error
	Update(ctx context.Context, recipe *domain.Recipe) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Recipe, error)
	List(ctx context.Context, limit, offset int) ([]domain.Recipe, error)
}

type recipeRepository struct {
	pool *pgxpool.Pool
}

// NewRecipeRepository instantiates repository.
func NewRecipeRepository(pool *pgxpool.Pool) RecipeRepository {
	return &recipeRepository{pool: pool}
}

const recipeColumns = `
        id, user_id, name, description, difficulty, calories,
        COALESCE((SELECT array_agg(ri.name ORDER BY ri.position)
                  FROM recipe_ingredient ri WHERE ri.recipe_id = recipe.id), '{}'),
        created_at, updated_at`

func (r *recipeRepository) Create(ctx context.Context, recipe *domain.Recipe) error {
	const query = `
        INSERT INTO recipe (user_id, name, description, difficulty, calories)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			recipe.OwnerID,
			recipe.Name,
			recipe.Description,
			recipe.Difficulty,
			recipe.Calories,
		).Scan(&recipe.ID, &recipe.CreatedAt, &recipe.UpdatedAt); err != nil {
			return err
		}
		return insertIngredients(ctx, tx, recipe.ID, recipe.Ingredients)
	})
}

func (r *recipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	const query = `
        UPDATE recipe SET name=$1, description=$2, difficulty=$3, calories=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			recipe.Name,
			recipe.Description,
			recipe.Difficulty,
			recipe.Calories,
			recipe.ID,
		).Scan(&recipe.UpdatedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredient WHERE recipe_id=$1`, recipe.ID); err != nil {
			return err
		}
		return insertIngredients(ctx, tx, recipe.ID, recipe.Ingredients)
	})
	return mapNoRows(err)
}

// insertIngredients stores names in list order.
func insertIngredients(ctx context.Context, tx pgx.Tx, recipeID int64, names []string) error {
	const query = `
        INSERT INTO recipe_ingredient (recipe_id, position, name)
        SELECT $1, t.ord, t.name FROM unnest($2::text[]) WITH ORDINALITY AS t(name, ord)`
	if len(names) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, query, recipeID, names)
	return err
}

func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM recipe WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipe WHERE id=$1`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	recipe, err := pgx.CollectOneRow(rows, scanRecipe)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &recipe, nil
}

func (r *recipeRepository) List(ctx context.Context, limit, offset int) ([]domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipe ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanRecipe)
}

func scanRecipe(row pgx.CollectableRow) (domain.Recipe, error) {
	var recipe domain.Recipe
	err := row.Scan(
		&recipe.ID,
		&recipe.OwnerID,
		&recipe.Name,
		&recipe.Description,
		&recipe.Difficulty,
		&recipe.Calories,
		&recipe.Ingredients,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	return recipe, err
}
