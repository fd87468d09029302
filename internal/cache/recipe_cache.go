package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/cook-api/internal/domain"
)

const recipeKeyPrefix = "cook-api:recipe:"

// RecipeCache is a best-effort read cache in front of the recipe store.
// Failures are logged and reported as misses.
type RecipeCache interface {
	Get(ctx context.Context, id int64) (*domain.Recipe, bool)
	Set(ctx context.Context, recipe *domain.Recipe)
	Invalidate(ctx context.Context, id int64)
}

type redisRecipeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRecipeCache stores recipes as JSON under a per-id key.
func NewRedisRecipeCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) RecipeCache {
	if client == nil {
		return NewNoopRecipeCache()
	}
	return &redisRecipeCache{client: client, ttl: ttl, logger: logger}
}

func recipeKey(id int64) string {
	return recipeKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *redisRecipeCache) Get(ctx context.Context, id int64) (*domain.Recipe, bool) {
	raw, err := c.client.Get(ctx, recipeKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("recipe cache get failed", zap.Int64("recipe_id", id), zap.Error(err))
		}
		return nil, false
	}
	var recipe domain.Recipe
	if err := json.Unmarshal(raw, &recipe); err != nil {
		c.logger.Warn("recipe cache entry corrupt", zap.Int64("recipe_id", id), zap.Error(err))
		return nil, false
	}
	return &recipe, true
}

func (c *redisRecipeCache) Set(ctx context.Context, recipe *domain.Recipe) {
	raw, err := json.Marshal(recipe)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, recipeKey(recipe.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("recipe cache set failed", zap.Int64("recipe_id", recipe.ID), zap.Error(err))
	}
}

func (c *redisRecipeCache) Invalidate(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, recipeKey(id)).Err(); err != nil {
		c.logger.Warn("recipe cache invalidate failed", zap.Int64("recipe_id", id), zap.Error(err))
	}
}

type noopRecipeCache struct{}

// NewNoopRecipeCache returns a cache that never hits.
func NewNoopRecipeCache() RecipeCache {
	return noopRecipeCache{}
}

func (noopRecipeCache) Get(context.Context, int64) (*domain.Recipe, bool) { return nil, false }
func (noopRecipeCache) Set(context.Context, *domain.Recipe)               {}
func (noopRecipeCache) Invalidate(context.Context, int64)                 {}
