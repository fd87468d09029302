package domain

import "time"

// Review is a rating left by a user on someone else's recipe.
type Review struct {
	ID        int64
	RecipeID  int64
	OwnerID   int64
	Title     string
	Content   string
	Rating    int
	CreatedAt time.Time
	UpdatedAt time.Time
}
