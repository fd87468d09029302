package domain

import "time"

// Difficulty grades how hard a recipe is to cook.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Recipe is a published recipe owned by the user who created it.
type Recipe struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	Difficulty  Difficulty
	Calories    float64
	Ingredients []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
