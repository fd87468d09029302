package domain

import "time"

// Role is the coarse privilege level of a registered user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the durable principal record owned by the credential store.
type User struct {
	ID           int64
	Fullname     string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
