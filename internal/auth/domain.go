package auth

import "time"

// User represents an account that owns a tenant's inventory data.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	ImageURL     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
