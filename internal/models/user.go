package models

import "time"

// User is a registered account that can own short links.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	Plan         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
