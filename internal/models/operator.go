package models

import "time"

// Operator is a staff account that authenticates against the API.
type Operator struct {
	UID          string // UUID
	Username     string // Unique
	Email        string
	PasswordHash string
	Role         string // admin or operator
	CreatedAt    time.Time
}
