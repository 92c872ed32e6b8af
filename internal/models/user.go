package models

import (
	"strings"
	"time"
)

// User represents a student identity owned by the external identity store.
// Only the fields the roster core needs are mirrored here.
type User struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DisplayName renders the roster convention "Surname Firstname".
func (u User) DisplayName() string {
	return strings.TrimSpace(u.LastName + " " + u.FirstName)
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
