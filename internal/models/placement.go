package models

import "time"

// Placement is an immutable fact that a user occupied a workplace at a point
// in time. Rows are only ever created or deleted, never updated.
type Placement struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	WorkplaceID string    `db:"workplace_id" json:"workplace_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PlacementDetail joins the placement with its user for presentation.
type PlacementDetail struct {
	ID          string    `db:"id" json:"id"`
	WorkplaceID string    `db:"workplace_id" json:"workplace_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UserID      string    `db:"user_id" json:"-"`
	Username    string    `db:"username" json:"-"`
	FirstName   string    `db:"first_name" json:"-"`
	LastName    string    `db:"last_name" json:"-"`
	User        *User     `db:"-" json:"user"`
}

// HydrateUser copies the joined columns into the nested User payload.
func (p *PlacementDetail) HydrateUser() {
	p.User = &User{
		ID:        p.UserID,
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}
