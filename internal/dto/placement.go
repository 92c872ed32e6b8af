package dto

import "github.com/rmn-lab/roster-api/internal/models"

// AssignRequest seats a user at a workplace. Either a user id or a username
// must be supplied.
type AssignRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// AssignResponse wraps the created placement.
type AssignResponse struct {
	Placement models.PlacementDetail `json:"placement"`
}

// RemoveResponse echoes the placement that was deleted.
type RemoveResponse struct {
	RemovedPlacement models.PlacementDetail `json:"removed_placement"`
}

// SuggestionItem ranks a frequent occupant of a seat.
type SuggestionItem struct {
	User  models.User `json:"user"`
	Count int         `json:"count"`
}
