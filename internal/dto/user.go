package dto

import "github.com/rmn-lab/roster-api/internal/models"

// IdentifyRequest resolves a student from a kiosk login form. The flow
// mirrors the classroom entry screen: an explicit user id wins, otherwise
// surname+name are matched exactly, otherwise fuzzy proposals come back.
// Confirm with an email creates the account when nothing matched.
type IdentifyRequest struct {
	UserID      string `json:"user_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" validate:"omitempty,email"`
	Confirm     bool   `json:"confirm"`
	WorkplaceID string `json:"workplace_id"`
	WantsURL    string `json:"wantsurl"`
}

// Identify outcome states.
const (
	IdentifyMatched   = "matched"
	IdentifyCreated   = "created"
	IdentifyProposals = "proposals"
)

// IdentifyResponse carries either a resolved user with an LMS login URL or a
// list of fuzzy-matched proposals to pick from.
type IdentifyResponse struct {
	Status    string                  `json:"status"`
	User      *models.User            `json:"user,omitempty"`
	LoginURL  string                  `json:"login_url,omitempty"`
	Placement *models.PlacementDetail `json:"placement,omitempty"`
	Proposals []models.User           `json:"proposals,omitempty"`
}

// UserSearchItem is the lightweight search result for autocomplete.
type UserSearchItem struct {
	Surname string `json:"surname"`
	Name    string `json:"name"`
	Display string `json:"display"`
}
