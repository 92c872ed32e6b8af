package dto

// CreateGroupRequest creates a named student group.
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateGroupRequest renames or re-describes a group.
type UpdateGroupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// AddMemberRequest attaches a user to a group.
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// SetFeatureRequest enables or tunes a seating feature on a group. A zero
// MinDistance falls back to the one-seat default.
type SetFeatureRequest struct {
	Enabled     bool `json:"enabled"`
	MinDistance int  `json:"min_distance" validate:"gte=0,lte=17"`
}
