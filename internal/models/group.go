package models

import "time"

// FeatureKey identifies a seating feature kind attached to a group.
type FeatureKey string

// FeatureNonSequential forbids group members from sitting within
// MinDistance seats of each other.
const FeatureNonSequential FeatureKey = "non_sequential"

// StudentGroup is a named set of users. Group names are unique.
type StudentGroup struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// GroupFeature is a per-group feature toggle. At most one row exists per
// (group, feature_key). Parameters are typed per feature kind rather than a
// free-form bag; unknown keys cannot be silently misconfigured.
type GroupFeature struct {
	ID          string     `db:"id" json:"id"`
	GroupID     string     `db:"group_id" json:"group_id"`
	FeatureKey  FeatureKey `db:"feature_key" json:"feature_key"`
	Enabled     bool       `db:"enabled" json:"enabled"`
	MinDistance int        `db:"min_distance" json:"min_distance"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// EffectiveMinDistance defaults to one seat when unset.
func (f GroupFeature) EffectiveMinDistance() int {
	if f.MinDistance < 1 {
		return 1
	}
	return f.MinDistance
}

// GroupDetail bundles a group with its members and features.
type GroupDetail struct {
	StudentGroup
	Members  []User         `json:"members"`
	Features []GroupFeature `json:"features"`
}
