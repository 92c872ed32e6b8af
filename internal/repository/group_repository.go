package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rmn-lab/roster-api/internal/models"
)

// GroupRepository manages student groups, membership and seating features.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs a GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a new group.
func (r *GroupRepository) Create(ctx context.Context, group *models.StudentGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_groups (id, name, description, created_at)
        VALUES (:id, :name, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// Update rewrites the group name and description.
func (r *GroupRepository) Update(ctx context.Context, group *models.StudentGroup) error {
	const query = `UPDATE student_groups SET name = :name, description = :description WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// Delete removes a group along with its membership and feature rows.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM student_groups WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

// FindByID fetches one group.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.StudentGroup, error) {
	var group models.StudentGroup
	if err := r.db.GetContext(ctx, &group, "SELECT id, name, description, created_at FROM student_groups WHERE id = $1", id); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch group: %w", err)
	}
	return &group, nil
}

// List returns all groups ordered by name.
func (r *GroupRepository) List(ctx context.Context) ([]models.StudentGroup, error) {
	var groups []models.StudentGroup
	if err := r.db.SelectContext(ctx, &groups, "SELECT id, name, description, created_at FROM student_groups ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// AddMember attaches a user to a group; duplicates are ignored.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID string) error {
	const query = `INSERT INTO student_group_members (group_id, user_id)
        VALUES ($1, $2) ON CONFLICT (group_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, groupID, userID); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

// RemoveMember detaches a user from a group.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM student_group_members WHERE group_id = $1 AND user_id = $2", groupID, userID); err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}
	return nil
}

// ListMembers returns the users in a group ordered by surname.
func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]models.User, error) {
	const query = `SELECT u.id, u.username, u.first_name, u.last_name, u.email, u.created_at
        FROM users u JOIN student_group_members m ON m.user_id = u.id
        WHERE m.group_id = $1 ORDER BY u.last_name, u.first_name`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, groupID); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return users, nil
}

// MemberIDs returns the ids of group members excluding one user.
func (r *GroupRepository) MemberIDs(ctx context.Context, groupID, excludeUserID string) ([]string, error) {
	const query = `SELECT user_id FROM student_group_members WHERE group_id = $1 AND user_id <> $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, groupID, excludeUserID); err != nil {
		return nil, fmt.Errorf("list group member ids: %w", err)
	}
	return ids, nil
}

// ListEnabledFeaturesForUser returns, for every group the user belongs to,
// the enabled feature rows with the given key. Drives the constraint engine.
func (r *GroupRepository) ListEnabledFeaturesForUser(ctx context.Context, userID string, key models.FeatureKey) ([]models.GroupFeature, error) {
	const query = `SELECT f.id, f.group_id, f.feature_key, f.enabled, f.min_distance, f.updated_at
        FROM group_features f
        JOIN student_group_members m ON m.group_id = f.group_id
        WHERE m.user_id = $1 AND f.feature_key = $2 AND f.enabled = true`
	var features []models.GroupFeature
	if err := r.db.SelectContext(ctx, &features, query, userID, key); err != nil {
		return nil, fmt.Errorf("list enabled features: %w", err)
	}
	return features, nil
}

// ListFeatures returns all feature rows of a group.
func (r *GroupRepository) ListFeatures(ctx context.Context, groupID string) ([]models.GroupFeature, error) {
	const query = `SELECT id, group_id, feature_key, enabled, min_distance, updated_at
        FROM group_features WHERE group_id = $1 ORDER BY feature_key`
	var features []models.GroupFeature
	if err := r.db.SelectContext(ctx, &features, query, groupID); err != nil {
		return nil, fmt.Errorf("list group features: %w", err)
	}
	return features, nil
}

// UpsertFeature writes the single feature row per (group, feature_key).
func (r *GroupRepository) UpsertFeature(ctx context.Context, feature *models.GroupFeature) error {
	if feature.ID == "" {
		feature.ID = uuid.NewString()
	}
	feature.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO group_features (id, group_id, feature_key, enabled, min_distance, updated_at)
        VALUES (:id, :group_id, :feature_key, :enabled, :min_distance, :updated_at)
        ON CONFLICT (group_id, feature_key)
        DO UPDATE SET enabled = EXCLUDED.enabled, min_distance = EXCLUDED.min_distance, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, feature); err != nil {
		return fmt.Errorf("upsert group feature: %w", err)
	}
	return nil
}
