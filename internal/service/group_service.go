package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmn-lab/roster-api/internal/dto"
	"github.com/rmn-lab/roster-api/internal/models"
	"github.com/rmn-lab/roster-api/pkg/errors"
)

type groupStore interface {
	Create(ctx context.Context, group *models.StudentGroup) error
	Update(ctx context.Context, group *models.StudentGroup) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.StudentGroup, error)
	List(ctx context.Context) ([]models.StudentGroup, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListMembers(ctx context.Context, groupID string) ([]models.User, error)
	ListFeatures(ctx context.Context, groupID string) ([]models.GroupFeature, error)
	UpsertFeature(ctx context.Context, feature *models.GroupFeature) error
}

type groupUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// GroupService manages student groups, their membership and their seating
// features.
type GroupService struct {
	groups   groupStore
	users    groupUserStore
	validate *validator.Validate
	log      *zap.Logger
}

// NewGroupService constructs a GroupService.
func NewGroupService(groups groupStore, users groupUserStore, validate *validator.Validate, log *zap.Logger) *GroupService {
	if validate == nil {
		validate = validator.New()
	}
	return &GroupService{groups: groups, users: users, validate: validate, log: log}
}

// Create registers a new group.
func (s *GroupService) Create(ctx context.Context, req dto.CreateGroupRequest) (*models.StudentGroup, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation.Code, errors.ErrValidation.Status, "invalid payload")
	}
	group := &models.StudentGroup{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	s.log.Info("group created", zap.String("group_id", group.ID), zap.String("name", group.Name))
	return group, nil
}

// Update renames or re-describes a group.
func (s *GroupService) Update(ctx context.Context, id string, req dto.UpdateGroupRequest) (*models.StudentGroup, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation.Code, errors.ErrValidation.Status, "invalid payload")
	}
	group, err := s.mustGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Name = req.Name
	group.Description = req.Description
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	return group, nil
}

// Delete removes a group along with its memberships and features.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	if _, err := s.mustGroup(ctx, id); err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, id); err != nil {
		return errors.WithCause(errors.ErrInternal, err)
	}
	s.log.Info("group deleted", zap.String("group_id", id))
	return nil
}

// List returns all groups.
func (s *GroupService) List(ctx context.Context) ([]models.StudentGroup, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	return groups, nil
}

// Get returns a group with its members and features.
func (s *GroupService) Get(ctx context.Context, id string) (*models.GroupDetail, error) {
	group, err := s.mustGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.groups.ListMembers(ctx, id)
	if err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	features, err := s.groups.ListFeatures(ctx, id)
	if err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	return &models.GroupDetail{StudentGroup: *group, Members: members, Features: features}, nil
}

// AddMember attaches a user to a group. Adding twice is a no-op.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID string) error {
	if _, err := s.mustGroup(ctx, groupID); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return errors.WithCause(errors.ErrInternal, err)
	}
	if user == nil {
		return errors.Clone(errors.ErrNotFound, "user not found")
	}
	if err := s.groups.AddMember(ctx, groupID, userID); err != nil {
		return errors.WithCause(errors.ErrInternal, err)
	}
	return nil
}

// RemoveMember detaches a user from a group.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	if _, err := s.mustGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.groups.RemoveMember(ctx, groupID, userID); err != nil {
		return errors.WithCause(errors.ErrInternal, err)
	}
	return nil
}

// SetFeature enables, disables or re-tunes a seating feature on a group.
func (s *GroupService) SetFeature(ctx context.Context, groupID string, key models.FeatureKey, req dto.SetFeatureRequest) (*models.GroupFeature, error) {
	if key != models.FeatureNonSequential {
		return nil, errors.Clone(errors.ErrValidation, "unknown feature key")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation.Code, errors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.mustGroup(ctx, groupID); err != nil {
		return nil, err
	}
	feature := &models.GroupFeature{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		FeatureKey:  key,
		Enabled:     req.Enabled,
		MinDistance: req.MinDistance,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.groups.UpsertFeature(ctx, feature); err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	s.log.Info("group feature set",
		zap.String("group_id", groupID),
		zap.String("feature", string(key)),
		zap.Bool("enabled", req.Enabled),
		zap.Int("min_distance", feature.EffectiveMinDistance()))
	return feature, nil
}

func (s *GroupService) mustGroup(ctx context.Context, id string) (*models.StudentGroup, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	if group == nil {
		return nil, errors.Clone(errors.ErrNotFound, "group not found")
	}
	return group, nil
}
