package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmn-lab/roster-api/internal/dto"
	"github.com/rmn-lab/roster-api/internal/models"
	"github.com/rmn-lab/roster-api/pkg/config"
	"github.com/rmn-lab/roster-api/pkg/errors"
)

type placementStore interface {
	Create(ctx context.Context, placement *models.Placement) error
	FindByID(ctx context.Context, id, workplaceID string) (*models.PlacementDetail, error)
	LatestForAliases(ctx context.Context, aliases []string) (*models.PlacementDetail, error)
	ListForWorkplaceSince(ctx context.Context, workplaceID string, since time.Time) ([]models.PlacementDetail, error)
	Delete(ctx context.Context, id string) error
}

type placementUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type workplaceRegistry interface {
	GetOrCreateWorkplace(ctx context.Context, number int) (*models.Workplace, error)
}

type placementCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type seatChecker interface {
	Check(ctx context.Context, userID string, seat int) (*ConstraintDenial, error)
}

// PlacementService writes and removes seating facts and ranks frequent
// occupants for the front-desk autocomplete.
type PlacementService struct {
	placements  placementStore
	users       placementUserStore
	workplaces  workplaceRegistry
	constraints seatChecker
	cache       placementCache
	schedule    *Schedule
	classroom   string
	suggestCfg  config.SuggestionsConfig
	log         *zap.Logger
	now         func() time.Time
}

// NewPlacementService constructs a PlacementService.
func NewPlacementService(placements placementStore, users placementUserStore, workplaces workplaceRegistry, constraints seatChecker, cache placementCache, schedule *Schedule, classroomID string, suggestCfg config.SuggestionsConfig, log *zap.Logger) *PlacementService {
	return &PlacementService{
		placements:  placements,
		users:       users,
		workplaces:  workplaces,
		constraints: constraints,
		cache:       cache,
		schedule:    schedule,
		classroom:   classroomID,
		suggestCfg:  suggestCfg,
		log:         log,
		now:         time.Now,
	}
}

// WorkplaceID renders the canonical stored seat identifier.
func (s *PlacementService) WorkplaceID(seat int) string {
	return fmt.Sprintf("%s-%d", s.classroom, seat)
}

// Assign seats a user. The request may carry either the user id or the
// username. A non-nil denial means the seat is blocked by a group rule;
// the placement was not written.
func (s *PlacementService) Assign(ctx context.Context, seat int, req dto.AssignRequest) (*dto.AssignResponse, *ConstraintDenial, error) {
	user, err := s.resolveUser(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	denial, err := s.constraints.Check(ctx, user.ID, seat)
	if err != nil {
		return nil, nil, errors.WithCause(errors.ErrInternal, err)
	}
	if denial != nil {
		return nil, denial, nil
	}

	if _, err := s.workplaces.GetOrCreateWorkplace(ctx, seat); err != nil {
		return nil, nil, errors.WithCause(errors.ErrInternal, err)
	}

	placement := &models.Placement{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		WorkplaceID: s.WorkplaceID(seat),
		CreatedAt:   s.now(),
	}
	if err := s.placements.Create(ctx, placement); err != nil {
		return nil, nil, errors.WithCause(errors.ErrInternal, err)
	}
	s.invalidateCaches(ctx, seat)
	s.log.Info("user placed",
		zap.String("user_id", user.ID),
		zap.Int("seat", seat),
		zap.String("placement_id", placement.ID))

	detail := models.PlacementDetail{
		ID:          placement.ID,
		WorkplaceID: placement.WorkplaceID,
		CreatedAt:   placement.CreatedAt,
		UserID:      user.ID,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
	}
	detail.HydrateUser()
	return &dto.AssignResponse{Placement: detail}, nil, nil
}

// AssignStation records occupancy of a non-numbered station such as the
// teacher desk. Without a seat number no group rule can apply, so the
// placement is written as-is under the raw workplace id.
func (s *PlacementService) AssignStation(ctx context.Context, workplaceID string, req dto.AssignRequest) (*dto.AssignResponse, error) {
	user, err := s.resolveUser(ctx, req)
	if err != nil {
		return nil, err
	}

	placement := &models.Placement{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		WorkplaceID: workplaceID,
		CreatedAt:   s.now(),
	}
	if err := s.placements.Create(ctx, placement); err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "snapshot:*"); err != nil {
			s.log.Warn("snapshot cache invalidation failed", zap.Error(err))
		}
	}
	s.log.Info("user placed at station",
		zap.String("user_id", user.ID),
		zap.String("workplace_id", workplaceID),
		zap.String("placement_id", placement.ID))

	detail := models.PlacementDetail{
		ID:          placement.ID,
		WorkplaceID: placement.WorkplaceID,
		CreatedAt:   placement.CreatedAt,
		UserID:      user.ID,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
	}
	detail.HydrateUser()
	return &dto.AssignResponse{Placement: detail}, nil
}

func (s *PlacementService) resolveUser(ctx context.Context, req dto.AssignRequest) (*models.User, error) {
	switch {
	case req.UserID != "":
		user, err := s.users.FindByID(ctx, req.UserID)
		if err != nil {
			return nil, errors.WithCause(errors.ErrInternal, err)
		}
		if user == nil {
			return nil, errors.Clone(errors.ErrNotFound, "user not found")
		}
		return user, nil
	case req.Username != "":
		user, err := s.users.FindByUsername(ctx, req.Username)
		if err != nil {
			return nil, errors.WithCause(errors.ErrInternal, err)
		}
		if user == nil {
			return nil, errors.Clone(errors.ErrNotFound, "user not found")
		}
		return user, nil
	default:
		return nil, errors.Clone(errors.ErrValidation, "user_id or username is required")
	}
}

// Remove deletes a placement. With an empty placementID the latest fact
// for the seat is removed instead.
func (s *PlacementService) Remove(ctx context.Context, seat int, placementID string) (*dto.RemoveResponse, error) {
	var placement *models.PlacementDetail
	var err error
	if placementID != "" {
		placement, err = s.placements.FindByID(ctx, placementID, s.WorkplaceID(seat))
	} else {
		placement, err = s.placements.LatestForAliases(ctx, seatAliases(s.classroom, seat))
	}
	if err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	if placement == nil {
		return nil, errors.Clone(errors.ErrNotFound, "placement not found")
	}

	if err := s.placements.Delete(ctx, placement.ID); err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	s.invalidateCaches(ctx, seat)
	s.log.Info("placement removed",
		zap.String("placement_id", placement.ID),
		zap.Int("seat", seat))
	return &dto.RemoveResponse{RemovedPlacement: *placement}, nil
}

// Suggestions ranks users who most often sat at a seat during the current
// lesson slot over the lookback window. Results are cached per seat and
// lesson since the ranking only shifts when placements change.
func (s *PlacementService) Suggestions(ctx context.Context, seat int) ([]dto.SuggestionItem, error) {
	now := s.now()
	lesson := s.schedule.CurrentLesson(now)
	cacheKey := fmt.Sprintf("suggestions:%d:%d", seat, lesson)

	var cached []dto.SuggestionItem
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	since := now.Add(-s.suggestCfg.Lookback)
	var history []models.PlacementDetail
	for _, alias := range seatAliases(s.classroom, seat) {
		part, err := s.placements.ListForWorkplaceSince(ctx, alias, since)
		if err != nil {
			return nil, errors.WithCause(errors.ErrInternal, err)
		}
		history = append(history, part...)
	}

	counts := make(map[string]int)
	byID := make(map[string]models.User)
	for _, p := range history {
		if s.schedule.CurrentLesson(p.CreatedAt) != lesson {
			continue
		}
		counts[p.UserID]++
		if _, ok := byID[p.UserID]; !ok {
			byID[p.UserID] = models.User{
				ID:        p.UserID,
				Username:  p.Username,
				FirstName: p.FirstName,
				LastName:  p.LastName,
			}
		}
	}

	items := make([]dto.SuggestionItem, 0, len(counts))
	for id, count := range counts {
		items = append(items, dto.SuggestionItem{User: byID[id], Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].User.DisplayName() < items[j].User.DisplayName()
	})
	if len(items) > s.suggestCfg.Limit {
		items = items[:s.suggestCfg.Limit]
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, items, s.suggestCfg.CacheTTL); err != nil {
			s.log.Warn("suggestion cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

func (s *PlacementService) invalidateCaches(ctx context.Context, seat int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "snapshot:*"); err != nil {
		s.log.Warn("snapshot cache invalidation failed", zap.Error(err))
	}
	if err := s.cache.DeleteByPattern(ctx, "suggestions:"+strconv.Itoa(seat)+":*"); err != nil {
		s.log.Warn("suggestion cache invalidation failed", zap.Error(err))
	}
}
