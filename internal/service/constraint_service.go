package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rmn-lab/roster-api/internal/models"
)

type constraintPlacementStore interface {
	ListWindow(ctx context.Context, from, to time.Time) ([]models.PlacementDetail, error)
}

type constraintGroupStore interface {
	ListEnabledFeaturesForUser(ctx context.Context, userID string, key models.FeatureKey) ([]models.GroupFeature, error)
	MemberIDs(ctx context.Context, groupID, excludeUserID string) ([]string, error)
}

// ConstraintDenial describes a refused seat along with the seats the
// student may still take.
type ConstraintDenial struct {
	Seat      int
	Available []int
}

// Message renders the refusal for the kiosk screen. The wording stays
// deliberately vague so students cannot infer who they are separated from.
func (d *ConstraintDenial) Message() string {
	seats := make([]string, len(d.Available))
	for i, n := range d.Available {
		seats[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf(
		"Щоб зберегти робочий темп уроку, деякі комбінації посадки тимчасово недоступні. Ось доступні варіанти для вас: %s",
		strings.Join(seats, ", "),
	)
}

// ConstraintService evaluates group seating rules before a placement is
// written. Members of a group with the non-sequential feature enabled may
// not sit within the configured distance of each other during the same
// lesson window.
type ConstraintService struct {
	placements constraintPlacementStore
	groups     constraintGroupStore
	schedule   *Schedule
	seatCount  int
	log        *zap.Logger
	now        func() time.Time
}

// NewConstraintService constructs a ConstraintService.
func NewConstraintService(placements constraintPlacementStore, groups constraintGroupStore, schedule *Schedule, seatCount int, log *zap.Logger) *ConstraintService {
	return &ConstraintService{
		placements: placements,
		groups:     groups,
		schedule:   schedule,
		seatCount:  seatCount,
		log:        log,
		now:        time.Now,
	}
}

// Check returns a denial when seat is too close to a group mate already
// placed inside the current lesson window, and nil when the seat is fine.
// Storage errors are returned as-is and should fail the placement closed.
func (s *ConstraintService) Check(ctx context.Context, userID string, seat int) (*ConstraintDenial, error) {
	features, err := s.groups.ListEnabledFeaturesForUser(ctx, userID, models.FeatureNonSequential)
	if err != nil {
		return nil, fmt.Errorf("load seating features: %w", err)
	}

	now := s.now()
	lesson := s.schedule.CurrentLesson(now)
	from, to := s.schedule.Window(now, lesson)
	placed, err := s.placements.ListWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load lesson placements: %w", err)
	}

	occupied := make(map[int]bool, len(placed))
	seatByUser := make(map[string][]int)
	for _, p := range placed {
		number, ok := models.ExtractSeat(p.WorkplaceID)
		if !ok {
			continue
		}
		occupied[number] = true
		seatByUser[p.UserID] = append(seatByUser[p.UserID], number)
	}

	forbidden := make(map[int]bool)
	for _, feature := range features {
		mates, err := s.groups.MemberIDs(ctx, feature.GroupID, userID)
		if err != nil {
			return nil, fmt.Errorf("load group members: %w", err)
		}
		distance := feature.EffectiveMinDistance()
		for _, mate := range mates {
			for _, mateSeat := range seatByUser[mate] {
				for n := mateSeat - distance; n <= mateSeat+distance; n++ {
					forbidden[n] = true
				}
			}
		}
	}

	if !forbidden[seat] {
		return nil, nil
	}

	available := make([]int, 0, s.seatCount)
	for n := 1; n <= s.seatCount; n++ {
		if !occupied[n] && !forbidden[n] {
			available = append(available, n)
		}
	}
	sort.Ints(available)

	s.log.Info("seat refused by group constraint",
		zap.String("user_id", userID),
		zap.Int("seat", seat),
		zap.Int("lesson", lesson),
		zap.Ints("available", available))
	return &ConstraintDenial{Seat: seat, Available: available}, nil
}
