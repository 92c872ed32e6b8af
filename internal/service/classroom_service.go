package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rmn-lab/roster-api/internal/dto"
	"github.com/rmn-lab/roster-api/internal/models"
	"github.com/rmn-lab/roster-api/pkg/config"
	"github.com/rmn-lab/roster-api/pkg/errors"
)

type snapshotPlacementStore interface {
	ListWindow(ctx context.Context, from, to time.Time) ([]models.PlacementDetail, error)
}

type snapshotScreenshotStore interface {
	LatestPerWorkplace(ctx context.Context) ([]models.LatestScreenshot, error)
}

type snapshotClassroomStore interface {
	GetOrCreate(ctx context.Context, classroomID string) (*models.Classroom, error)
}

type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ClassroomService assembles the room view: who sat where during a lesson
// window, the latest capture per seat, and the roll call ordered the way a
// Ukrainian class journal is.
type ClassroomService struct {
	placements  snapshotPlacementStore
	screenshots snapshotScreenshotStore
	classrooms  snapshotClassroomStore
	cache       snapshotCache
	schedule    *Schedule
	collator    *Collator
	classroom   string
	seatCount   int
	cacheTTL    time.Duration
	log         *zap.Logger
	now         func() time.Time
}

// NewClassroomService constructs a ClassroomService.
func NewClassroomService(placements snapshotPlacementStore, screenshots snapshotScreenshotStore, classrooms snapshotClassroomStore, cache snapshotCache, schedule *Schedule, collator *Collator, cfg config.ClassroomConfig, snapCfg config.SnapshotConfig, log *zap.Logger) *ClassroomService {
	return &ClassroomService{
		placements:  placements,
		screenshots: screenshots,
		classrooms:  classrooms,
		cache:       cache,
		schedule:    schedule,
		collator:    collator,
		classroom:   cfg.ID,
		seatCount:   cfg.SeatCount,
		cacheTTL:    snapCfg.CacheTTL,
		log:         log,
		now:         time.Now,
	}
}

// Snapshot builds the room state for the requested date and lesson. With
// no explicit lesson the current one is used; without the singles flag
// the whole double period is shown.
func (s *ClassroomService) Snapshot(ctx context.Context, query dto.SnapshotQuery) (*dto.SnapshotResponse, error) {
	now := s.now()
	date := query.Date
	if date.IsZero() {
		date = now
	}

	lesson := query.Lesson
	if !query.HasLesson {
		lesson = s.schedule.CurrentLesson(now)
	} else if lesson < 1 {
		// The homeroom slot is only reachable implicitly, between
		// midnight and the first bell.
		return nil, errors.Clone(errors.ErrValidation, "lesson must be at least 1")
	}
	from, to := lesson, lesson
	if !query.Singles {
		from = PairStart(lesson)
		to = from + 1
		if to > s.schedule.MaxLesson() {
			to = s.schedule.MaxLesson()
		}
	}
	if _, ok := s.schedule.Lesson(from); !ok {
		return nil, errors.Clone(errors.ErrValidation, fmt.Sprintf("no lesson %d on the schedule", from))
	}

	cacheKey := fmt.Sprintf("snapshot:%s:%d:%d:%t", date.Format("2006-01-02"), from, to, query.Singles)
	if s.cache != nil {
		var cached dto.SnapshotResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	start, end, err := s.schedule.Span(date, from, to)
	if err != nil {
		return nil, errors.Clone(errors.ErrValidation, err.Error())
	}

	placed, err := s.placements.ListWindow(ctx, start, end)
	if err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	for i := range placed {
		placed[i].HydrateUser()
	}
	placed = dedupePlacements(placed)

	bySeat := make(map[int][]models.PlacementDetail)
	var other []models.PlacementDetail
	for _, p := range placed {
		seat, ok := models.ExtractSeat(p.WorkplaceID)
		if !ok || seat < 1 || seat > s.seatCount {
			other = append(other, p)
			continue
		}
		bySeat[seat] = append(bySeat[seat], p)
	}

	latest := make(map[int]models.LatestScreenshot)
	shots, err := s.screenshots.LatestPerWorkplace(ctx)
	if err != nil {
		s.log.Warn("latest screenshots unavailable", zap.Error(err))
	} else {
		for _, shot := range shots {
			latest[shot.WorkplaceNumber] = shot
		}
	}

	seatState := func(number int) dto.WorkplaceState {
		state := dto.WorkplaceState{Number: number, Placements: bySeat[number]}
		if shot, ok := latest[number]; ok {
			filename := shot.Filename
			takenAt := shot.CreatedAt
			state.LastScreenshot = &filename
			state.LastScreenshotAt = &takenAt
		}
		return state
	}

	// The room has two physical banks; the first runs 9 down to 1 along
	// one wall, the second 10 up along the other.
	half := s.seatCount / 2
	bank1 := make([]dto.WorkplaceState, 0, half)
	for n := half; n >= 1; n-- {
		bank1 = append(bank1, seatState(n))
	}
	bank2 := make([]dto.WorkplaceState, 0, s.seatCount-half)
	for n := half + 1; n <= s.seatCount; n++ {
		bank2 = append(bank2, seatState(n))
	}

	seen := make(map[string]bool)
	var names []string
	for _, p := range placed {
		if seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		names = append(names, p.User.DisplayName())
	}
	s.collator.Sort(names)

	room, err := s.classrooms.GetOrCreate(ctx, s.classroom)
	if err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}

	resp := &dto.SnapshotResponse{
		ClassroomID:        s.classroom,
		Date:               date.Format("2006-01-02"),
		Lesson:             lesson,
		Singles:            query.Singles,
		LessonFrom:         from,
		LessonTo:           to,
		LessonStart:        start,
		LessonEnd:          end,
		Workplaces1:        bank1,
		Workplaces2:        bank2,
		OtherPlacements:    other,
		UniqueUsersCount:   len(seen),
		Usernames:          names,
		LastUpdated:        now,
		ScreenshotsEnabled: room.ScreenshotsEnabled,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, s.cacheTTL); err != nil {
			s.log.Warn("snapshot cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

// dedupePlacements keeps the first fact per (workplace, user) pair so a
// student who re-registers at the same seat shows up once. Order within
// the window is preserved.
func dedupePlacements(placed []models.PlacementDetail) []models.PlacementDetail {
	type key struct {
		workplace string
		user      string
	}
	seen := make(map[key]bool, len(placed))
	out := placed[:0:0]
	for _, p := range placed {
		workplace := p.WorkplaceID
		if seat, ok := models.ExtractSeat(workplace); ok {
			// Alias spellings of the same seat collapse together.
			workplace = fmt.Sprintf("#%d", seat)
		}
		k := key{workplace, p.UserID}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}
