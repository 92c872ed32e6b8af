package dto

import (
	"time"

	"github.com/rmn-lab/roster-api/internal/models"
)

// WorkplaceState is the point-in-time view of one seat.
type WorkplaceState struct {
	Number           int                      `json:"number"`
	Placements       []models.PlacementDetail `json:"placements"`
	LastScreenshot   *string                  `json:"last_screenshot_filename"`
	LastScreenshotAt *time.Time               `json:"last_screenshot_at"`
}

// SnapshotResponse is the full room state for a requested date and lesson
// window. Seats are presented in two physical banks; the first bank is laid
// out in descending order to match the room.
type SnapshotResponse struct {
	ClassroomID        string                   `json:"classroom_id"`
	Date               string                   `json:"date"`
	Lesson             int                      `json:"lesson"`
	Singles            bool                     `json:"singles"`
	LessonFrom         int                      `json:"lesson_from"`
	LessonTo           int                      `json:"lesson_to"`
	LessonStart        time.Time                `json:"lesson_start"`
	LessonEnd          time.Time                `json:"lesson_end"`
	Workplaces1        []WorkplaceState         `json:"workplaces_1"`
	Workplaces2        []WorkplaceState         `json:"workplaces_2"`
	OtherPlacements    []models.PlacementDetail `json:"other_placements"`
	UniqueUsersCount   int                      `json:"unique_users_count"`
	Usernames          []string                 `json:"usernames"`
	LastUpdated        time.Time                `json:"last_updated"`
	ScreenshotsEnabled bool                     `json:"screenshots_enabled"`
}

// SnapshotQuery captures the parsed request filters. HasLesson distinguishes
// an explicit lesson selection from the "whatever is on now" default.
type SnapshotQuery struct {
	Date      time.Time
	Lesson    int
	HasLesson bool
	Singles   bool
}
