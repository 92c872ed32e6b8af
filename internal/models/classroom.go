package models

import "time"

// Classroom is the singleton-per-room configuration row. The capture
// interval is what kiosk agents poll for; it is stored in seconds.
type Classroom struct {
	ID                 string    `db:"classroom_id" json:"classroom_id"`
	ScreenshotsEnabled bool      `db:"screenshots_enabled" json:"screenshots_enabled"`
	ScreenshotInterval int       `db:"screenshot_interval" json:"screenshot_interval"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}
