package models

import "time"

// ScreenshotTimeFormat is the capture-timestamp layout used for filenames,
// e.g. 20240131_094501.png. Collisions within one second overwrite (last
// write wins).
const ScreenshotTimeFormat = "20060102_150405"

// Screenshot records one captured workstation image. Retention removes the
// file and the row together, so a surviving row always has its binary.
type Screenshot struct {
	ID              string    `db:"id" json:"id"`
	WorkplaceNumber int       `db:"workplace_number" json:"workplace_number"`
	Filename        string    `db:"filename" json:"filename"`
	UserID          *string   `db:"user_id" json:"user_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ScreenshotDetail joins the optional capture-time occupant.
type ScreenshotDetail struct {
	Filename  string    `db:"filename" json:"filename"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UserName  *string   `db:"user_name" json:"user_name"`
}

// LatestScreenshot is the most recent capture reference for one seat.
type LatestScreenshot struct {
	WorkplaceNumber int       `db:"workplace_number" json:"workplace_number"`
	Filename        string    `db:"filename" json:"filename"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
