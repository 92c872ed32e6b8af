package models

import (
	"regexp"
	"strconv"
	"time"
)

// Workplace is a numbered physical workstation in the room.
type Workplace struct {
	ID        string    `db:"id" json:"id"`
	Number    int       `db:"workplace_number" json:"number"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Workplace ids are loose display strings like "329-7", "computer-5" or a
// bare "7"; the physical seat is the trailing run of digits after the last
// hyphen, or the whole id when it is all digits.
var (
	seatPattern     = regexp.MustCompile(`-(\d+)$`)
	bareSeatPattern = regexp.MustCompile(`^\d+$`)
)

// ExtractSeat resolves a workplace id string to a seat number. The boolean is
// false for non-numeric stations (e.g. the teacher desk), which are bucketed
// as "other" and exempt from seating constraints.
func ExtractSeat(workplaceID string) (int, bool) {
	m := seatPattern.FindStringSubmatch(workplaceID)
	var digits string
	switch {
	case m != nil:
		digits = m[1]
	case bareSeatPattern.MatchString(workplaceID):
		digits = workplaceID
	default:
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
