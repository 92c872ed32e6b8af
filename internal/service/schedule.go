package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Lesson is one row of the daily bell schedule. Number 0 is the homeroom
// slot that precedes the first lesson.
type Lesson struct {
	Number int
	Start  time.Duration // offset from midnight
	End    time.Duration
}

// Schedule is the ordered daily bell table. It is built once from
// configuration and evaluated fresh on every call, so a long-running
// process never drifts across midnight.
type Schedule struct {
	lessons []Lesson
}

// ParseSchedule builds a Schedule from a comma-separated list of
// "HH:MM-HH:MM" spans. The first span is slot 0, the rest are numbered
// from 1 in order.
func ParseSchedule(raw string) (*Schedule, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < 2 {
		return nil, fmt.Errorf("schedule needs at least slot 0 and lesson 1, got %q", raw)
	}
	lessons := make([]Lesson, 0, len(parts))
	prevStart := time.Duration(-1)
	for i, part := range parts {
		span := strings.TrimSpace(part)
		bounds := strings.Split(span, "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("schedule span %q: want HH:MM-HH:MM", span)
		}
		start, err := parseClock(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("schedule span %q: %w", span, err)
		}
		end, err := parseClock(bounds[1])
		if err != nil {
			return nil, fmt.Errorf("schedule span %q: %w", span, err)
		}
		if end <= start {
			return nil, fmt.Errorf("schedule span %q: end before start", span)
		}
		if start <= prevStart {
			return nil, fmt.Errorf("schedule span %q: starts out of order", span)
		}
		prevStart = start
		lessons = append(lessons, Lesson{Number: i, Start: start, End: end})
	}
	return &Schedule{lessons: lessons}, nil
}

func parseClock(s string) (time.Duration, error) {
	fields := strings.Split(strings.TrimSpace(s), ":")
	if len(fields) != 2 {
		return 0, fmt.Errorf("bad clock value %q", s)
	}
	hour, err := strconv.Atoi(fields[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("bad hour in %q", s)
	}
	minute, err := strconv.Atoi(fields[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("bad minute in %q", s)
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}

// MaxLesson returns the highest lesson number on the table.
func (s *Schedule) MaxLesson() int {
	return s.lessons[len(s.lessons)-1].Number
}

// Lesson returns the schedule row for a lesson number.
func (s *Schedule) Lesson(number int) (Lesson, bool) {
	if number < 0 || number >= len(s.lessons) {
		return Lesson{}, false
	}
	return s.lessons[number], true
}

// CurrentLesson maps a wall-clock instant to the last lesson whose start
// time is at or before the instant's time of day. Before the first lesson
// starts the answer is 0, the homeroom slot.
func (s *Schedule) CurrentLesson(now time.Time) int {
	tod := timeOfDay(now)
	current := 0
	for _, lesson := range s.lessons[1:] {
		if lesson.Start <= tod {
			current = lesson.Number
		}
	}
	return current
}

// Window returns the service window for a lesson on a given day: the
// lesson span padded by 15 minutes on both sides. For slot 0 there is no
// fixed span, so the window is two hours around the instant itself.
func (s *Schedule) Window(now time.Time, lessonNumber int) (time.Time, time.Time) {
	if lessonNumber <= 0 || lessonNumber >= len(s.lessons) {
		return now.Add(-2 * time.Hour), now.Add(2 * time.Hour)
	}
	lesson := s.lessons[lessonNumber]
	day := midnight(now)
	const pad = 15 * time.Minute
	return day.Add(lesson.Start - pad), day.Add(lesson.End + pad)
}

// Span resolves an inclusive lesson range on a given date to absolute
// bounds: the start of the first lesson through the end of the last.
func (s *Schedule) Span(date time.Time, from, to int) (time.Time, time.Time, error) {
	first, ok := s.Lesson(from)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("no lesson %d on schedule", from)
	}
	last, ok := s.Lesson(to)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("no lesson %d on schedule", to)
	}
	if last.Number < first.Number {
		return time.Time{}, time.Time{}, fmt.Errorf("lesson range %d..%d is inverted", from, to)
	}
	day := midnight(date)
	return day.Add(first.Start), day.Add(last.End), nil
}

// PairStart snaps a lesson number to the first lesson of its double
// period: 1 and 2 map to 1, 3 and 4 to 3, and so on. Slot 0 maps to 1.
func PairStart(lesson int) int {
	if lesson < 1 {
		return 1
	}
	return ((lesson-1)/2)*2 + 1
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
