package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchedule = "08:00-08:30,09:00-09:45,09:55-10:40,10:50-11:35,11:55-12:40,13:00-13:45,13:55-14:40,14:50-15:35,15:45-16:30"

func mustSchedule(t *testing.T) *Schedule {
	t.Helper()
	s, err := ParseSchedule(testSchedule)
	require.NoError(t, err)
	return s
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 16, hour, minute, 0, 0, time.Local)
}

func TestParseScheduleRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"08:00-08:30",
		"08:00,09:00-09:45",
		"08:00-08:30,09:45-09:00",
		"09:00-09:45,08:00-08:30",
		"08:60-09:00,09:00-09:45",
	}
	for _, raw := range cases {
		_, err := ParseSchedule(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestCurrentLesson(t *testing.T) {
	s := mustSchedule(t)

	cases := []struct {
		now  time.Time
		want int
	}{
		{at(7, 30), 0},  // before homeroom
		{at(8, 50), 0},  // between homeroom and lesson 1
		{at(9, 0), 1},   // exact start is inclusive
		{at(9, 44), 1},
		{at(9, 54), 1},  // break still belongs to the previous lesson
		{at(9, 55), 2},
		{at(12, 40), 4},
		{at(16, 30), 8},
		{at(23, 59), 8}, // evening clamps to the last lesson
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, s.CurrentLesson(tc.now), "at %s", tc.now.Format("15:04"))
	}
}

func TestWindow(t *testing.T) {
	s := mustSchedule(t)

	from, to := s.Window(at(10, 0), 2)
	assert.Equal(t, at(9, 40), from)
	assert.Equal(t, at(10, 55), to)

	// Slot 0 has no bell span, so the window floats around the instant.
	now := at(8, 15)
	from, to = s.Window(now, 0)
	assert.Equal(t, now.Add(-2*time.Hour), from)
	assert.Equal(t, now.Add(2*time.Hour), to)
}

func TestSpan(t *testing.T) {
	s := mustSchedule(t)

	from, to, err := s.Span(at(0, 0), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, at(9, 0), from)
	assert.Equal(t, at(10, 40), to)

	_, _, err = s.Span(at(0, 0), 3, 1)
	assert.Error(t, err)

	_, _, err = s.Span(at(0, 0), 1, 99)
	assert.Error(t, err)
}

func TestPairStart(t *testing.T) {
	assert.Equal(t, 1, PairStart(0))
	assert.Equal(t, 1, PairStart(1))
	assert.Equal(t, 1, PairStart(2))
	assert.Equal(t, 3, PairStart(3))
	assert.Equal(t, 3, PairStart(4))
	assert.Equal(t, 7, PairStart(8))
}
