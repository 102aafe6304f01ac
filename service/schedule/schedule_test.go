package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Format helpers matching the stored wall-clock strings
func dateOf(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}

func clockOf(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func TestParseEventTime(t *testing.T) {
	parsed, err := ParseEventTime("25/12/2026", "18:30")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, time.December, 25, 18, 30, 0, 0, time.Local), parsed)
}

func TestParseEventTimeMalformed(t *testing.T) {
	malformed := [][2]string{
		{"", ""},
		{"25-12-2026", "18:30"},
		{"25/12", "18:30"},
		{"32/01/2026", "18:30"},
		{"01/13/2026", "18:30"},
		{"25/12/2026", "24:00"},
		{"25/12/2026", "18:61"},
		{"25/12/2026", "1830"},
		{"aa/bb/cccc", "18:30"},
	}

	for _, input := range malformed {
		_, err := ParseEventTime(input[0], input[1])
		require.ErrorIs(t, err, ErrMalformedTime, "date=%q clock=%q", input[0], input[1])
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.Local)
	date := dateOf(now)

	testCases := []struct {
		name       string
		start, end time.Time
		expected   Bucket
	}{
		{"started an hour ago, ends in an hour", now.Add(-time.Hour), now.Add(time.Hour), InProgress},
		{"starts in an hour", now.Add(time.Hour), now.Add(2 * time.Hour), Upcoming},
		{"ended an hour ago", now.Add(-2 * time.Hour), now.Add(-time.Hour), Past},
		{"starts exactly now", now, now.Add(time.Hour), Upcoming},
		{"ends exactly now", now.Add(-time.Hour), now, InProgress},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bucket, err := Classify(date, clockOf(tc.start), clockOf(tc.end), now)
			require.NoError(t, err)
			require.Equal(t, tc.expected, bucket)
		})
	}
}

func TestClassifyMalformed(t *testing.T) {
	_, err := Classify("banana", "10:00", "12:00", time.Now())
	require.ErrorIs(t, err, ErrMalformedTime)
}

// Classify and Matches must agree on every bucket boundary
func TestMatchesAgreesWithClassify(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.Local)
	date := dateOf(now)

	offsets := []struct{ start, end time.Duration }{
		{-2 * time.Hour, -time.Hour},
		{-time.Hour, time.Hour},
		{time.Hour, 2 * time.Hour},
		{0, time.Hour},
		{-time.Hour, 0},
	}

	for _, offset := range offsets {
		start := clockOf(now.Add(offset.start))
		end := clockOf(now.Add(offset.end))

		bucket, err := Classify(date, start, end, now)
		require.NoError(t, err)

		match, err := Matches(bucket, date, start, end, now)
		require.NoError(t, err)
		require.True(t, match, "start=%s end=%s classified=%s", start, end, bucket)
	}
}

// An event starting exactly now is the opening edge of in-progress and still
// upcoming: both buckets match
func TestMatchesStartBoundaryOverlap(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.Local)
	date := dateOf(now)

	match, err := Matches(Upcoming, date, clockOf(now), clockOf(now.Add(time.Hour)), now)
	require.NoError(t, err)
	require.True(t, match)

	match, err = Matches(InProgress, date, clockOf(now), clockOf(now.Add(time.Hour)), now)
	require.NoError(t, err)
	require.True(t, match)
}

func TestMatchesUnknownBucket(t *testing.T) {
	_, err := Matches(Bucket("someday"), "25/12/2026", "10:00", "12:00", time.Now())
	require.Error(t, err)
}
