// Package schedule classifies events into temporal buckets from their stored
// wall-clock date and time strings. Dates are DD/MM/YYYY and times HH:MM in
// the event's local calendar; no timezone conversion happens here.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Bucket is the temporal classification of an event relative to a reference
// instant.
type Bucket string

const (
	Upcoming   Bucket = "upcoming"
	InProgress Bucket = "in-progress"
	Past       Bucket = "past"
)

// ErrMalformedTime marks date/time strings that do not match the fixed
// DD/MM/YYYY + HH:MM formats. Collection classifiers skip the offending item
// instead of failing the whole request.
var ErrMalformedTime = errors.New("malformed event date or time")

// ParseEventTime combines a DD/MM/YYYY date and an HH:MM time into a single
// wall-clock instant.
func ParseEventTime(date, clock string) (time.Time, error) {
	day, month, year, err := splitDate(date)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := splitClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local), nil
}

// Classify buckets an event by its start and end against now. The boundaries
// are inclusive: start == now is both upcoming and the opening edge of
// in-progress, and upcoming wins; end == now is still in-progress.
func Classify(date, startTime, endTime string, now time.Time) (Bucket, error) {
	start, err := ParseEventTime(date, startTime)
	if err != nil {
		return "", err
	}
	end, err := ParseEventTime(date, endTime)
	if err != nil {
		return "", err
	}

	switch {
	case !start.Before(now):
		return Upcoming, nil
	case !end.Before(now):
		return InProgress, nil
	default:
		return Past, nil
	}
}

// Matches reports whether the event with the given date/time strings falls in
// bucket at the reference instant. The in-progress window is inclusive on
// both ends, so an event starting exactly now matches both upcoming and
// in-progress, mirroring Classify's boundary semantics.
func Matches(bucket Bucket, date, startTime, endTime string, now time.Time) (bool, error) {
	start, err := ParseEventTime(date, startTime)
	if err != nil {
		return false, err
	}
	end, err := ParseEventTime(date, endTime)
	if err != nil {
		return false, err
	}

	switch bucket {
	case Upcoming:
		return !start.Before(now), nil
	case InProgress:
		return !start.After(now) && !end.Before(now), nil
	case Past:
		return end.Before(now), nil
	default:
		return false, fmt.Errorf("unknown bucket %q", bucket)
	}
}

func splitDate(date string) (day, month, year int, err error) {
	parts := strings.Split(date, "/")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: date %q", ErrMalformedTime, date)
	}

	day, err = strconv.Atoi(parts[0])
	if err == nil {
		month, err = strconv.Atoi(parts[1])
	}
	if err == nil {
		year, err = strconv.Atoi(parts[2])
	}
	if err != nil || day < 1 || day > 31 || month < 1 || month > 12 || year < 1 {
		return 0, 0, 0, fmt.Errorf("%w: date %q", ErrMalformedTime, date)
	}
	return day, month, year, nil
}

func splitClock(clock string) (hour, minute int, err error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: time %q", ErrMalformedTime, clock)
	}

	hour, err = strconv.Atoi(parts[0])
	if err == nil {
		minute, err = strconv.Atoi(parts[1])
	}
	if err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: time %q", ErrMalformedTime, clock)
	}
	return hour, minute, nil
}
