// Package calendar implements the custom-day calendar used for feeding
// reports. A custom day starts at StartHour (04:00 by default) and runs until
// just before StartHour on the next calendar date.
//
// Nothing here caches a boundary: every call derives its window from the
// clock, so a long-running process rolls over to the next day on its own.
package calendar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/feedlog/internal/constants"
	apperrors "github.com/julianstephens/feedlog/internal/errors"
)

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Window is a half-open [Start, End) range covering one custom day.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Key is the date label of the window's start.
func (w Window) Key() string {
	return w.Start.Format(constants.DateFormat)
}

// Calendar resolves custom-day windows and keys in a fixed location.
type Calendar struct {
	StartHour int
	Location  *time.Location
	Clock     Clock
}

// New returns a Calendar. A nil location means time.Local and a nil clock
// means the system clock.
func New(startHour int, loc *time.Location, clock Clock) (*Calendar, error) {
	if startHour < 0 || startHour > 23 {
		return nil, fmt.Errorf("day start hour must be between 0 and 23, got %d", startHour)
	}
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Calendar{StartHour: startHour, Location: loc, Clock: clock}, nil
}

// Default returns a Calendar with the standard 04:00 boundary in time.Local.
func Default() *Calendar {
	return &Calendar{StartHour: constants.DayStartHour, Location: time.Local, Clock: SystemClock{}}
}

// Now returns the clock's current instant in the calendar's location.
func (c *Calendar) Now() time.Time {
	return c.Clock.Now().In(c.Location)
}

// boundary returns the custom-day start on the given calendar date. When
// StartHour falls inside a DST gap on that date the boundary is the first
// instant after the gap.
func (c *Calendar) boundary(year int, month time.Month, day int) time.Time {
	b := time.Date(year, month, day, c.StartHour, 0, 0, 0, c.Location)
	target := time.Date(year, month, day, c.StartHour, 0, 0, 0, time.UTC)
	if wallClock(b).Equal(target) {
		return b
	}
	lo := b.Add(-gapSearchSpan)
	n := int(2 * gapSearchSpan / time.Second)
	i := sort.Search(n, func(i int) bool {
		return !wallClock(lo.Add(time.Duration(i) * time.Second)).Before(target)
	})
	return lo.Add(time.Duration(i) * time.Second)
}

// gapSearchSpan bounds the search for the end of a DST gap on either side of
// the normalized boundary.
const gapSearchSpan = 3 * time.Hour

// wallClock reads t's local date and time as if it were UTC.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// WindowAt returns the custom-day window containing t.
//
// Instants before the date's boundary belong to the previous calendar date's
// window. The end is the next date's boundary, which is 24h later except
// across a DST transition.
func (c *Calendar) WindowAt(t time.Time) Window {
	y, m, d := c.dayOf(t)
	return Window{Start: c.boundary(y, m, d), End: c.boundary(y, m, d+1)}
}

// Current returns the window containing the clock's current instant.
func (c *Calendar) Current() Window {
	return c.WindowAt(c.Now())
}

// DayKey returns the YYYY-MM-DD label of the custom day t belongs to. It
// always equals WindowAt(t).Key().
func (c *Calendar) DayKey(t time.Time) string {
	y, m, d := c.dayOf(t)
	// Midnight does not exist on every date in every zone, so the label is
	// normalized in UTC.
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(constants.DateFormat)
}

// dayOf returns the calendar date whose custom day contains t. The day index
// may be zero for the last day of the previous month; time.Date normalizes it.
func (c *Calendar) dayOf(t time.Time) (int, time.Month, int) {
	t = t.In(c.Location)
	y, m, d := t.Date()
	if t.Before(c.boundary(y, m, d)) {
		d--
	}
	return y, m, d
}

// DayStart parses a YYYY-MM-DD date and returns that date's custom-day
// boundary.
func (c *Calendar) DayStart(date string) (time.Time, error) {
	d, err := time.Parse(constants.DateFormat, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, apperrors.Invalid("calendar.DayStart", "invalid date %q (expected YYYY-MM-DD)", date)
	}
	return c.boundary(d.Year(), d.Month(), d.Day()), nil
}

// AddDays moves a boundary instant by n calendar days, keeping the hour.
func (c *Calendar) AddDays(start time.Time, n int) time.Time {
	start = start.In(c.Location)
	return c.boundary(start.Year(), start.Month(), start.Day()+n)
}

// SlotForHour maps an hour of day onto the display timeline. Hours before
// StartHour are pushed past midnight (24..) so the timeline reads StartHour
// through StartHour+23.
func (c *Calendar) SlotForHour(hour int) int {
	if hour < c.StartHour {
		return hour + 24
	}
	return hour
}

// Slot maps an "HH:MM" time of day onto a timeline slot.
func (c *Calendar) Slot(hhmm string) (int, error) {
	hour, err := parseHour(hhmm)
	if err != nil {
		return 0, err
	}
	return c.SlotForHour(hour), nil
}

// SlotHour converts a timeline slot back to an hour of day.
func (c *Calendar) SlotHour(slot int) int {
	if slot >= 24 {
		return slot - 24
	}
	return slot
}

// Slots lists every timeline slot in display order.
func (c *Calendar) Slots() []int {
	slots := make([]int, 24)
	for i := range slots {
		slots[i] = c.StartHour + i
	}
	return slots
}

func parseHour(hhmm string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(hhmm), ":", 2)
	if len(parts) != 2 {
		return 0, apperrors.Invalid("calendar.Slot", "invalid time %q (expected HH:MM)", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, apperrors.Invalid("calendar.Slot", "invalid hour in %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, apperrors.Invalid("calendar.Slot", "invalid minute in %q", hhmm)
	}
	return hour, nil
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// timestampLayouts are accepted by ParseTimestamp, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	constants.DateTimeFormat,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ParseTimestamp parses a user-supplied date-time. Values without an offset
// are read in the calendar's location.
func (c *Calendar) ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperrors.Invalid("calendar.ParseTimestamp", "empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, c.Location); err == nil {
			return t.In(c.Location), nil
		}
	}
	return time.Time{}, apperrors.Invalid("calendar.ParseTimestamp", "invalid timestamp %q (expected YYYY-MM-DD HH:MM:SS)", value)
}
