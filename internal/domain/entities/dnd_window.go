package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

// Weekdays is a set of days of the week, bit i set for time.Weekday(i)
// (Sunday is bit 0).
type Weekdays uint8

// AllWeekdays contains every day of the week
const AllWeekdays Weekdays = 1<<7 - 1

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// NewWeekdays builds a set from the given days
func NewWeekdays(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			w |= 1 << uint(d)
		}
	}
	return w
}

// ParseWeekday resolves a weekday name, case-insensitively
func ParseWeekday(name string) (time.Weekday, bool) {
	name = strings.TrimSpace(name)
	for i, candidate := range weekdayNames {
		if strings.EqualFold(candidate, name) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// ParseWeekdays builds a set from weekday names. Unrecognized names are
// returned separately and contribute nothing to the set.
func ParseWeekdays(names []string) (Weekdays, []string) {
	var w Weekdays
	var unknown []string
	for _, name := range names {
		day, ok := ParseWeekday(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		w |= 1 << uint(day)
	}
	return w, unknown
}

// Contains reports whether day is in the set
func (w Weekdays) Contains(day time.Weekday) bool {
	return day >= time.Sunday && day <= time.Saturday && w&(1<<uint(day)) != 0
}

// Empty reports whether the set has no days
func (w Weekdays) Empty() bool {
	return w&AllWeekdays == 0
}

// Names returns the canonical names of the days in the set, Sunday first
func (w Weekdays) Names() []string {
	names := make([]string, 0, 7)
	for i, name := range weekdayNames {
		if w&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	return names
}

// ClockTime is a wall-clock time of day with minute precision
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "H:MM" or "HH:MM" in 24 hour form
func ParseClockTime(value string) (ClockTime, error) {
	hourPart, minutePart, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || len(hourPart) == 0 || len(hourPart) > 2 || len(minutePart) != 2 {
		return ClockTime{}, fmt.Errorf("invalid time of day %q, expected HH:MM", value)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid minute in %q", value)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// Minutes returns the number of minutes since midnight
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Valid reports whether the time lies within a day
func (c ClockTime) Valid() bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59
}

// String formats the time as HH:MM
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// DndWindowKind distinguishes full-day windows from time ranges
type DndWindowKind int

const (
	DndFullDay DndWindowKind = iota
	DndTimeRange
)

// DndWindow is a recurring weekly Do-Not-Disturb rule. A FullDay window
// covers the whole of each of its days; a TimeRange window covers Start..End
// on each of its days and wraps past midnight when Start >= End.
type DndWindow struct {
	Days  Weekdays
	Kind  DndWindowKind
	Start ClockTime
	End   ClockTime
}

// FullDayWindow builds a window covering the whole of the given days
func FullDayWindow(days Weekdays) DndWindow {
	return DndWindow{Days: days, Kind: DndFullDay}
}

// TimeRangeWindow builds a window covering start..end on the given days
func TimeRangeWindow(days Weekdays, start, end ClockTime) DndWindow {
	return DndWindow{Days: days, Kind: DndTimeRange, Start: start, End: end}
}

// IsFullDay reports whether the window covers entire days
func (w DndWindow) IsFullDay() bool {
	return w.Kind == DndFullDay
}

// Wraps reports whether a time range crosses midnight
func (w DndWindow) Wraps() bool {
	return w.Kind == DndTimeRange && w.Start.Minutes() >= w.End.Minutes()
}

// Validate checks a window built in code rather than decoded
func (w DndWindow) Validate() error {
	switch w.Kind {
	case DndFullDay:
		return nil
	case DndTimeRange:
		if !w.Start.Valid() || !w.End.Valid() {
			return fmt.Errorf("time range %s-%s is out of range", w.Start, w.End)
		}
		return nil
	default:
		return fmt.Errorf("unknown window kind %d", w.Kind)
	}
}

// dndWindowJSON is the wire and storage shape of a DndWindow
type dndWindowJSON struct {
	DayOfWeek json.RawMessage `json:"dayOfWeek"`
	IsFullDay *bool           `json:"isFullDay,omitempty"`
	StartTime *string         `json:"startTime,omitempty"`
	EndTime   *string         `json:"endTime,omitempty"`
}

// MarshalJSON emits dayOfWeek as a list of canonical names
func (w DndWindow) MarshalJSON() ([]byte, error) {
	days, err := json.Marshal(w.Days.Names())
	if err != nil {
		return nil, err
	}
	fullDay := w.IsFullDay()
	out := dndWindowJSON{DayOfWeek: days, IsFullDay: &fullDay}
	if !fullDay {
		start, end := w.Start.String(), w.End.String()
		out.StartTime, out.EndTime = &start, &end
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts dayOfWeek as a single name or a list of names.
// Unknown names are dropped; a window left with no days never matches.
// Exactly one of isFullDay=true or startTime+endTime must be given.
func (w *DndWindow) UnmarshalJSON(data []byte) error {
	var raw dndWindowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return apperrors.NewValidationError("dnd window must be an object")
	}

	names, err := decodeDayNames(raw.DayOfWeek)
	if err != nil {
		return err
	}
	days, unknown := ParseWeekdays(names)
	if len(unknown) > 0 {
		log.Debug().Strs("unknown", unknown).Msg("Ignoring unrecognized weekday names in dnd window")
	}

	fullDay := raw.IsFullDay != nil && *raw.IsFullDay
	hasTimes := raw.StartTime != nil || raw.EndTime != nil

	switch {
	case fullDay && hasTimes:
		return apperrors.NewValidationError("dnd window cannot set startTime/endTime together with isFullDay")
	case fullDay:
		*w = FullDayWindow(days)
		return nil
	case raw.StartTime == nil || raw.EndTime == nil:
		return apperrors.NewValidationError("dnd window requires startTime and endTime unless isFullDay is true")
	}

	start, err := ParseClockTime(*raw.StartTime)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	end, err := ParseClockTime(*raw.EndTime)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	*w = TimeRangeWindow(days, start, end)
	return nil
}

func decodeDayNames(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, apperrors.NewValidationError("dnd window requires dayOfWeek")
	}
	if raw[0] == '[' {
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return nil, apperrors.NewValidationError("dayOfWeek must be a string or a list of strings")
		}
		return names, nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return nil, apperrors.NewValidationError("dayOfWeek must be a string or a list of strings")
	}
	return []string{name}, nil
}
