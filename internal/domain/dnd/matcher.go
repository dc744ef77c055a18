// Package dnd decides whether an instant falls inside a user's recurring
// Do-Not-Disturb windows.
package dnd

import (
	"time"

	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
)

// IsDuringDnd reports whether ts, read in UTC, falls inside any of windows.
func IsDuringDnd(ts time.Time, windows []entities.DndWindow) bool {
	return ActiveWindow(ts, windows) >= 0
}

// ActiveWindow returns the index of the first window containing ts, or -1.
//
// The day check always uses the window's declared days: a Monday 22:00-02:00
// window covers Monday 00:00-02:00 and Monday 22:00-23:59, never Tuesday.
func ActiveWindow(ts time.Time, windows []entities.DndWindow) int {
	ts = ts.UTC()
	day := ts.Weekday()
	minutes := ts.Hour()*60 + ts.Minute()

	for i, window := range windows {
		if Matches(window, day, minutes) {
			return i
		}
	}
	return -1
}

// Matches reports whether a single window covers the given weekday and
// minute of day. Both range ends are inclusive.
func Matches(window entities.DndWindow, day time.Weekday, minutes int) bool {
	if !window.Days.Contains(day) {
		return false
	}
	if window.IsFullDay() {
		return true
	}

	start, end := window.Start.Minutes(), window.End.Minutes()
	if start < end {
		return minutes >= start && minutes <= end
	}
	return minutes >= start || minutes <= end
}
