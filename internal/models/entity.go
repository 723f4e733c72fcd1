package models

import "time"

// EntityType identifies a domain collection in the local store and on the server.
type EntityType string

const (
	EntityTask  EntityType = "task"
	EntityHabit EntityType = "habit"
)

// DateLayout is the calendar date format used for due dates and habit history.
const DateLayout = "2006-01-02"

// EntityTypes returns every synchronized collection in a fixed order.
// Pull reconciles collections in this order.
func EntityTypes() []EntityType {
	return []EntityType{EntityHabit, EntityTask}
}

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTask, EntityHabit:
		return true
	}
	return false
}

// Collection returns the REST collection name for the type ("tasks", "habits").
func (t EntityType) Collection() string {
	return string(t) + "s"
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate formats t as YYYY-MM-DD in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
