package models

import (
	"sort"
	"time"
)

// Habit представляет привычку с историей отметок по дням.
// Удаление мягкое: Trashed=true, запись остаётся в корзине до восстановления или очистки.
type Habit struct {
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	TrashedAt   *time.Time `json:"trashed_at,omitempty"`
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `json:"color,omitempty"`
	History     []string   `json:"history"` // History отсортированные уникальные даты YYYY-MM-DD
	Streak      int        `json:"streak"`
	BestStreak  int        `json:"best_streak"`
	Trashed     bool       `json:"trashed"`
}

// HabitInput holds the user-supplied fields of a new habit.
type HabitInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// HabitPatch is a partial update. Nil fields are left unchanged.
type HabitPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// NewHabit builds a habit with an empty history.
func NewHabit(id string, in HabitInput, now time.Time) *Habit {
	return &Habit{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		History:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply merges the patch into h and returns only the fields that changed.
func (h *Habit) Apply(p HabitPatch, now time.Time) HabitPatch {
	var changed HabitPatch

	if p.Name != nil && *p.Name != h.Name {
		h.Name = *p.Name
		changed.Name = p.Name
	}
	if p.Description != nil && *p.Description != h.Description {
		h.Description = *p.Description
		changed.Description = p.Description
	}
	if p.Color != nil && *p.Color != h.Color {
		h.Color = *p.Color
		changed.Color = p.Color
	}

	if !changed.IsEmpty() {
		h.UpdatedAt = now
	}
	return changed
}

// IsEmpty reports whether the patch changes nothing.
func (p HabitPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Color == nil
}

// HasDate reports whether date is checked in the history.
func (h *Habit) HasDate(date string) bool {
	i := sort.SearchStrings(h.History, date)
	return i < len(h.History) && h.History[i] == date
}

// ToggleDate adds date to the history if absent and removes it otherwise,
// then recomputes the streak relative to today.
func (h *Habit) ToggleDate(date string, today time.Time, now time.Time) {
	i := sort.SearchStrings(h.History, date)
	if i < len(h.History) && h.History[i] == date {
		h.History = append(h.History[:i], h.History[i+1:]...)
	} else {
		h.History = append(h.History, "")
		copy(h.History[i+1:], h.History[i:])
		h.History[i] = date
	}

	h.Streak = CurrentStreak(h.History, today)
	if h.Streak > h.BestStreak {
		h.BestStreak = h.Streak
	}
	h.UpdatedAt = now
}

// Trash marks the habit as deleted.
func (h *Habit) Trash(now time.Time) {
	trashedAt := now
	h.Trashed = true
	h.TrashedAt = &trashedAt
	h.UpdatedAt = now
}

// ResetProgress returns the habit from the trash with its aggregates reset.
// Restoring forfeits the streak and the whole history.
func (h *Habit) ResetProgress(now time.Time) {
	h.Trashed = false
	h.TrashedAt = nil
	h.Streak = 0
	h.BestStreak = 0
	h.History = []string{}
	h.UpdatedAt = now
}

// CurrentStreak counts consecutive checked days ending today, or yesterday
// when today is not checked yet. history must be sorted.
func CurrentStreak(history []string, today time.Time) int {
	if len(history) == 0 {
		return 0
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	checked := make(map[string]struct{}, len(history))
	for _, d := range history {
		checked[d] = struct{}{}
	}

	if _, ok := checked[FormatDate(day)]; !ok {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := checked[FormatDate(day)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}
