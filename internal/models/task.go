package models

import "time"

// Task представляет одну задачу пользователя.
// HabitID заполнен у экземпляров задач, порождённых привычкой на конкретный день.
type Task struct {
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes,omitempty"`
	DueDate     string     `json:"due_date,omitempty"` // DueDate в формате YYYY-MM-DD
	HabitID     string     `json:"habit_id,omitempty"`
	Priority    int        `json:"priority"`
	Completed   bool       `json:"completed"`
}

// TaskInput holds the user-supplied fields of a new task.
// It is stored verbatim as the payload of the create queue item.
type TaskInput struct {
	Title    string `json:"title"`
	Notes    string `json:"notes,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
	HabitID  string `json:"habit_id,omitempty"`
	Priority int    `json:"priority"`
}

// TaskPatch is a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title    *string `json:"title,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	DueDate  *string `json:"due_date,omitempty"`
	Priority *int    `json:"priority,omitempty"`
}

// NewTask builds a task from input with creation defaults applied.
func NewTask(id string, in TaskInput, now time.Time) *Task {
	return &Task{
		ID:        id,
		Title:     in.Title,
		Notes:     in.Notes,
		DueDate:   in.DueDate,
		HabitID:   in.HabitID,
		Priority:  in.Priority,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply merges the patch into t and returns a patch holding only the fields
// whose value actually changed.
func (t *Task) Apply(p TaskPatch, now time.Time) TaskPatch {
	var changed TaskPatch

	if p.Title != nil && *p.Title != t.Title {
		t.Title = *p.Title
		changed.Title = p.Title
	}
	if p.Notes != nil && *p.Notes != t.Notes {
		t.Notes = *p.Notes
		changed.Notes = p.Notes
	}
	if p.DueDate != nil && *p.DueDate != t.DueDate {
		t.DueDate = *p.DueDate
		changed.DueDate = p.DueDate
	}
	if p.Priority != nil && *p.Priority != t.Priority {
		t.Priority = *p.Priority
		changed.Priority = p.Priority
	}

	if !changed.IsEmpty() {
		t.UpdatedAt = now
	}
	return changed
}

// ToggleCompleted flips the completion flag.
func (t *Task) ToggleCompleted(now time.Time) {
	t.Completed = !t.Completed
	if t.Completed {
		completedAt := now
		t.CompletedAt = &completedAt
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Notes == nil && p.DueDate == nil && p.Priority == nil
}
