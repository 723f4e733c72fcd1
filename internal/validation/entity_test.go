package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/tracker/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestValidateTaskInput(t *testing.T) {
	tests := []struct {
		name    string
		errText string
		input   models.TaskInput
		wantErr bool
	}{
		{
			name:  "valid minimal",
			input: models.TaskInput{Title: "Buy milk"},
		},
		{
			name:  "valid full",
			input: models.TaskInput{Title: "Buy milk", Notes: "oat", DueDate: "2026-10-14", Priority: 3},
		},
		{
			name:    "empty title",
			input:   models.TaskInput{Title: "   "},
			wantErr: true,
			errText: "title cannot be empty",
		},
		{
			name:    "title too long",
			input:   models.TaskInput{Title: strings.Repeat("a", MaxTitleLen+1)},
			wantErr: true,
			errText: "must not exceed",
		},
		{
			name:    "bad due date",
			input:   models.TaskInput{Title: "x", DueDate: "14.10.2026"},
			wantErr: true,
			errText: "YYYY-MM-DD",
		},
		{
			name:    "priority out of range",
			input:   models.TaskInput{Title: "x", Priority: 4},
			wantErr: true,
			errText: "priority must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaskInput(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestValidateTaskPatch(t *testing.T) {
	assert.NoError(t, ValidateTaskPatch(models.TaskPatch{}))
	assert.NoError(t, ValidateTaskPatch(models.TaskPatch{DueDate: ptr("")}))
	assert.ErrorIs(t, ValidateTaskPatch(models.TaskPatch{Title: ptr("")}), ErrInvalid)
	assert.ErrorIs(t, ValidateTaskPatch(models.TaskPatch{Priority: ptr(-1)}), ErrInvalid)
}

func TestValidateHabit(t *testing.T) {
	assert.NoError(t, ValidateHabitInput(models.HabitInput{Name: "Read", Color: "#0af"}))
	assert.ErrorIs(t, ValidateHabitInput(models.HabitInput{Name: ""}), ErrInvalid)
	assert.ErrorIs(t, ValidateHabitInput(models.HabitInput{Name: "Read", Color: "blue"}), ErrInvalid)
	assert.NoError(t, ValidateHabitPatch(models.HabitPatch{Color: ptr("#00aaff")}))
	assert.ErrorIs(t, ValidateHabitPatch(models.HabitPatch{Name: ptr(" ")}), ErrInvalid)
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("date", "2026-02-28", false))
	assert.ErrorIs(t, ValidateDate("date", "", false), ErrInvalid)
	assert.ErrorIs(t, ValidateDate("date", "2026-02-30", false), ErrInvalid)
}
