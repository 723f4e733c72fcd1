package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/iudanet/tracker/internal/models"
)

// ErrInvalid is the kind of every validation error. Match with errors.Is.
var ErrInvalid = errors.New("invalid input")

const (
	// MaxTitleLen максимальная длина заголовка задачи и названия привычки
	MaxTitleLen = 200
	// MaxNotesLen максимальная длина заметок и описаний
	MaxNotesLen = 4000
	// MaxPriority наибольший допустимый приоритет задачи
	MaxPriority = 3
)

// ColorPattern допускает цвета в формате #rgb или #rrggbb
var ColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// ValidateTitle проверяет заголовок: непустой, не длиннее MaxTitleLen символов
func ValidateTitle(field, title string) error {
	if strings.TrimSpace(title) == "" {
		return invalid("%s cannot be empty", field)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return invalid("%s must not exceed %d characters", field, MaxTitleLen)
	}
	return nil
}

// ValidateText проверяет необязательное текстовое поле
func ValidateText(field, text string) error {
	if utf8.RuneCountInString(text) > MaxNotesLen {
		return invalid("%s must not exceed %d characters", field, MaxNotesLen)
	}
	return nil
}

// ValidateDate проверяет дату в формате YYYY-MM-DD. Пустая строка допустима, если optional.
func ValidateDate(field, date string, optional bool) error {
	if date == "" {
		if optional {
			return nil
		}
		return invalid("%s cannot be empty", field)
	}
	if _, err := models.ParseDate(date); err != nil {
		return invalid("%s must be a date in YYYY-MM-DD format", field)
	}
	return nil
}

// ValidatePriority проверяет диапазон приоритета 0..MaxPriority
func ValidatePriority(priority int) error {
	if priority < 0 || priority > MaxPriority {
		return invalid("priority must be between 0 and %d", MaxPriority)
	}
	return nil
}

// ValidateColor проверяет необязательный цвет
func ValidateColor(color string) error {
	if color != "" && !ColorPattern.MatchString(color) {
		return invalid("color must be #rgb or #rrggbb")
	}
	return nil
}

// ValidateTaskInput validates a new task.
func ValidateTaskInput(in models.TaskInput) error {
	return errors.Join(
		ValidateTitle("title", in.Title),
		ValidateText("notes", in.Notes),
		ValidateDate("due date", in.DueDate, true),
		ValidatePriority(in.Priority),
	)
}

// ValidateTaskPatch validates the non-nil fields of a task patch.
func ValidateTaskPatch(p models.TaskPatch) error {
	var errs []error
	if p.Title != nil {
		errs = append(errs, ValidateTitle("title", *p.Title))
	}
	if p.Notes != nil {
		errs = append(errs, ValidateText("notes", *p.Notes))
	}
	if p.DueDate != nil {
		errs = append(errs, ValidateDate("due date", *p.DueDate, true))
	}
	if p.Priority != nil {
		errs = append(errs, ValidatePriority(*p.Priority))
	}
	return errors.Join(errs...)
}

// ValidateHabitInput validates a new habit.
func ValidateHabitInput(in models.HabitInput) error {
	return errors.Join(
		ValidateTitle("name", in.Name),
		ValidateText("description", in.Description),
		ValidateColor(in.Color),
	)
}

// ValidateHabitPatch validates the non-nil fields of a habit patch.
func ValidateHabitPatch(p models.HabitPatch) error {
	var errs []error
	if p.Name != nil {
		errs = append(errs, ValidateTitle("name", *p.Name))
	}
	if p.Description != nil {
		errs = append(errs, ValidateText("description", *p.Description))
	}
	if p.Color != nil {
		errs = append(errs, ValidateColor(*p.Color))
	}
	return errors.Join(errs...)
}
