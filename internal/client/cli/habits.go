package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/tracker/internal/models"
)

func (c *Cli) runHabitAdd(ctx context.Context, in models.HabitInput) error {
	habit, err := c.habits.Create(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to add habit: %w", err)
	}

	c.io.Printf("✓ Habit added: %s (%s)\n", habit.Name, shortID(habit.ID))
	return nil
}

func (c *Cli) runHabitList(ctx context.Context, trash bool) error {
	list := c.habits.List
	if trash {
		list = c.habits.ListTrash
	}

	habits, err := list(ctx)
	if err != nil {
		return fmt.Errorf("failed to list habits: %w", err)
	}

	if len(habits) == 0 {
		if trash {
			c.io.Println("Trash is empty.")
		} else {
			c.io.Println("No habits found.")
		}
		return nil
	}

	today := models.FormatDate(c.now())
	for _, h := range habits {
		mark := " "
		if h.HasDate(today) {
			mark = "x"
		}
		c.io.Printf("[%s] %s  %s  streak %d (best %d)\n", mark, shortID(h.ID), h.Name, h.Streak, h.BestStreak)
	}
	return nil
}

func (c *Cli) runHabitEdit(ctx context.Context, idPrefix string, patch models.HabitPatch) error {
	id, err := c.resolveHabitID(ctx, idPrefix)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to change")
	}

	habit, err := c.habits.Update(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("failed to edit habit: %w", err)
	}

	c.io.Printf("✓ Habit updated: %s\n", habit.Name)
	return nil
}

// runHabitCheck переключает отметку дня; пустая дата означает сегодня
func (c *Cli) runHabitCheck(ctx context.Context, idPrefix, date string) error {
	id, err := c.resolveHabitID(ctx, idPrefix)
	if err != nil {
		return err
	}
	if date == "" {
		date = models.FormatDate(c.now())
	}

	habit, err := c.habits.ToggleDate(ctx, id, date)
	if err != nil {
		return fmt.Errorf("failed to check habit: %w", err)
	}

	if habit.HasDate(date) {
		c.io.Printf("✓ %s checked for %s, streak %d\n", habit.Name, date, habit.Streak)
	} else {
		c.io.Printf("%s unchecked for %s, streak %d\n", habit.Name, date, habit.Streak)
	}
	return nil
}

func (c *Cli) runHabitTrash(ctx context.Context, idPrefix string) error {
	id, err := c.resolveHabitID(ctx, idPrefix)
	if err != nil {
		return err
	}

	if err := c.habits.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	c.io.Printf("✓ Habit moved to trash: %s\n", shortID(id))
	return nil
}

func (c *Cli) runHabitRestore(ctx context.Context, idPrefix string) error {
	id, err := c.resolveHabitID(ctx, idPrefix)
	if err != nil {
		return err
	}

	habit, err := c.habits.Restore(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to restore habit: %w", err)
	}

	c.io.Printf("✓ Habit restored: %s (progress reset)\n", habit.Name)
	return nil
}

func (c *Cli) runHabitPurge(ctx context.Context, idPrefix string) error {
	id, err := c.resolveHabitID(ctx, idPrefix)
	if err != nil {
		return err
	}

	if err := c.habits.Purge(ctx, id); err != nil {
		return fmt.Errorf("failed to purge habit: %w", err)
	}

	c.io.Printf("✓ Habit permanently deleted: %s\n", shortID(id))
	return nil
}

// resolveHabitID ищет среди активных привычек и корзины
func (c *Cli) resolveHabitID(ctx context.Context, prefix string) (string, error) {
	active, err := c.habits.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list habits: %w", err)
	}
	trashed, err := c.habits.ListTrash(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list trash: %w", err)
	}

	ids := make([]string, 0, len(active)+len(trashed))
	for _, h := range append(active, trashed...) {
		ids = append(ids, h.ID)
	}
	return resolveID(ids, prefix)
}
