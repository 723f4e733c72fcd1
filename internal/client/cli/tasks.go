package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/iudanet/tracker/internal/models"
)

// taskListOptions фильтры для списка задач
type taskListOptions struct {
	DueDate string
	All     bool
}

func (c *Cli) runTaskAdd(ctx context.Context, in models.TaskInput) error {
	task, err := c.tasks.Create(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	c.io.Printf("✓ Task added: %s (%s)\n", task.Title, shortID(task.ID))
	return nil
}

func (c *Cli) runTaskList(ctx context.Context, opts taskListOptions) error {
	tasks, err := c.tasks.List(ctx, func(t *models.Task) bool {
		if !opts.All && t.Completed {
			return false
		}
		return opts.DueDate == "" || t.DueDate == opts.DueDate
	})
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(tasks) == 0 {
		c.io.Println("No tasks found.")
		return nil
	}

	// Сначала по сроку (без срока в конце), затем по приоритету
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.DueDate != b.DueDate {
			if a.DueDate == "" || b.DueDate == "" {
				return b.DueDate == ""
			}
			return a.DueDate < b.DueDate
		}
		return a.Priority > b.Priority
	})

	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %s  %s", mark, shortID(t.ID), t.Title)
		if t.DueDate != "" {
			line += "  due " + t.DueDate
		}
		if t.Priority > 0 {
			line += fmt.Sprintf("  p%d", t.Priority)
		}
		c.io.Println(line)
	}
	return nil
}

func (c *Cli) runTaskEdit(ctx context.Context, idPrefix string, patch models.TaskPatch) error {
	id, err := c.resolveTaskID(ctx, idPrefix)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to change")
	}

	task, err := c.tasks.Update(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("failed to edit task: %w", err)
	}

	c.io.Printf("✓ Task updated: %s\n", task.Title)
	return nil
}

func (c *Cli) runTaskDone(ctx context.Context, idPrefix string) error {
	id, err := c.resolveTaskID(ctx, idPrefix)
	if err != nil {
		return err
	}

	task, err := c.tasks.Toggle(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to toggle task: %w", err)
	}

	if task.Completed {
		c.io.Printf("✓ Completed: %s\n", task.Title)
	} else {
		c.io.Printf("Reopened: %s\n", task.Title)
	}
	return nil
}

func (c *Cli) runTaskRm(ctx context.Context, idPrefix string) error {
	id, err := c.resolveTaskID(ctx, idPrefix)
	if err != nil {
		return err
	}

	if err := c.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	c.io.Printf("✓ Task deleted: %s\n", shortID(id))
	return nil
}

func (c *Cli) resolveTaskID(ctx context.Context, prefix string) (string, error) {
	tasks, err := c.tasks.List(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to list tasks: %w", err)
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return resolveID(ids, prefix)
}
