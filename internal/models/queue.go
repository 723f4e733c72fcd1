package models

import (
	"encoding/json"
	"time"
)

// Action is the intent recorded by a queue item.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionToggle     Action = "toggle"      // отметка выполнения задачи
	ActionToggleDate Action = "toggle_date" // отметка дня у привычки
	ActionRestore    Action = "restore"
	ActionPurge      Action = "purge" // окончательное удаление из корзины
)

// QueueItem is a durable, not yet confirmed mutation intent against one entity.
// Items are replayed strictly in Seq order.
type QueueItem struct {
	CreatedAt  time.Time       `json:"created_at"`
	EntityType EntityType      `json:"entity_type"`
	Action     Action          `json:"action"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Seq        uint64          `json:"seq"`
	Retries    int             `json:"retries"`
}

// ToggleDatePayload is the payload of a toggle_date item.
type ToggleDatePayload struct {
	Date string `json:"date"`
}

// TrashPayload is the payload of a habit delete item.
// Date is the local day whose task instances were removed with the habit.
type TrashPayload struct {
	Date string `json:"date"`
}
