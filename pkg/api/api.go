// Package api holds the wire types shared by the tracker client and server.
package api

import (
	"encoding/json"
	"time"
)

// BasePath is the prefix of every REST route
const BasePath = "/api/v1"

// PermanentParam is the query parameter that turns a habit delete into a purge
const PermanentParam = "permanent"

// DateParam carries the client's local day on a habit delete; tasks of the
// habit due that day are removed together with it
const DateParam = "date"

// ListResponse представляет ответ со списком сущностей одной коллекции
type ListResponse struct {
	Items []json.RawMessage `json:"items"`
}

// HealthResponse представляет ответ health-эндпоинта
type HealthResponse struct {
	Time   time.Time `json:"time"`
	Status string    `json:"status"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
