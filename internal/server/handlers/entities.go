package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/tracker/internal/models"
	"github.com/iudanet/tracker/internal/server/storage"
	"github.com/iudanet/tracker/internal/validation"
	"github.com/iudanet/tracker/pkg/api"
)

// maxBodyBytes ограничивает размер тела запроса
const maxBodyBytes = 1 << 20

var (
	errUnknownCollection = errors.New("unknown collection")
	errConflict          = errors.New("conflict")
	errBadRequest        = errors.New("bad request")
)

// EntityHandler implements the task and habit REST endpoints.
// Every entity is scoped to the authenticated user.
type EntityHandler struct {
	logger  *slog.Logger
	storage storage.EntityStorage
	now     func() time.Time
}

// NewEntityHandler creates a new entity handler
func NewEntityHandler(logger *slog.Logger, storage storage.EntityStorage) *EntityHandler {
	return &EntityHandler{
		logger:  logger,
		storage: storage,
		now:     time.Now,
	}
}

// Routes registers the entity endpoints on mux, each wrapped with auth
func (h *EntityHandler) Routes(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	base := api.BasePath + "/{collection}"
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, auth(fn))
	}

	handle("GET "+base, h.List)
	handle("POST "+base, h.Create)
	handle("PATCH "+base+"/{id}", h.Update)
	handle("DELETE "+base+"/{id}", h.Delete)
	handle("POST "+base+"/{id}/toggle", h.Toggle)
	handle("POST "+base+"/{id}/restore", h.Restore)
}

// List обрабатывает GET /api/v1/{collection}
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, entityType, ok := h.scope(w, r)
	if !ok {
		return
	}

	items, err := h.storage.ListEntities(r.Context(), userID, entityType)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, api.ListResponse{Items: items})
}

// Create обрабатывает POST /api/v1/{collection}. The id is client-issued.
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, entityType, ok := h.scope(w, r)
	if !ok {
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &head); err != nil || head.ID == "" {
		h.fail(w, r, fmt.Errorf("%w: id is required", errBadRequest))
		return
	}

	var entity any
	switch entityType {
	case models.EntityTask:
		var in models.TaskInput
		if err := decode(body, &in); err != nil {
			h.fail(w, r, err)
			return
		}
		if err := validation.ValidateTaskInput(in); err != nil {
			h.fail(w, r, err)
			return
		}
		entity = models.NewTask(head.ID, in, h.now())
	case models.EntityHabit:
		var in models.HabitInput
		if err := decode(body, &in); err != nil {
			h.fail(w, r, err)
			return
		}
		if err := validation.ValidateHabitInput(in); err != nil {
			h.fail(w, r, err)
			return
		}
		entity = models.NewHabit(head.ID, in, h.now())
	}

	data, err := json.Marshal(entity)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.storage.InsertEntity(r.Context(), userID, entityType, head.ID, data); err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Debug("Entity created", "user_id", userID, "entity_type", entityType, "entity_id", head.ID)
	writeJSON(w, h.logger, http.StatusCreated, json.RawMessage(data))
}

// Update обрабатывает PATCH /api/v1/{collection}/{id}
func (h *EntityHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, entityType, ok := h.scope(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var result any
	switch entityType {
	case models.EntityTask:
		var patch models.TaskPatch
		if err := decode(body, &patch); err != nil {
			h.fail(w, r, err)
			return
		}
		if err := validation.ValidateTaskPatch(patch); err != nil {
			h.fail(w, r, err)
			return
		}
		result, err = modify(r.Context(), h.storage, userID, entityType, id, func(t *models.Task) error {
			t.Apply(patch, h.now())
			return nil
		})
	case models.EntityHabit:
		var patch models.HabitPatch
		if err := decode(body, &patch); err != nil {
			h.fail(w, r, err)
			return
		}
		if err := validation.ValidateHabitPatch(patch); err != nil {
			h.fail(w, r, err)
			return
		}
		result, err = modify(r.Context(), h.storage, userID, entityType, id, func(hb *models.Habit) error {
			if hb.Trashed {
				return fmt.Errorf("%w: habit is in the trash", errConflict)
			}
			hb.Apply(patch, h.now())
			return nil
		})
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}

// Delete обрабатывает DELETE /api/v1/{collection}/{id}.
// Tasks are removed. Habits are moved to the trash together with their tasks
// due on ?date= (the server's today when absent); ?permanent=true purges a
// trashed habit.
func (h *EntityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, entityType, ok := h.scope(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	ctx := r.Context()

	var err error
	switch {
	case entityType == models.EntityTask:
		err = h.storage.DeleteEntity(ctx, userID, entityType, id)
	case r.URL.Query().Get(api.PermanentParam) == "true":
		err = h.purgeHabit(ctx, userID, id)
	default:
		err = h.trashHabit(ctx, userID, id, r.URL.Query().Get(api.DateParam))
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Debug("Entity deleted", "user_id", userID, "entity_type", entityType, "entity_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *EntityHandler) trashHabit(ctx context.Context, userID, id, day string) error {
	if err := validation.ValidateDate(api.DateParam, day, true); err != nil {
		return err
	}

	return h.storage.InTx(ctx, func(tx storage.EntityTx) error {
		now := h.now()
		if _, err := modify(ctx, tx, userID, models.EntityHabit, id, func(hb *models.Habit) error {
			// Повторное удаление идемпотентно
			if !hb.Trashed {
				hb.Trash(now)
			}
			return nil
		}); err != nil {
			return err
		}

		if day == "" {
			day = models.FormatDate(now)
		}
		raw, err := tx.ListEntities(ctx, userID, models.EntityTask)
		if err != nil {
			return err
		}
		for _, data := range raw {
			var task models.Task
			if err := json.Unmarshal(data, &task); err != nil {
				return fmt.Errorf("failed to decode task: %w", err)
			}
			if task.HabitID != id || task.DueDate != day {
				continue
			}
			if err := tx.DeleteEntity(ctx, userID, models.EntityTask, task.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *EntityHandler) purgeHabit(ctx context.Context, userID, id string) error {
	return h.storage.InTx(ctx, func(tx storage.EntityTx) error {
		habit, err := load[models.Habit](ctx, tx, userID, models.EntityHabit, id)
		if err != nil {
			return err
		}
		if !habit.Trashed {
			return fmt.Errorf("%w: only trashed habits can be purged", errConflict)
		}
		return tx.DeleteEntity(ctx, userID, models.EntityHabit, id)
	})
}

// Toggle обрабатывает POST /api/v1/{collection}/{id}/toggle.
// Tasks flip completion; habits toggle the date from the body.
func (h *EntityHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, entityType, ok := h.scope(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	var (
		result any
		err    error
	)
	switch entityType {
	case models.EntityTask:
		result, err = modify(r.Context(), h.storage, userID, entityType, id, func(t *models.Task) error {
			t.ToggleCompleted(h.now())
			return nil
		})
	case models.EntityHabit:
		var body []byte
		if body, err = readBody(w, r); err != nil {
			break
		}
		var payload models.ToggleDatePayload
		if err = decode(body, &payload); err != nil {
			break
		}
		if err = validation.ValidateDate("date", payload.Date, false); err != nil {
			break
		}
		result, err = modify(r.Context(), h.storage, userID, entityType, id, func(hb *models.Habit) error {
			if hb.Trashed {
				return fmt.Errorf("%w: habit is in the trash", errConflict)
			}
			now := h.now()
			hb.ToggleDate(payload.Date, now, now)
			return nil
		})
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}

// Restore обрабатывает POST /api/v1/habits/{id}/restore.
// Restoring resets streak and history.
func (h *EntityHandler) Restore(w http.ResponseWriter, r *http.Request) {
	userID, entityType, ok := h.scope(w, r)
	if !ok {
		return
	}
	if entityType != models.EntityHabit {
		h.fail(w, r, errUnknownCollection)
		return
	}
	id := r.PathValue("id")

	result, err := modify(r.Context(), h.storage, userID, entityType, id, func(hb *models.Habit) error {
		if !hb.Trashed {
			return fmt.Errorf("%w: habit is not in the trash", errConflict)
		}
		hb.ResetProgress(h.now())
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}

// scope извлекает пользователя и тип коллекции из запроса
func (h *EntityHandler) scope(w http.ResponseWriter, r *http.Request) (string, models.EntityType, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.logger.Error("User ID not found in context")
		writeError(w, h.logger, http.StatusUnauthorized, "unauthorized")
		return "", "", false
	}

	entityType, err := collectionType(r.PathValue("collection"))
	if err != nil {
		h.fail(w, r, err)
		return "", "", false
	}
	return userID, entityType, true
}

// fail переводит ошибку в HTTP статус
func (h *EntityHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrEntityNotFound), errors.Is(err, errUnknownCollection):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrEntityExists), errors.Is(err, errConflict):
		status = http.StatusConflict
	case errors.Is(err, validation.ErrInvalid), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, h.logger, status, "internal server error")
		return
	}

	h.logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	writeError(w, h.logger, status, err.Error())
}

func collectionType(collection string) (models.EntityType, error) {
	for _, t := range models.EntityTypes() {
		if t.Collection() == collection {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w %q", errUnknownCollection, collection)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	var body json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return body, nil
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

// load reads and decodes one entity
func load[T any](ctx context.Context, tx storage.EntityTx, userID string, entityType models.EntityType, id string) (*T, error) {
	data, err := tx.GetEntity(ctx, userID, entityType, id)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", entityType, id, err)
	}
	return &v, nil
}

// modify performs read-modify-write of one entity and returns the new state
func modify[T any](ctx context.Context, tx storage.EntityTx, userID string, entityType models.EntityType, id string, fn func(*T) error) (*T, error) {
	v, err := load[T](ctx, tx, userID, entityType, id)
	if err != nil {
		return nil, err
	}
	if err := fn(v); err != nil {
		return nil, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %s: %w", entityType, id, err)
	}
	if err := tx.ReplaceEntity(ctx, userID, entityType, id, data); err != nil {
		return nil, err
	}
	return v, nil
}
