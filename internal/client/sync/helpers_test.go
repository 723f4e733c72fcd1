package sync

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/tracker/internal/client/api"
	"github.com/iudanet/tracker/internal/client/connectivity"
	"github.com/iudanet/tracker/internal/client/data"
	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/client/storage/boltdb"
	"github.com/iudanet/tracker/internal/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func notFound() error {
	return &api.Error{Kind: api.KindDefinite, StatusCode: 404, Message: "not found"}
}

// fakeServer - упрощённый сервер в памяти поверх RemoteMock
type fakeServer struct {
	entities map[models.EntityType]map[string]json.RawMessage
	today    string // used by a habit delete that carries no date
	mu       stdsync.Mutex
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		entities: map[models.EntityType]map[string]json.RawMessage{
			models.EntityTask:  {},
			models.EntityHabit: {},
		},
		today: models.FormatDate(testNow),
	}
}

func (s *fakeServer) put(t *testing.T, entityType models.EntityType, id string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	s.mu.Lock()
	s.entities[entityType][id] = raw
	s.mu.Unlock()
}

func (s *fakeServer) has(entityType models.EntityType, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entities[entityType][id]
	return ok
}

func (s *fakeServer) habit(t *testing.T, id string) *models.Habit {
	t.Helper()
	s.mu.Lock()
	raw, ok := s.entities[models.EntityHabit][id]
	s.mu.Unlock()
	require.True(t, ok, "habit %s not on server", id)

	var h models.Habit
	require.NoError(t, json.Unmarshal(raw, &h))
	return &h
}

// modify decodes an entity, applies fn and stores it back
func modify[T any](s *fakeServer, entityType models.EntityType, id string, fn func(*T)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.entities[entityType][id]
	if !ok {
		return notFound()
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	fn(&v)
	raw, err := json.Marshal(&v)
	if err != nil {
		return err
	}
	s.entities[entityType][id] = raw
	return nil
}

// trashHabit trashes the habit and removes its tasks due on the payload date
func (s *fakeServer) trashHabit(id string, payload json.RawMessage) error {
	if err := modify(s, models.EntityHabit, id, func(h *models.Habit) { h.Trash(testNow) }); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	day := s.today
	if len(payload) > 0 {
		var p models.TrashPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		if p.Date != "" {
			day = p.Date
		}
	}
	for taskID, raw := range s.entities[models.EntityTask] {
		var task models.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return err
		}
		if task.HabitID == id && task.DueDate == day {
			delete(s.entities[models.EntityTask], taskID)
		}
	}
	return nil
}

func (s *fakeServer) remote() *RemoteMock {
	return &RemoteMock{
		ListFunc: func(ctx context.Context, entityType models.EntityType) ([]json.RawMessage, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			ids := make([]string, 0, len(s.entities[entityType]))
			for id := range s.entities[entityType] {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			items := make([]json.RawMessage, 0, len(ids))
			for _, id := range ids {
				items = append(items, s.entities[entityType][id])
			}
			return items, nil
		},
		CreateFunc: func(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) error {
			var entity any
			switch entityType {
			case models.EntityTask:
				var in models.TaskInput
				if err := json.Unmarshal(payload, &in); err != nil {
					return err
				}
				entity = models.NewTask(id, in, testNow)
			case models.EntityHabit:
				var in models.HabitInput
				if err := json.Unmarshal(payload, &in); err != nil {
					return err
				}
				entity = models.NewHabit(id, in, testNow)
			}
			raw, err := json.Marshal(entity)
			if err != nil {
				return err
			}

			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.entities[entityType][id]; ok {
				return &api.Error{Kind: api.KindDefinite, StatusCode: 409, Message: "exists"}
			}
			s.entities[entityType][id] = raw
			return nil
		},
		UpdateFunc: func(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) error {
			if entityType == models.EntityTask {
				var p models.TaskPatch
				if err := json.Unmarshal(payload, &p); err != nil {
					return err
				}
				return modify(s, entityType, id, func(t *models.Task) { t.Apply(p, testNow) })
			}
			var p models.HabitPatch
			if err := json.Unmarshal(payload, &p); err != nil {
				return err
			}
			return modify(s, entityType, id, func(h *models.Habit) { h.Apply(p, testNow) })
		},
		DeleteFunc: func(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) error {
			if entityType == models.EntityHabit {
				return s.trashHabit(id, payload)
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.entities[entityType][id]; !ok {
				return notFound()
			}
			delete(s.entities[entityType], id)
			return nil
		},
		ToggleFunc: func(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) error {
			if entityType == models.EntityTask {
				return modify(s, entityType, id, func(t *models.Task) { t.ToggleCompleted(testNow) })
			}
			var p models.ToggleDatePayload
			if err := json.Unmarshal(payload, &p); err != nil {
				return err
			}
			return modify(s, entityType, id, func(h *models.Habit) { h.ToggleDate(p.Date, testNow, testNow) })
		},
		RestoreFunc: func(ctx context.Context, entityType models.EntityType, id string) error {
			return modify(s, entityType, id, func(h *models.Habit) { h.ResetProgress(testNow) })
		},
		PurgeFunc: func(ctx context.Context, entityType models.EntityType, id string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.entities[entityType][id]; !ok {
				return notFound()
			}
			delete(s.entities[entityType], id)
			return nil
		},
	}
}

// recorder собирает состояния, полученные подписчиком
type recorder struct {
	states []State
	mu     stdsync.Mutex
}

func (r *recorder) record(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *recorder) statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, 0, len(r.states))
	for _, s := range r.states {
		out = append(out, s.Status)
	}
	return out
}

func (r *recorder) last() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[len(r.states)-1]
}

type env struct {
	store  *boltdb.Storage
	conn   *connectivity.Manual
	server *fakeServer
	remote *RemoteMock
	engine *Engine
	tasks  *data.TaskService
	habits *data.HabitService
}

func newEnv(t *testing.T, online bool, opts ...Option) *env {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)

	server := newFakeServer()
	e := &env{
		store:  store,
		conn:   connectivity.NewManual(online),
		server: server,
		remote: server.remote(),
	}
	e.engine = NewEngine(store, e.remote, e.conn, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)

	clock := data.WithClock(func() time.Time { return testNow })
	e.tasks = data.NewTaskService(store, e.engine, clock)
	e.habits = data.NewHabitService(store, e.engine, clock)

	t.Cleanup(func() {
		e.engine.Close()
		require.NoError(t, store.Close())
	})
	return e
}

func (e *env) queue(t *testing.T) []*models.QueueItem {
	t.Helper()
	var items []*models.QueueItem
	err := e.store.View(context.Background(), func(tx storage.Tx) error {
		var err error
		items, err = tx.ListQueue()
		return err
	})
	require.NoError(t, err)
	return items
}

func (e *env) putLocal(t *testing.T, entityType models.EntityType, id string, v any) {
	t.Helper()
	err := e.store.Update(context.Background(), func(tx storage.Tx) error {
		return tx.Put(entityType, id, v)
	})
	require.NoError(t, err)
}

func (e *env) localTask(t *testing.T, id string) (*models.Task, error) {
	t.Helper()
	var task *models.Task
	err := e.store.View(context.Background(), func(tx storage.Tx) error {
		var err error
		task, err = storage.Get[models.Task](tx, models.EntityTask, id)
		return err
	})
	return task, err
}
