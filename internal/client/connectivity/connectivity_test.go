package connectivity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual_TransitionsOnly(t *testing.T) {
	m := NewManual(false)
	assert.False(t, m.Online())

	var events []bool
	unsubscribe := m.Subscribe(func(online bool) {
		events = append(events, online)
	})

	m.Set(false)
	m.Set(true)
	m.Set(true)
	m.Set(false)

	assert.Equal(t, []bool{true, false}, events)
	assert.False(t, m.Online())

	unsubscribe()
	unsubscribe()
	m.Set(true)
	assert.Len(t, events, 2)
}

func TestManual_SubscriberMaySubscribe(t *testing.T) {
	m := NewManual(false)

	var nested atomic.Int32
	m.Subscribe(func(bool) {
		m.Subscribe(func(bool) { nested.Add(1) })
	})

	m.Set(true)
	m.Set(false)
	assert.Equal(t, int32(1), nested.Load())
}

// fakeChecker возвращает заранее заданные ответы health-проверки
type fakeChecker struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeChecker) Health(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeChecker) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func TestProber_Probe(t *testing.T) {
	checker := &fakeChecker{}
	p := NewProber(checker, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.False(t, p.Online())

	var events []bool
	p.Subscribe(func(online bool) { events = append(events, online) })

	assert.True(t, p.Probe(context.Background()))
	assert.True(t, p.Probe(context.Background()))

	checker.setErr(errors.New("connection refused"))
	assert.False(t, p.Probe(context.Background()))

	assert.Equal(t, []bool{true, false}, events)
}

func TestProber_Run(t *testing.T) {
	checker := &fakeChecker{}
	p := NewProber(checker, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, p.Online, time.Second, 5*time.Millisecond)

	checker.setErr(errors.New("down"))
	require.Eventually(t, func() bool { return !p.Online() }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewProber_DefaultInterval(t *testing.T) {
	p := NewProber(&fakeChecker{}, 0, slog.Default())
	assert.Equal(t, DefaultProbeInterval, p.interval)
}
