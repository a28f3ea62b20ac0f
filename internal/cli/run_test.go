package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iburimskiy/window-sync/internal/logging"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestKeepRunning_LogsAndRestarts(t *testing.T) {
	var out syncBuffer
	cfg := logging.DefaultConfig()
	cfg.Format = "json"
	cfg.Out = &out
	ctx, cancel := context.WithCancel(logging.WithContext(context.Background(), logging.New(cfg)))
	defer cancel()

	var mu sync.Mutex
	calls := 0
	run := func(ctx context.Context) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			return errors.New("store read failed")
		}
		<-ctx.Done()
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- keepRunning(ctx, "broadcast", time.Millisecond, run) }()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 3
	}, time.Second, time.Millisecond)
	// Logged while the loop is still running, not at shutdown.
	assert.Contains(t, out.String(), `"error":"store read failed"`)
	assert.Contains(t, out.String(), `"loop":"broadcast"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("keepRunning did not stop")
	}
}

func TestKeepRunning_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := keepRunning(ctx, "broadcast", time.Hour, func(context.Context) error {
		calls++
		return errors.New("boom")
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
