package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/window-sync/internal/logging"
)

func testCtx() context.Context {
	logger := logging.NewFromConfigValues("debug", "console")
	return logging.WithContext(context.Background(), logger)
}

func openPair(t *testing.T) (*SQLite, *SQLite) {
	t.Helper()
	ctx := testCtx()
	path := filepath.Join(t.TempDir(), "sync.db")

	a, err := OpenSQLite(ctx, path, WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	b, err := OpenSQLite(ctx, path, WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	return a, b
}

func TestSQLite_SetGet(t *testing.T) {
	ctx := testCtx()
	a, b := openPair(t)

	_, err := a.Get(ctx, "window-sync")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, a.Set(ctx, "window-sync", []byte(`{"id":"a"}`)))
	require.NoError(t, a.Set(ctx, "window-sync", []byte(`{"id":"a2"}`)))

	v, err := b.Get(ctx, "window-sync")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"a2"}`, string(v))
}

func TestSQLite_WatchSkipsOwnWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(testCtx())
	defer cancel()
	a, b := openPair(t)

	// Present before the watchers start, must not be replayed.
	require.NoError(t, a.Set(ctx, "window-sync", []byte("old")))

	var gotA, gotB recorder
	go func() { _ = a.Watch(ctx, "window-sync", gotA.add) }()
	go func() { _ = b.Watch(ctx, "window-sync", gotB.add) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, a.Set(ctx, "window-sync", []byte("new")))

	assert.Eventually(t, func() bool { return gotB.last() == "new" }, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, gotB.snapshot(), "old")

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, gotA.snapshot())
}

func TestSQLite_SameBytesStillDelivered(t *testing.T) {
	ctx, cancel := context.WithCancel(testCtx())
	defer cancel()
	a, b := openPair(t)

	var got recorder
	go func() { _ = b.Watch(ctx, "k", got.add) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, a.Set(ctx, "k", []byte("same")))
	assert.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.Set(ctx, "k", []byte("same")))
	assert.Eventually(t, func() bool { return len(got.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestSQLite_WatchStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(testCtx())
	a, _ := openPair(t)

	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, "k", func([]byte) {}) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite(testCtx(), "")
	assert.Error(t, err)
}

func TestSQLite_OwnWriteDoesNotHidePeerWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(testCtx())
	defer cancel()
	a, b := openPair(t)

	var got recorder
	go func() { _ = b.Watch(ctx, "window-sync", got.add) }()
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 20; i++ {
		peer := fmt.Sprintf("peer-%d", i)
		require.NoError(t, a.Set(ctx, "window-sync", []byte(peer)))
		require.NoError(t, b.Set(ctx, "window-sync", []byte("own")))

		assert.Eventually(t, func() bool { return got.last() == peer }, 2*time.Second, 5*time.Millisecond, "round %d", i)
	}
	assert.NotContains(t, got.snapshot(), "own")
}

func TestSQLite_GetReturnsNewestWriter(t *testing.T) {
	ctx := testCtx()
	a, b := openPair(t)

	require.NoError(t, a.Set(ctx, "k", []byte("a")))
	require.NoError(t, b.Set(ctx, "k", []byte("b")))

	v, err := a.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "b", string(v))

	require.NoError(t, b.Close())
	v, err = a.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "a", string(v))
}
