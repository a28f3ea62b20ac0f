// Package broadcast publishes this instance's window geometry on the shared
// store and picks up the geometry published by other instances.
package broadcast

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iburimskiy/window-sync/internal/config"
	"github.com/iburimskiy/window-sync/internal/geometry"
	"github.com/iburimskiy/window-sync/internal/logging"
	"github.com/iburimskiy/window-sync/internal/store"
)

// Options configures a Channel. Zero values take the defaults.
type Options struct {
	Key      string
	Interval time.Duration
	Now      func() time.Time
}

// Channel is the single-slot geometry broadcast between instances. Only the
// most recently received other-instance snapshot is kept.
type Channel struct {
	id       string
	store    store.Store
	window   geometry.Window
	key      string
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	other   geometry.Snapshot
	hasPeer bool
	pending bool
}

func New(id string, s store.Store, w geometry.Window, opts Options) *Channel {
	c := &Channel{
		id:       id,
		store:    s,
		window:   w,
		key:      opts.Key,
		interval: opts.Interval,
		now:      opts.Now,
	}
	if c.key == "" {
		c.key = config.BroadcastKey
	}
	if c.interval <= 0 {
		c.interval = config.BroadcastInterval
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// ID returns this instance's id.
func (c *Channel) ID() string { return c.id }

// Publish writes a fresh snapshot of the window under the broadcast key.
func (c *Channel) Publish(ctx context.Context) error {
	snap := geometry.Capture(c.id, c.window, c.now())
	raw, err := snap.Encode()
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.key, raw)
}

// HandleChange processes a value of the broadcast key written by some
// participant. Malformed payloads and this instance's own broadcasts are
// dropped. It reports whether the value was accepted.
func (c *Channel) HandleChange(ctx context.Context, raw []byte) bool {
	log := logging.FromContext(ctx)

	snap, err := geometry.Decode(raw)
	if err != nil {
		log.Debug().Err(err).Msg("ignoring broadcast")
		return false
	}
	if snap.ID == c.id {
		return false
	}

	c.mu.Lock()
	prev, had := c.other.ID, c.hasPeer
	c.other = snap
	c.hasPeer = true
	c.pending = true
	c.mu.Unlock()

	if !had || prev != snap.ID {
		log.Info().Str("peer", snap.ID).Msg("peer instance seen")
	}
	return true
}

// Other returns the last accepted snapshot of another instance.
func (c *Channel) Other() (geometry.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.other, c.hasPeer
}

// Next returns the last accepted snapshot if it arrived since the previous
// call. Snapshots accepted in between are superseded, not queued.
func (c *Channel) Next() (geometry.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return geometry.Snapshot{}, false
	}
	c.pending = false
	return c.other, true
}

// Run publishes every interval and listens for other instances until ctx is
// done. Failed publishes are logged and retried on the next tick.
func (c *Channel) Run(ctx context.Context) error {
	ctx = logging.WithComponent(ctx, "broadcast")
	ctx = logging.WithInstanceID(ctx, c.id)
	log := logging.FromContext(ctx)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.store.Watch(ctx, c.key, func(raw []byte) {
			c.HandleChange(ctx, raw)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			if err := c.Publish(ctx); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("publish failed")
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	log.Info().Str("key", c.key).Dur("interval", c.interval).Msg("broadcasting")
	return g.Wait()
}
