// README: Periodic fleet snapshot pushed to every dispatch connection.
package dispatch

import (
	"context"
	"log/slog"
	"time"
)

// SnapshotFunc provides the vehicle snapshot the broadcaster pushes.
type SnapshotFunc func(ctx context.Context) (any, error)

// Broadcaster pushes the fleet snapshot to all connections on a fixed
// interval, and on demand after location updates. Delivery is
// best-effort; a slow consumer just misses a tick.
type Broadcaster struct {
	hub      *Hub
	source   SnapshotFunc
	interval time.Duration
	log      *slog.Logger
}

func NewBroadcaster(hub *Hub, source SnapshotFunc, interval time.Duration, log *slog.Logger) *Broadcaster {
	return &Broadcaster{hub: hub, source: source, interval: interval, log: log}
}

// Run blocks until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Push(ctx)
		}
	}
}

// Push sends one snapshot immediately.
func (b *Broadcaster) Push(ctx context.Context) {
	snap, err := b.source(ctx)
	if err != nil {
		b.log.Error("fleet snapshot unavailable", "err", err)
		return
	}
	b.hub.BroadcastAll(snap)
}
