// Package reaper sweeps expired rooms into the archive on a fixed interval.
package reaper

import (
	"context"
	"log"
	"time"

	"gameday/backend/internal/registry"
)

// Notifier is the slice of the broadcast gateway the reaper is allowed to
// touch: it never talks to the transport directly.
type Notifier interface {
	NotifyRoomsChanged()
}

type Reaper struct {
	Registry *registry.Registry
	Notifier Notifier
	Interval time.Duration
}

func New(reg *registry.Registry, notifier Notifier, interval time.Duration) *Reaper {
	return &Reaper{Registry: reg, Notifier: notifier, Interval: interval}
}

// Run ticks until the context is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep archives every expired live room, then notifies subscribers whether
// or not anything expired: consumers treat the event as "refresh your view".
func (r *Reaper) Sweep() {
	if ids := r.Registry.ArchiveExpired(); len(ids) > 0 {
		log.Printf("Reaper archived %d expired room(s): %v", len(ids), ids)
	}
	r.Notifier.NotifyRoomsChanged()
}
