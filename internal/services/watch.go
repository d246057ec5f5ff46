package services

import (
	"context"
	"time"

	"github.com/kerem-kaynak/kolektor/internal/entity"
)

// DefaultWatchInterval matches the polling cadence the console has always
// used for processing collections.
const DefaultWatchInterval = 2 * time.Second

// Watcher polls the engine until a collection's status moves.
type Watcher struct {
	Client   *EngineClient
	Interval time.Duration
}

// WaitForChange polls until the collection's status differs from last or is
// terminal, then returns it. On context cancellation it returns the last
// resource seen (possibly nil) together with the context error, so callers
// can still render the latest known state after a deadline.
func (w Watcher) WaitForChange(ctx context.Context, id string, last entity.CollectionStatus) (*entity.CollectionResource, error) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seen *entity.CollectionResource
	for {
		resource, err := w.Client.GetCollection(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return seen, ctx.Err()
			}
			return nil, err
		}
		seen = resource

		if resource.Status != last || resource.Status.Terminal() {
			return resource, nil
		}

		select {
		case <-ctx.Done():
			return seen, ctx.Err()
		case <-ticker.C:
		}
	}
}
