package store

import (
	"context"
	"sync"

	"github.com/ktanaka/shucal/internal/schedule"
)

// Composite combines multiple stores into one read view. Reads concatenate
// each source's records in source order, deduplicated by ID; creates go to
// the first source only.
type Composite struct {
	sources []Store

	mu        sync.Mutex
	changes   chan ChangeEvent
	stopChans []chan struct{}
}

// NewComposite creates a composite over the given stores. The first store
// is the write target.
func NewComposite(sources ...Store) *Composite {
	return &Composite{
		sources: sources,
		changes: make(chan ChangeEvent, 10),
	}
}

func (c *Composite) Schedules(ctx context.Context, owner, month string) ([]schedule.Record, error) {
	var merged []schedule.Record
	seen := make(map[string]bool)
	var firstErr error
	succeeded := 0

	for _, src := range c.sources {
		records, err := src.Schedules(ctx, owner, month)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		succeeded++
		for _, rec := range records {
			if rec.ID != "" && seen[rec.ID] {
				continue
			}
			if rec.ID != "" {
				seen[rec.ID] = true
			}
			merged = append(merged, rec)
		}
	}

	// Only fail when every source failed; a partial view beats no view.
	if succeeded == 0 && firstErr != nil {
		return nil, firstErr
	}
	return merged, nil
}

func (c *Composite) Create(ctx context.Context, rec schedule.Record) error {
	if len(c.sources) == 0 {
		return &SubmitError{Err: context.Canceled}
	}
	return c.sources[0].Create(ctx, rec)
}

// Watch forwards change events from every source that supports watching.
func (c *Composite) Watch() (<-chan ChangeEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, src := range c.sources {
		srcChan, err := src.Watch()
		if err != nil || srcChan == nil {
			continue
		}

		stop := make(chan struct{})
		c.stopChans = append(c.stopChans, stop)

		go func(src <-chan ChangeEvent, stop chan struct{}) {
			for {
				select {
				case event, ok := <-src:
					if !ok {
						return
					}
					select {
					case c.changes <- event:
					default:
						// Channel full, drop event
					}
				case <-stop:
					return
				}
			}
		}(srcChan, stop)
	}

	return c.changes, nil
}

func (c *Composite) StopWatching() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, stop := range c.stopChans {
		close(stop)
	}
	c.stopChans = nil

	for _, src := range c.sources {
		src.StopWatching()
	}
	return nil
}
