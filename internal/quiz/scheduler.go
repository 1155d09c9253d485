package quiz

import (
	"context"
	"log"
	"time"
)

// LifecycleStore is the slice of the store the scheduler needs.
type LifecycleStore interface {
	PublishDue(ctx context.Context, now time.Time) (int64, error)
	ArchiveDue(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler periodically moves quiz statuses forward based on their time
// windows. It only ever writes quiz status; submission reads it.
type Scheduler struct {
	store    LifecycleStore
	interval time.Duration
	now      func() time.Time
}

func NewScheduler(store LifecycleStore, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{store: store, interval: interval, now: time.Now}
}

// Run sweeps until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.Sweep(ctx); err != nil {
				log.Printf("quiz status sweep: %v", err)
			}
		}
	}
}

func (s *Scheduler) Sweep(ctx context.Context) error {
	now := s.now()
	published, err := s.store.PublishDue(ctx, now)
	if err != nil {
		return err
	}
	archived, err := s.store.ArchiveDue(ctx, now)
	if err != nil {
		return err
	}
	if published > 0 || archived > 0 {
		log.Printf("quiz status sweep: published=%d archived=%d", published, archived)
	}
	return nil
}
