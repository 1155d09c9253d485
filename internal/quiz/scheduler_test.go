package quiz_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quizdesk/quizdesk/internal/quiz"
)

type fakeLifecycle struct {
	published atomic.Int64
	archived  atomic.Int64
	fail      error
}

func (f *fakeLifecycle) PublishDue(context.Context, time.Time) (int64, error) {
	if f.fail != nil {
		return 0, f.fail
	}
	return f.published.Add(1), nil
}

func (f *fakeLifecycle) ArchiveDue(context.Context, time.Time) (int64, error) {
	return f.archived.Add(1), nil
}

func TestSweepRunsBothPhases(t *testing.T) {
	store := &fakeLifecycle{}
	s := quiz.NewScheduler(store, time.Minute)

	if err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if store.published.Load() != 1 || store.archived.Load() != 1 {
		t.Fatalf("published=%d archived=%d", store.published.Load(), store.archived.Load())
	}
}

func TestSweepStopsOnPublishError(t *testing.T) {
	store := &fakeLifecycle{fail: errors.New("db gone")}
	s := quiz.NewScheduler(store, time.Minute)

	if err := s.Sweep(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if store.archived.Load() != 0 {
		t.Fatal("archive phase ran after publish failed")
	}
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	store := &fakeLifecycle{}
	s := quiz.NewScheduler(store, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for store.published.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("scheduler never swept")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
