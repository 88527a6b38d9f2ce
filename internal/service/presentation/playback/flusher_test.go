package playback

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"LiqLearns/internal/models"
	"LiqLearns/pkg/logger"
)

func TestFlusherMergesFailedWriteIntoNext(t *testing.T) {
	var (
		mu      sync.Mutex
		calls   int
		written []models.ProgressUpdate
	)
	f := newFlusher(logger.NewDiscard(), time.Second, func(_ context.Context, u models.ProgressUpdate) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return errors.New("connection reset")
		}
		written = append(written, u)
		return nil
	})

	two, three := 2, 3
	f.enqueue(models.ProgressUpdate{CurrentSlide: &two, SlidesViewed: []int{2}, TimeSpent: 5})
	f.enqueue(models.ProgressUpdate{CurrentSlide: &three, SlidesViewed: []int{3}, TimeSpent: 4})
	if err := f.close(time.Second); err != nil {
		t.Fatalf("close: %v", err)
	}

	if len(written) != 1 {
		t.Fatalf("written = %+v", written)
	}
	got := written[0]
	if *got.CurrentSlide != 3 || got.TimeSpent != 9 || !reflect.DeepEqual(got.SlidesViewed, []int{2, 3}) {
		t.Fatalf("merged update = %+v", got)
	}
}

func TestFlusherRetriesPendingOnClose(t *testing.T) {
	var calls int
	var last models.ProgressUpdate
	f := newFlusher(logger.NewDiscard(), time.Second, func(_ context.Context, u models.ProgressUpdate) error {
		calls++
		if calls == 1 {
			return errors.New("timeout")
		}
		last = u
		return nil
	})
	f.enqueue(models.ProgressUpdate{ResourcesCompleted: []string{"quiz"}})
	if err := f.close(time.Second); err != nil {
		t.Fatalf("close: %v", err)
	}
	if calls != 2 || !reflect.DeepEqual(last.ResourcesCompleted, []string{"quiz"}) {
		t.Fatalf("calls = %d, last = %+v", calls, last)
	}
}

func TestFlusherCloseTimesOut(t *testing.T) {
	release := make(chan struct{})
	f := newFlusher(logger.NewDiscard(), time.Second, func(context.Context, models.ProgressUpdate) error {
		<-release
		return nil
	})
	defer close(release)

	f.enqueue(models.ProgressUpdate{TimeSpent: 1})
	if err := f.close(20 * time.Millisecond); !errors.Is(err, errFlushTimeout) {
		t.Fatalf("close err = %v", err)
	}
}

func TestFlusherIgnoresEmptyUpdates(t *testing.T) {
	calls := 0
	f := newFlusher(logger.NewDiscard(), time.Second, func(context.Context, models.ProgressUpdate) error {
		calls++
		return nil
	})
	f.enqueue(models.ProgressUpdate{})
	f.close(time.Second)
	if calls != 0 {
		t.Fatalf("empty update was written %d times", calls)
	}
}
