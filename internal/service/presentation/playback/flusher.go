package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"LiqLearns/internal/models"
	"LiqLearns/pkg/logger"
)

var errFlushTimeout = errors.New("progress flush did not finish in time")

// flusher writes progress updates in order on its own goroutine so that
// navigation never waits for the store. A failed write is kept and merged
// into the next one.
type flusher struct {
	log          logger.Log
	write        func(ctx context.Context, u models.ProgressUpdate) error
	writeTimeout time.Duration

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []models.ProgressUpdate
	closing bool
	done    chan struct{}
}

func newFlusher(log logger.Log, writeTimeout time.Duration, write func(ctx context.Context, u models.ProgressUpdate) error) *flusher {
	f := &flusher{
		log:          log,
		write:        write,
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
	f.cond = sync.NewCond(&f.mu)
	go f.run()
	return f
}

func (f *flusher) enqueue(u models.ProgressUpdate) {
	if u.Empty() {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closing {
		return
	}
	f.queue = append(f.queue, u)
	f.cond.Signal()
}

func (f *flusher) run() {
	defer close(f.done)

	var pending *models.ProgressUpdate
	for {
		f.mu.Lock()
		for len(f.queue) == 0 && !f.closing {
			f.cond.Wait()
		}
		if len(f.queue) == 0 {
			f.mu.Unlock()
			if pending != nil {
				// last chance for a write that failed earlier
				if err := f.do(*pending); err != nil {
					f.log.ErrorErr("progress update dropped", err)
				}
			}
			return
		}
		u := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()

		if pending != nil {
			u = pending.Merge(u)
			pending = nil
		}
		if err := f.do(u); err != nil {
			f.log.Warn("progress update failed, retrying with next flush", logger.Err(err))
			pending = &u
		}
	}
}

func (f *flusher) do(u models.ProgressUpdate) error {
	ctx, cancel := context.WithTimeout(context.Background(), f.writeTimeout)
	defer cancel()
	return f.write(ctx, u)
}

// close stops accepting updates and waits up to timeout for the queue to
// drain.
func (f *flusher) close(timeout time.Duration) error {
	f.mu.Lock()
	f.closing = true
	f.cond.Signal()
	f.mu.Unlock()

	select {
	case <-f.done:
		return nil
	case <-time.After(timeout):
		return errFlushTimeout
	}
}
