package playback

import (
	"context"
	"time"
)

const DefaultAutoplayInterval = 5 * time.Second

// Ticker is the autoplay clock. Tests swap in a manual one.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// autoplayToken identifies one autoplay run. Ticks carrying a token other
// than the engine's current one are stale and dropped.
type autoplayToken struct {
	cancel context.CancelFunc
}

// startAutoplay runs tick on every ticker fire until the returned token is
// cancelled.
func startAutoplay(newTicker func(time.Duration) Ticker, interval time.Duration, tick func(*autoplayToken)) *autoplayToken {
	ctx, cancel := context.WithCancel(context.Background())
	token := &autoplayToken{cancel: cancel}
	ticker := newTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if ctx.Err() != nil {
					return
				}
				tick(token)
			}
		}
	}()
	return token
}
