package scraper

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
)

// idleTracker follows a tab's network events and reports when the page has
// kept at most a given number of requests in flight for a sustained window.
type idleTracker struct {
	mu          sync.Mutex
	inflight    map[network.RequestID]struct{}
	maxInflight int
	quietSince  time.Time
}

func newIdleTracker(maxInflight int) *idleTracker {
	if maxInflight < 0 {
		maxInflight = 0
	}
	return &idleTracker{
		inflight:    make(map[network.RequestID]struct{}),
		maxInflight: maxInflight,
		quietSince:  time.Now(),
	}
}

// handle is registered with chromedp.ListenTarget and must not block.
func (t *idleTracker) handle(ev any) {
	switch ev := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.started(ev.RequestID)
	case *network.EventLoadingFinished:
		t.finished(ev.RequestID)
	case *network.EventLoadingFailed:
		t.finished(ev.RequestID)
	}
}

func (t *idleTracker) started(id network.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight[id] = struct{}{}
	if len(t.inflight) > t.maxInflight {
		t.quietSince = time.Time{}
	}
}

func (t *idleTracker) finished(id network.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.inflight[id]; !ok {
		return
	}
	delete(t.inflight, id)
	if len(t.inflight) <= t.maxInflight && t.quietSince.IsZero() {
		t.quietSince = time.Now()
	}
}

// idleFor reports how long the tab has been at or below the in-flight limit.
func (t *idleTracker) idleFor(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.quietSince.IsZero() {
		return 0
	}
	return now.Sub(t.quietSince)
}

// Wait blocks until the network has been idle for window or ctx is done.
func (t *idleTracker) Wait(ctx context.Context, window time.Duration) error {
	poll := window / 10
	if poll < 10*time.Millisecond {
		poll = 10 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if t.idleFor(time.Now()) >= window {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
