package cloud

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/matchday/internal/game"
)

// DefaultPushDelay is the quiet period before a scheduled push is sent.
const DefaultPushDelay = 2 * time.Second

// PushTarget receives coalesced pushes. *Client satisfies it.
type PushTarget interface {
	Push(ctx context.Context, payload PushPayload) (string, error)
}

// Pusher coalesces bursts of state changes into a single outbound push.
// It holds one pending payload; scheduling again replaces the payload and
// restarts the quiet period.
type Pusher struct {
	target PushTarget
	delay  time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *PushPayload
	gen     uint64
	stopped bool
}

// NewPusher returns a Pusher that sends to target after delay of quiescence.
func NewPusher(target PushTarget, delay time.Duration) *Pusher {
	if delay <= 0 {
		delay = DefaultPushDelay
	}
	return &Pusher{target: target, delay: delay}
}

// Schedule replaces any pending payload with payload and restarts the timer.
func (p *Pusher) Schedule(payload PushPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.pending = &payload
	p.gen++
	gen := p.gen
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, func() { p.fire(gen) })
}

// Pending reports whether a push is waiting for its quiet period to end.
func (p *Pusher) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

// Flush sends the pending payload now, if there is one.
func (p *Pusher) Flush(ctx context.Context) error {
	payload, ok := p.take(0, false)
	if !ok {
		return nil
	}
	return p.send(ctx, payload)
}

// Stop cancels any pending push and ignores later schedules.
func (p *Pusher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	p.pending = nil
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Pusher) fire(gen uint64) {
	payload, ok := p.take(gen, true)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	_ = p.send(ctx, payload)
}

// take removes the pending payload. When matchGen is set the payload is
// only taken if no newer Schedule call superseded gen.
func (p *Pusher) take(gen uint64, matchGen bool) (PushPayload, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil || (matchGen && gen != p.gen) {
		return PushPayload{}, false
	}
	payload := *p.pending
	p.pending = nil
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	return payload, true
}

func (p *Pusher) send(ctx context.Context, payload PushPayload) error {
	id := uuid.NewString()[:8]
	stamp, err := p.target.Push(ctx, payload)
	if err != nil {
		log.Printf("sync: push %s failed: %v", id, err)
		return err
	}
	log.Printf("sync: push %s stored (%d tasks, %d points) at %s", id, len(payload.Tasks), payload.Points, stamp)
	return nil
}

// subscriber is the part of game.Store that Attach needs.
type subscriber interface {
	Subscribe(fn game.Listener) func()
}

// Attach schedules a push for every committed state change, except while a
// pull is in flight so the push cannot race ahead of the pending merge.
// It returns the unsubscribe function.
func Attach(store subscriber, pusher *Pusher) func() {
	return store.Subscribe(func(st game.State) {
		if st.IsSyncing {
			return
		}
		pusher.Schedule(NewPushPayload(st))
	})
}
