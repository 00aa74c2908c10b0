package snowfall

import (
	"context"
	"sync/atomic"
	"time"
)

// Burst is a handle on a running sequence of reshuffles started by Shake.
type Burst struct {
	ID       uint64
	Repeat   int
	Interval time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	fired     atomic.Int64
	cancelled atomic.Bool
}

// Stop cancels the remaining reshuffles. It does not wait for the burst to
// wind down; use Done for that.
func (b *Burst) Stop() {
	b.cancel()
}

// Done is closed once the burst has finished or been cancelled.
func (b *Burst) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the burst ends or ctx is cancelled.
func (b *Burst) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fired reports how many reshuffles have run so far.
func (b *Burst) Fired() int {
	return int(b.fired.Load())
}

// Cancelled reports whether the burst was stopped before completing.
func (b *Burst) Cancelled() bool {
	return b.cancelled.Load()
}

// Shake starts a burst of repeat reshuffles spaced Interval apart, the first
// one immediately. A burst already in flight is cancelled and drained first
// unless AllowOverlap is set, in which case both keep running and their
// reshuffles interleave. A non-positive repeat uses the configured default.
func (s *Simulator) Shake(repeat int) *Burst {
	if repeat <= 0 {
		repeat = s.params.ShakeRepeat
	}
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.burstSeq++
	b := &Burst{
		ID:       s.burstSeq,
		Repeat:   repeat,
		Interval: s.params.ShakeInterval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	if s.closed {
		s.mu.Unlock()
		b.cancelled.Store(true)
		cancel()
		close(b.done)
		return b
	}
	previous := s.burst
	s.burst = b
	s.active[b.ID] = b
	s.mu.Unlock()

	if previous != nil && !s.params.AllowOverlap {
		previous.Stop()
		<-previous.Done()
	}

	go s.runBurst(b)
	return b
}

// ActiveBurst returns the most recently started burst if it is still running.
func (s *Simulator) ActiveBurst() *Burst {
	s.mu.Lock()
	b := s.burst
	s.mu.Unlock()
	if b == nil {
		return nil
	}
	select {
	case <-b.done:
		return nil
	default:
		return b
	}
}

func (s *Simulator) runBurst(b *Burst) {
	defer close(b.done)
	defer s.forget(b)
	defer b.cancel()

	s.emit(Event{Kind: EventBurstStarted, Burst: b.ID})

	interval := b.Interval
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < b.Repeat; i++ {
		if i > 0 {
			select {
			case <-b.ctx.Done():
			case <-ticker.C:
			}
		}
		if b.ctx.Err() != nil {
			b.cancelled.Store(true)
			s.emit(Event{Kind: EventBurstCancelled, Burst: b.ID, Fired: b.Fired()})
			return
		}
		s.reshuffle(b.ID)
		b.fired.Add(1)
	}
	s.emit(Event{Kind: EventBurstFinished, Burst: b.ID, Fired: b.Fired()})
}

func (s *Simulator) forget(b *Burst) {
	s.mu.Lock()
	delete(s.active, b.ID)
	s.mu.Unlock()
}

// Close cancels every running burst, waits for them, and refuses new ones.
func (s *Simulator) Close() {
	s.mu.Lock()
	s.closed = true
	running := make([]*Burst, 0, len(s.active))
	for _, b := range s.active {
		running = append(running, b)
	}
	s.mu.Unlock()
	for _, b := range running {
		b.Stop()
		<-b.done
	}
}
