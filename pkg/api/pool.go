package api

import (
	"context"
	"sync/atomic"
)

// lane is a counting semaphore with usage counters.
type lane struct {
	slots  chan struct{}
	queued atomic.Int64
	active atomic.Int64
	done   atomic.Int64
}

func newLane(size int) *lane {
	return &lane{slots: make(chan struct{}, size)}
}

func (l *lane) acquire(ctx context.Context) error {
	l.queued.Add(1)
	defer l.queued.Add(-1)
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *lane) tryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

func (l *lane) release() {
	l.active.Add(-1)
	l.done.Add(1)
	<-l.slots
}

// WorkerPool bounds the work the API does at once. Request handlers that
// touch a game share the fast lane. Replays, which hold a slot for their
// whole run, use the slow lane.
type WorkerPool struct {
	fast *lane
	slow *lane
}

// PoolConfig sizes the two lanes. Zero or less picks the default.
type PoolConfig struct {
	MaxFastWorkers int // default 100
	MaxSlowWorkers int // default 4
}

// NewWorkerPool creates a pool.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	if config.MaxFastWorkers <= 0 {
		config.MaxFastWorkers = 100
	}
	if config.MaxSlowWorkers <= 0 {
		config.MaxSlowWorkers = 4
	}
	return &WorkerPool{
		fast: newLane(config.MaxFastWorkers),
		slow: newLane(config.MaxSlowWorkers),
	}
}

// AcquireFast waits for a fast slot or for ctx to end.
func (p *WorkerPool) AcquireFast(ctx context.Context) error { return p.fast.acquire(ctx) }

// ReleaseFast returns a slot taken by AcquireFast.
func (p *WorkerPool) ReleaseFast() { p.fast.release() }

// AcquireSlow waits for a replay slot or for ctx to end.
func (p *WorkerPool) AcquireSlow(ctx context.Context) error { return p.slow.acquire(ctx) }

// TryAcquireSlow takes a replay slot if one is free.
func (p *WorkerPool) TryAcquireSlow() bool { return p.slow.tryAcquire() }

// ReleaseSlow returns a slot taken by AcquireSlow or TryAcquireSlow.
func (p *WorkerPool) ReleaseSlow() { p.slow.release() }

// PoolStats is a point-in-time view of the pool, reported by /api/health.
type PoolStats struct {
	ActiveFast int64 `json:"active_fast"`
	ActiveSlow int64 `json:"active_slow"`
	QueuedFast int64 `json:"queued_fast"`
	QueuedSlow int64 `json:"queued_slow"`
	TotalFast  int64 `json:"total_fast"`
	TotalSlow  int64 `json:"total_slow"`
	MaxFast    int   `json:"max_fast"`
	MaxSlow    int   `json:"max_slow"`
}

// Stats returns the current counters.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		ActiveFast: p.fast.active.Load(),
		ActiveSlow: p.slow.active.Load(),
		QueuedFast: p.fast.queued.Load(),
		QueuedSlow: p.slow.queued.Load(),
		TotalFast:  p.fast.done.Load(),
		TotalSlow:  p.slow.done.Load(),
		MaxFast:    cap(p.fast.slots),
		MaxSlow:    cap(p.slow.slots),
	}
}
