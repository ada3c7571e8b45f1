package index

import (
	"context"
	"sync"

	"github.com/docdex/docdex"
)

// Gate coordinates concurrent table readers with the exclusive writer that
// rebuilds the table. Readers may run concurrently while the gate is idle; a
// writer first closes admission to new readers, then waits for in-flight
// readers to drain before it gets exclusive access.
//
// Readers that were admitted before a writer arrives complete against the
// pre-write table. Readers arriving after admission closes wait for the
// writer to finish and see the post-write table, never a partial one.
type Gate struct {
	mu      sync.Mutex
	admit   chan struct{} // closed while admission is open
	idle    chan struct{} // closed while no readers are in flight
	readers int

	writer chan struct{} // single writer token
}

// NewGate returns a Gate with admission open and no readers.
func NewGate() *Gate {
	admit := make(chan struct{})
	close(admit)
	idle := make(chan struct{})
	close(idle)
	return &Gate{
		admit:  admit,
		idle:   idle,
		writer: make(chan struct{}, 1),
	}
}

// BeginRead blocks until admission is open, then registers the caller as an
// in-flight reader. Every successful BeginRead must be paired with EndRead.
func (g *Gate) BeginRead(ctx context.Context) error {
	for {
		g.mu.Lock()
		select {
		case <-g.admit:
			g.readers++
			if g.readers == 1 {
				g.idle = make(chan struct{})
			}
			g.mu.Unlock()
			return nil
		default:
		}
		admit := g.admit
		g.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-admit:
			// Admission reopened; re-check under the lock.
		}
	}
}

// EndRead deregisters an in-flight reader.
func (g *Gate) EndRead() {
	g.mu.Lock()
	g.readers--
	if g.readers == 0 {
		close(g.idle)
	}
	g.mu.Unlock()
}

// Acquire takes exclusive write access, queueing behind an active writer.
// Used by incremental merges that must not fail on contention. A context
// cancelled before entry is refused even when the writer token is free.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case g.writer <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.drain(ctx)
}

// TryAcquire is like Acquire but fails immediately with ECONFLICT when
// another writer is active, rather than queueing.
func (g *Gate) TryAcquire(ctx context.Context) error {
	select {
	case g.writer <- struct{}{}:
	default:
		return docdex.Errorf(docdex.ECONFLICT, "an inventory refresh is already in progress")
	}
	return g.drain(ctx)
}

// drain closes admission and waits for in-flight readers to finish. The
// writer token is held on entry and released again if the wait is abandoned.
func (g *Gate) drain(ctx context.Context) error {
	g.mu.Lock()
	g.admit = make(chan struct{})
	idle := g.idle
	g.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		g.Release()
		return ctx.Err()
	}
}

// Release reopens admission and returns the writer token.
func (g *Gate) Release() {
	g.mu.Lock()
	close(g.admit)
	g.mu.Unlock()
	<-g.writer
}
