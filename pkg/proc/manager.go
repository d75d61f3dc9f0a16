// Package proc tracks background goroutines so they can be drained on
// shutdown.
package proc

import (
	"context"
	"sync"
)

// Manager runs functions on their own goroutines and waits for them to
// finish. The backend uses it for async fanout work that must complete
// before the database is closed.
type Manager struct {
	ctx context.Context
	wg  sync.WaitGroup
}

// NewManager returns a new process manager.
func NewManager(ctx context.Context) *Manager {
	return &Manager{ctx: ctx}
}

// Go runs fn on its own goroutine, tracked by the manager so Wait can
// drain it. The function receives the manager's context.
func (m *Manager) Go(fn func(context.Context)) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn(m.ctx)
	}()
}

// Wait blocks until all tracked goroutines have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}
