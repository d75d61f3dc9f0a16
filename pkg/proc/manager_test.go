package proc

import (
	"context"
	"sync/atomic"
	"testing"
)

func TestManagerWaitDrainsAll(t *testing.T) {
	m := NewManager(context.Background())

	var n atomic.Int32
	for i := 0; i < 5; i++ {
		m.Go(func(context.Context) { n.Add(1) })
	}
	m.Wait()

	if got := n.Load(); got != 5 {
		t.Errorf("ran %d funcs, want 5", got)
	}
}

func TestManagerGoPassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	m := NewManager(ctx)

	var got atomic.Value
	m.Go(func(ctx context.Context) {
		got.Store(ctx.Value(key{}))
	})
	m.Wait()

	if got.Load() != "v" {
		t.Errorf("goroutine context value => %v, want %q", got.Load(), "v")
	}
}
