// Package backend implements the business layer of Tracks: context
// resolution, membership and roles, containment checks, task state, and
// the activity/notification pipeline.
package backend

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/tracksdev/tracks/pkg/config"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/proc"
	"github.com/tracksdev/tracks/pkg/store"
)

// Backend is the Tracks backend that handles users, contexts, workspaces,
// projects, tasks, and their satellites.
type Backend struct {
	ctx     context.Context
	cfg     *config.Config
	db      *db.DB
	store   store.Store
	logger  *log.Logger
	cache   *cache
	manager *proc.Manager
}

// New returns a new Tracks backend.
func New(ctx context.Context, cfg *config.Config, db *db.DB, st store.Store) *Backend {
	logger := log.FromContext(ctx).WithPrefix("backend")
	b := &Backend{
		ctx:     ctx,
		cfg:     cfg,
		db:      db,
		store:   st,
		logger:  logger,
		manager: proc.NewManager(ctx),
	}

	cache := newCache(b, 1000)
	b.cache = cache

	return b
}

var contextKey = &struct{ string }{"backend"}

// FromContext returns the backend from a context.
func FromContext(ctx context.Context) *Backend {
	if b, ok := ctx.Value(contextKey).(*Backend); ok {
		return b
	}

	return nil
}

// WithContext returns a new context with the backend attached.
func WithContext(ctx context.Context, b *Backend) context.Context {
	return context.WithValue(ctx, contextKey, b)
}
