// Package database provides the sqlx implementation of store.Store.
package database

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/tracksdev/tracks/pkg/config"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/store"
)

type datastore struct {
	ctx    context.Context
	cfg    *config.Config
	db     *db.DB
	logger *log.Logger

	*userStore
	*orgStore
	*workspaceStore
	*projectStore
	*taskStore
	*commentStore
	*activityStore
	*notificationStore
	*accessTokenStore
	*webhookStore
}

// New returns a new store.Store database.
func New(ctx context.Context, db *db.DB) store.Store {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("store")

	s := &datastore{
		ctx:    ctx,
		cfg:    cfg,
		db:     db,
		logger: logger,

		userStore:         &userStore{},
		orgStore:          &orgStore{},
		workspaceStore:    &workspaceStore{},
		projectStore:      &projectStore{},
		taskStore:         &taskStore{},
		commentStore:      &commentStore{},
		activityStore:     &activityStore{},
		notificationStore: &notificationStore{},
		accessTokenStore:  &accessTokenStore{},
		webhookStore:      &webhookStore{},
	}

	return s
}
