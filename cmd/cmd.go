// Package cmd provides shared helpers for Tracks commands.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/tracksdev/tracks/pkg/backend"
	"github.com/tracksdev/tracks/pkg/config"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/proto"
	"github.com/tracksdev/tracks/pkg/store"
	"github.com/tracksdev/tracks/pkg/store/database"
)

// InitBackendContext initializes the backend context.
// When an access token is provided via the "TRACKS_TOKEN" environment
// variable, it will be used to find the corresponding user in the database
// and set the user in the context.
func InitBackendContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if _, err := os.Stat(cfg.DataPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(cfg.DataPath, os.ModePerm); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	dbx, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.DataSource)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	ctx = db.WithContext(ctx, dbx)
	dbstore := database.New(ctx, dbx)
	ctx = store.WithContext(ctx, dbstore)
	be := backend.New(ctx, cfg, dbx, dbstore)
	ctx = backend.WithContext(ctx, be)

	// Store user in context if an access token is provided via environment
	// variable.
	if token, ok := os.LookupEnv("TRACKS_TOKEN"); ok {
		user, err := be.UserFromAccessToken(ctx, token)
		if err == nil {
			ctx = proto.WithUserContext(ctx, &user)
		}
	}

	cmd.SetContext(ctx)

	return nil
}

// CloseDBContext closes the database context.
func CloseDBContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dbx := db.FromContext(ctx)
	if dbx != nil {
		if err := dbx.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	return nil
}
