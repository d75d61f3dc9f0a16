package serve

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/tracksdev/tracks/cmd"
	"github.com/tracksdev/tracks/pkg/backend"
	"github.com/tracksdev/tracks/pkg/config"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/migrate"
	"github.com/tracksdev/tracks/pkg/proto"
)

// Command is the serve command.
var Command = &cobra.Command{
	Use:                "serve",
	Short:              "Start the server",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx := c.Context()
		cfg := config.FromContext(ctx)

		dbx := db.FromContext(ctx)
		if err := migrate.Migrate(ctx, dbx); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}

		if err := bootstrapAdmin(ctx, cfg); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}

		s, err := NewServer(ctx)
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}

		if cfg.HTTP.TLSCertPath != "" && cfg.HTTP.TLSKeyPath != "" {
			cert, err := tls.LoadX509KeyPair(cfg.HTTP.TLSCertPath, cfg.HTTP.TLSKeyPath)
			if err != nil {
				return fmt.Errorf("load tls certificate: %w", err)
			}
			s.HTTPServer.SetTLSConfig(&tls.Config{
				MinVersion:   tls.VersionTLS12,
				Certificates: []tls.Certificate{cert},
			})
		}

		lch := make(chan error, 1)
		done := make(chan os.Signal, 1)
		doneOnce := sync.OnceFunc(func() { close(done) })

		signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			lch <- s.Start()
			doneOnce()
		}()

		select {
		case err := <-lch:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
		case <-done:
		}

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	},
}

// bootstrapAdmin creates the initial admin account on first run when one
// is configured.
func bootstrapAdmin(ctx context.Context, cfg *config.Config) error {
	ia := cfg.InitialAdmin
	if ia.Username == "" {
		return nil
	}

	be := backend.FromContext(ctx)
	if _, err := be.UserByUsername(ctx, ia.Username); err == nil {
		return nil
	} else if !errors.Is(err, proto.ErrUserNotFound) {
		return err
	}

	if ia.Password == "" {
		return errors.New("initial admin password cannot be empty")
	}

	if _, err := be.CreateUser(ctx, ia.Username, "", ia.Email, ia.Password, true); err != nil {
		return err
	}

	log.FromContext(ctx).Info("created initial admin account", "username", ia.Username)
	return nil
}
