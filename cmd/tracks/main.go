package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/tracksdev/tracks/cmd/tracks/admin"
	"github.com/tracksdev/tracks/cmd/tracks/serve"
	"github.com/tracksdev/tracks/cmd/tracks/token"
	"github.com/tracksdev/tracks/cmd/tracks/user"
	"github.com/tracksdev/tracks/pkg/config"
	tlog "github.com/tracksdev/tracks/pkg/log"
	"github.com/tracksdev/tracks/pkg/version"
	"go.uber.org/automaxprocs/maxprocs"
)

var rootCmd = &cobra.Command{
	Use:          "tracks",
	Short:        "A self-hostable project and task tracker",
	Long:         "Tracks is a self-hostable, multi-tenant project and task tracker.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		serve.Command,
		admin.Command,
		user.Command,
		token.Command,
		manCmd,
	)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	if len(version.CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + version.CommitSHA[0:7] + ")\n")
	}
	if version.Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			version.Version = info.Main.Version
		} else {
			version.Version = "unknown (built from source)"
		}
	}
	rootCmd.Version = version.Version
}

func main() {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	if cfg.Exist() {
		if err := cfg.ParseFile(); err != nil {
			log.Fatal("parse config file", "err", err)
		}
	}

	if err := cfg.ParseEnv(); err != nil {
		log.Fatal("parse environment variables", "err", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("validate config", "err", err)
	}

	ctx = config.WithContext(ctx, cfg)

	logger, f, err := tlog.NewLogger(cfg)
	if err != nil {
		log.Fatal("create logger", "err", err)
	}
	if f != nil {
		defer f.Close() // nolint: errcheck
	}

	// Set global logger
	log.SetDefault(logger)
	ctx = log.WithContext(ctx, logger)

	// Set the max number of processes to the number of CPUs
	// This is useful when running tracks in a container
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.Warn("couldn't set automaxprocs", "err", err)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
