package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestParseEnvOverrides(t *testing.T) {
	is := is.New(t)
	td := t.TempDir()
	is.NoErr(os.Setenv("TRACKS_DATA_PATH", td))
	is.NoErr(os.Setenv("TRACKS_HTTP_LISTEN_ADDR", ":8080"))
	is.NoErr(os.Setenv("TRACKS_DB_DRIVER", "postgres"))
	is.NoErr(os.Setenv("TRACKS_DB_DATA_SOURCE", "postgres://localhost/tracks"))
	t.Cleanup(func() {
		is.NoErr(os.Unsetenv("TRACKS_DATA_PATH"))
		is.NoErr(os.Unsetenv("TRACKS_HTTP_LISTEN_ADDR"))
		is.NoErr(os.Unsetenv("TRACKS_DB_DRIVER"))
		is.NoErr(os.Unsetenv("TRACKS_DB_DATA_SOURCE"))
	})

	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.Equal(cfg.HTTP.ListenAddr, ":8080")
	is.Equal(cfg.DB.Driver, "postgres")
	// non-sqlite data sources must not be turned into file paths
	is.Equal(cfg.DB.DataSource, "postgres://localhost/tracks")
}

func TestValidateAbsolutePaths(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.DataPath = t.TempDir()
	is.NoErr(cfg.Validate())
	is.True(filepath.IsAbs(cfg.KeyPath))
	is.True(filepath.IsAbs(cfg.DB.DataSource))
}

func TestWriteAndParseConfigFile(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.Name = "Test tracker"
	is.NoErr(cfg.WriteConfig())

	cfg2 := DefaultConfig()
	cfg2.DataPath = cfg.DataPath
	is.NoErr(cfg2.ParseFile())
	is.Equal(cfg2.Name, "Test tracker")
}

func TestNotificationRetention(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	d, err := cfg.Notifications.RetentionDuration()
	is.NoErr(err)
	is.True(d >= 24*time.Hour)

	cfg.Notifications.Retention = "not a duration"
	cfg.DataPath = t.TempDir()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() => nil error, want invalid retention")
	}
}
