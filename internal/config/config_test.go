package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, 18, cfg.Tokens.DefaultDecimals)
	require.Equal(t, 5*time.Minute, cfg.POR.ValidityWindow())
	require.Equal(t, 60*time.Second, cfg.Submission.PerAssetTimeout())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
database:
  driver: "memory"
por:
  maxAgeSeconds: 120
`), 0o644))

	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port, "environment must win over the file")
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, 2*time.Minute, cfg.POR.ValidityWindow())
}

func TestBackupConfig_ResolveDir(t *testing.T) {
	require.Equal(t, "/tmp/x", BackupConfig{Dir: "/tmp/x"}.ResolveDir())
	require.NotEmpty(t, BackupConfig{}.ResolveDir())
}
