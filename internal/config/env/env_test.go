package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ENV", "staging")
	t.Setenv("FORMRELAY_PRESET", "from-process")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.staging"),
		[]byte("FORMRELAY_STAGE=staging\nFORMRELAY_PRESET=from-file\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("FORMRELAY_STAGE=base\nFORMRELAY_BASE=base\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("FORMRELAY_STAGE")
		os.Unsetenv("FORMRELAY_BASE")
	})

	loaded, err := LoadEnv()
	require.NoError(t, err)
	require.Equal(t, []string{".env.staging", ".env"}, loaded)

	require.Equal(t, "staging", os.Getenv("FORMRELAY_STAGE"))
	require.Equal(t, "base", os.Getenv("FORMRELAY_BASE"))
	require.Equal(t, "from-process", os.Getenv("FORMRELAY_PRESET"))
}

func TestLoadEnvNoFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	loaded, err := LoadEnv()
	require.NoError(t, err)
	require.Empty(t, loaded)
}
