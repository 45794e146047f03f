package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", VersionOf("001_init.sql"))
	assert.Equal(t, "002", VersionOf("/x/migrations/002_password_resets.sql"))
	assert.Equal(t, "seed.sql", VersionOf("seed.sql"))
}

func TestPendingFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"003_c.sql", "001_a.sql", "README.md", "002_b.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "004_dir.sql"), 0o700))

	files, err := PendingFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "001_a.sql"),
		filepath.Join(dir, "002_b.sql"),
		filepath.Join(dir, "003_c.sql"),
	}, files)
}

func TestPendingFilesMissingDir(t *testing.T) {
	_, err := PendingFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
