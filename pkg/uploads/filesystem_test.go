package uploads

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileSystemStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	err = store.Put(context.Background(), "2026-02/img_a.png", strings.NewReader("data"), 4, "image/png")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "uploads", "2026-02", "img_a.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	err = store.Put(context.Background(), "2026-02/img_a.png", strings.NewReader("other"), 5, "image/png")
	assert.Error(t, err, "existing files are not overwritten")
}

func TestFileSystemStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../evil.png", "/etc/passwd", "a/../../evil.png", ".", ".."} {
		err := store.Put(context.Background(), key, strings.NewReader("x"), 1, "image/png")
		assert.Error(t, err, key)
	}
}
