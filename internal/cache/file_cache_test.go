package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string
	Count int
}

func TestFileCache_SetGet(t *testing.T) {
	fc := NewFileCache[[]entry](t.TempDir(), 0)
	key := fc.GenerateKey("availability", "2024-03-10")

	_, ok := fc.Get(key)
	assert.False(t, ok)

	want := []entry{{"MODIS_NRT", 1}, {"VIIRS_SNPP_NRT", 2}}
	require.NoError(t, fc.Set(key, want))

	got, ok := fc.Get(key)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFileCache_GenerateKeyIsStable(t *testing.T) {
	fc := NewFileCache[int](t.TempDir(), 0)
	assert.Equal(t, fc.GenerateKey("a", 1), fc.GenerateKey("a", 1))
	assert.NotEqual(t, fc.GenerateKey("a", 1), fc.GenerateKey("a", 2))
}

func TestFileCache_Expired(t *testing.T) {
	fc := NewFileCache[string](t.TempDir(), time.Hour)
	base := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	fc.now = func() time.Time { return base }
	require.NoError(t, fc.Set("k", "v"))

	fc.now = func() time.Time { return base.Add(30 * time.Minute) }
	_, ok := fc.Get("k")
	assert.True(t, ok)

	fc.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, ok = fc.Get("k")
	assert.False(t, ok)
}

func TestFileCache_CorruptedChecksum(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileCache[string](dir, 0)
	require.NoError(t, fc.Set("k", "v"))

	path := filepath.Join(dir, "k.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(string(data), `"data":"v"`, `"data":"w"`, 1)), 0644))

	_, ok := fc.Get("k")
	assert.False(t, ok)
}
