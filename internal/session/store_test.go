package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, ttl time.Duration) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "session.json"), ttl)
}

func TestFileStore_EmptyLoad(t *testing.T) {
	s := testStore(t, time.Hour)

	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_SaveThenLoad(t *testing.T) {
	s := testStore(t, 2*time.Hour)

	saved, err := s.Save("tok-1")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, saved.ExpiresAt.Sub(saved.CreatedAt))

	got, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok-1", got.Token)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	_, err := NewFileStore(path, time.Hour).Save("tok-2")
	require.NoError(t, err)

	got, ok, err := NewFileStore(path, time.Hour).Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok-2", got.Token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_Expired(t *testing.T) {
	s := testStore(t, time.Hour)
	now := time.Now()
	s.now = func() time.Time { return now }

	_, err := s.Save("tok")
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(59 * time.Minute) }
	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.True(t, ok)

	s.now = func() time.Time { return now.Add(time.Hour) }
	_, ok, err = s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_SaveReplaces(t *testing.T) {
	s := testStore(t, time.Hour)
	_, err := s.Save("old")
	require.NoError(t, err)
	_, err = s.Save("new")
	require.NoError(t, err)

	got, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", got.Token)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp file left behind")
	}
}

func TestFileStore_Clear(t *testing.T) {
	s := testStore(t, time.Hour)
	require.NoError(t, s.Clear(), "clearing an empty store")

	_, err := s.Save("tok")
	require.NoError(t, err)
	require.NoError(t, s.Clear())

	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Clear(), "clearing twice")
}

func TestFileStore_CorruptRecordIsAbsent(t *testing.T) {
	s := testStore(t, time.Hour)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}
