package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "profile")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "profile", []byte(`{"games_played":1}`)))
	got, err := s.Get(ctx, "profile")
	require.NoError(t, err)
	assert.Equal(t, `{"games_played":1}`, string(got))

	require.NoError(t, s.Put(ctx, "profile", []byte(`{"games_played":2}`)))
	got, err = s.Get(ctx, "profile")
	require.NoError(t, err)
	assert.Equal(t, `{"games_played":2}`, string(got))

	require.NoError(t, s.Put(ctx, "history", []byte(`[]`)))
	got, err = s.Get(ctx, "history")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	assert.ErrorIs(t, s.Put(ctx, "../escape", []byte("x")), ErrInvalidKey)
	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidKey)

	type payload struct {
		Hands []string `json:"hands"`
	}
	require.NoError(t, SaveJSON(ctx, s, "typed", payload{Hands: []string{"a", "b"}}))
	var loaded payload
	found, err := LoadJSON(ctx, s, "typed", &loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, loaded.Hands)

	found, err = LoadJSON(ctx, s, "missing", &loaded)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory(t *testing.T) {
	t.Parallel()
	testStore(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	value := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", value))
	value[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)
	testStore(t, s)

	_, err = os.Stat(filepath.Join(dir, "profile.json"))
	assert.NoError(t, err)
}

func TestSQLite(t *testing.T) {
	t.Parallel()
	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "holdem.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	testStore(t, s)
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "holdem.db")

	s, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "profile", []byte("saved")))
	require.NoError(t, s.Close())

	s, err = NewSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "profile")
	require.NoError(t, err)
	assert.Equal(t, "saved", string(got))
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("HOLDEM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("HOLDEM_TEST_POSTGRES_DSN not set")
	}
	s, err := NewPostgres(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	testStore(t, s)
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		url  string
		want any
	}{
		{url: "memory:", want: &Memory{}},
		{url: "file:" + filepath.Join(dir, "a"), want: &File{}},
		{url: "file://" + filepath.Join(dir, "b"), want: &File{}},
		{url: filepath.Join(dir, "c"), want: &File{}},
		{url: "sqlite:" + filepath.Join(dir, "d.db"), want: &SQLite{}},
		{url: "sqlite::memory:", want: &SQLite{}},
	}
	for _, tt := range tests {
		s, err := Open(ctx, tt.url)
		require.NoError(t, err, tt.url)
		assert.IsType(t, tt.want, s, tt.url)
		assert.NoError(t, s.Close())
	}

	_, err := Open(ctx, "redis://localhost")
	assert.Error(t, err)
}
