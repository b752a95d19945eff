package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", "quotes.db")

	s, err := Open(context.Background(), path, "")
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := openTemp(t)

	v, found, err := s.Get(context.Background(), "quotes")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, v)
}

func TestStore_SetOverwritesAndDeletes(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	require.NoError(t, s.Set(ctx, "selectedCategory", "Wisdom"))
	require.NoError(t, s.Set(ctx, "selectedCategory", "Humor"))

	v, found, err := s.Get(ctx, "selectedCategory")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Humor", v)

	require.NoError(t, s.Delete(ctx, "selectedCategory"))

	_, found, err = s.Get(ctx, "selectedCategory")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	require.NoError(t, s.Set(ctx, "quotes", `[{"id":1,"text":"a","category":"b"}]`))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path, "")
	require.NoError(t, err)

	t.Cleanup(func() { _ = reopened.Close() })

	v, found, err := reopened.Get(ctx, "quotes")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":1,"text":"a","category":"b"}]`, v)
}

func TestStore_InMemory(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, ":memory:", "slots")
	require.NoError(t, err)

	defer s.Close()

	require.NoError(t, s.Set(ctx, "k", "v"))

	v, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
}

func TestOpen_RejectsBadTableName(t *testing.T) {
	_, err := Open(context.Background(), ":memory:", "kv; DROP TABLE x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}

func TestStore_Health(t *testing.T) {
	s, _ := openTemp(t)

	assert.Equal(t, "sqlite", s.Name())
	assert.NoError(t, s.Check(context.Background()))
}
