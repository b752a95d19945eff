package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(Config{})
	require.NoError(t, err)

	t.Cleanup(s.Close)

	return s
}

func TestStore_SetGet(t *testing.T) {
	s := newStore(t)
	q := domain.Quote{ID: 3, Text: "Know thyself.", Category: "Philosophy"}

	_, found := s.Get("lastViewedQuote")
	assert.False(t, found)

	s.Set("lastViewedQuote", q)

	got, found := s.Get("lastViewedQuote")
	require.True(t, found)
	assert.Equal(t, q, got)
	assert.Equal(t, 1, s.Len())
}

func TestStore_SetOverwrites(t *testing.T) {
	s := newStore(t)

	s.Set("lastViewedQuote", domain.Quote{ID: 1, Text: "a", Category: "X"})
	s.Set("lastViewedQuote", domain.Quote{ID: 2, Text: "b", Category: "Y"})

	got, found := s.Get("lastViewedQuote")
	require.True(t, found)
	assert.Equal(t, int64(2), got.ID)
}

func TestStore_DeleteAndClear(t *testing.T) {
	s := newStore(t)

	s.Set("a", domain.Quote{ID: 1, Text: "a", Category: "X"})
	s.Set("b", domain.Quote{ID: 2, Text: "b", Category: "X"})

	s.Delete("a")

	_, found := s.Get("a")
	assert.False(t, found)

	s.Clear()

	_, found = s.Get("b")
	assert.False(t, found)
	assert.Zero(t, s.Len())
}
