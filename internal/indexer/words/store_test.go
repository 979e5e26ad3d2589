package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

func TestStore_InternIsIdempotent(t *testing.T) {
	s := New()

	h1, err := s.Intern("cat")
	require.NoError(t, err)
	h2, err := s.Intern("cat")
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "cat", s.Word(h1))
}

func TestStore_InternRejectsControlCharacters(t *testing.T) {
	s := New()
	_, err := s.Intern("c\x01t")
	assert.ErrorIs(t, err, apperrors.ErrInvalidWord)
	assert.Equal(t, 0, s.Len())
}

func TestStore_ReleaseFreesOnLastReferent(t *testing.T) {
	s := New()
	h, err := s.Intern("dog")
	require.NoError(t, err)

	// one referent from postings, one from the stop-word set
	s.Retain(h)
	s.Retain(h)

	assert.False(t, s.Release(h))
	assert.Equal(t, "dog", s.Word(h))
	_, ok := s.Lookup("dog")
	assert.True(t, ok)

	assert.True(t, s.Release(h))
	_, ok = s.Lookup("dog")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_RecyclesFreedHandles(t *testing.T) {
	s := New()
	h, _ := s.Intern("one")
	s.Retain(h)
	require.True(t, s.Release(h))

	h2, err := s.Intern("two")
	require.NoError(t, err)
	assert.Equal(t, h, h2)
	assert.Equal(t, "two", s.Word(h2))
}

func TestStore_UseAfterReleasePanics(t *testing.T) {
	s := New()
	h, _ := s.Intern("gone")
	s.Release(h)
	assert.Panics(t, func() { s.Word(h) })
}
