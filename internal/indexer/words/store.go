// Package words implements the intern table that owns the character data of
// every word known to an index. Other structures refer to words by Handle and
// never hold their own copy.
//
// Each entry carries a referent count. The forward posting index holds one
// reference per posted word and the stop-word set holds one per stop word;
// storage is freed only when the last referent lets go.
package words

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
)

// Handle is a stable reference to an interned word. Handles of freed words
// are recycled, so a Handle must not be used after its last Release.
type Handle uint32

type entry struct {
	word string
	refs int
	live bool
}

// Store is the word intern table. It is not safe for concurrent mutation.
type Store struct {
	entries []entry
	byWord  map[string]Handle
	free    []Handle
}

func New() *Store {
	return &Store{
		byWord: make(map[string]Handle),
	}
}

// Intern returns the handle of word, adding it to the store if needed.
// Interning an existing word returns its handle without copying it again.
// The returned handle carries no reference of its own; call Retain to pin it.
func (s *Store) Intern(word string) (Handle, error) {
	if err := tokenizer.ValidateWord(word); err != nil {
		return 0, err
	}
	if h, ok := s.byWord[word]; ok {
		return h, nil
	}
	var h Handle
	if n := len(s.free); n > 0 {
		h = s.free[n-1]
		s.free = s.free[:n-1]
		s.entries[h] = entry{word: word, live: true}
	} else {
		h = Handle(len(s.entries))
		s.entries = append(s.entries, entry{word: word, live: true})
	}
	s.byWord[word] = h
	return h, nil
}

// Lookup returns the handle of word without interning it.
func (s *Store) Lookup(word string) (Handle, bool) {
	h, ok := s.byWord[word]
	return h, ok
}

// Retain records one more referent of h.
func (s *Store) Retain(h Handle) {
	s.mustLive(h).refs++
}

// Release drops one referent of h and frees the word once none remain.
// It reports whether the word's storage was freed.
func (s *Store) Release(h Handle) bool {
	e := s.mustLive(h)
	if e.refs > 0 {
		e.refs--
	}
	if e.refs > 0 {
		return false
	}
	delete(s.byWord, e.word)
	*e = entry{}
	s.free = append(s.free, h)
	return true
}

// Refs returns the number of referents currently holding h.
func (s *Store) Refs(h Handle) int {
	return s.mustLive(h).refs
}

// Word returns the text behind h.
func (s *Store) Word(h Handle) string {
	return s.mustLive(h).word
}

// Len returns the number of distinct words currently stored.
func (s *Store) Len() int {
	return len(s.byWord)
}

func (s *Store) mustLive(h Handle) *entry {
	if int(h) >= len(s.entries) || !s.entries[h].live {
		panic(fmt.Sprintf("words: use of released handle %d", h))
	}
	return &s.entries[h]
}
