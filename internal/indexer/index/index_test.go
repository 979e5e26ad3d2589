package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/words"
)

func TestPostingIndex_InsertKeepsBothDirectionsConsistent(t *testing.T) {
	p := NewPostingIndex()
	created := p.Insert(1, WordFreqs{10: 0.5, 11: 0.5})
	assert.ElementsMatch(t, []words.Handle{10, 11}, created)

	created = p.Insert(2, WordFreqs{10: 1})
	assert.Empty(t, created)

	postings, ok := p.Postings(10)
	require.True(t, ok)
	assert.Equal(t, Postings{1: 0.5, 2: 1}, postings)
	assert.Equal(t, 2, p.DocumentFreq(10))

	freqs, ok := p.DocumentWords(1)
	require.True(t, ok)
	for h, tf := range freqs {
		assert.Equal(t, tf, p.forwardTF(h, 1))
	}
	assert.Equal(t, []words.Handle{10, 11}, p.DocumentHandles(1))
}

func TestPostingIndex_DetachAndDrop(t *testing.T) {
	p := NewPostingIndex()
	p.Insert(1, WordFreqs{10: 0.5, 11: 0.5})
	p.Insert(2, WordFreqs{10: 1})

	assert.False(t, p.DetachWord(10, 1))
	assert.True(t, p.DetachWord(11, 1))
	assert.Equal(t, 2, p.WordCount(), "detach must not change the forward map")

	p.DropWord(11)
	p.DropDocument(1)
	assert.Equal(t, 1, p.WordCount())
	assert.False(t, p.Contains(10, 1))
	assert.True(t, p.Contains(10, 2))
	_, ok := p.DocumentWords(1)
	assert.False(t, ok)
}

func TestCatalog_OrderedIDs(t *testing.T) {
	c := NewCatalog()
	for _, id := range []int{5, 1, 3} {
		c.Insert(id, DocumentData{Rating: id, Status: StatusActive})
	}
	assert.Equal(t, []int{1, 3, 5}, c.IDs())

	c.Remove(3)
	c.Remove(42)
	assert.Equal(t, []int{1, 5}, c.IDs())
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Contains(3))

	data, ok := c.Get(5)
	require.True(t, ok)
	assert.Equal(t, 5, data.Rating)
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		ratings []int
		want    int
	}{
		{nil, 0},
		{[]int{1, 2, 3}, 2},
		{[]int{1, 2}, 1},
		{[]int{-1, -2}, -2},
		{[]int{5, -12, 2, 1}, -1},
		{[]int{7}, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AverageRating(tt.ratings), "ratings %v", tt.ratings)
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("ACTUAL")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, st)

	st, err = ParseStatus("banned")
	require.NoError(t, err)
	assert.Equal(t, StatusBanned, st)
	assert.Equal(t, "banned", st.String())

	_, err = ParseStatus("archived")
	assert.Error(t, err)
}

func (p *PostingIndex) forwardTF(h words.Handle, docID int) float64 {
	return p.forward[h][docID]
}
