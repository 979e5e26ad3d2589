// Package index holds the authoritative mutable structures of a search
// engine: the forward and reverse posting indices keyed by interned word
// handles, and the document catalog of live documents.
package index

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/words"
)

// Postings maps a document id to the term frequency of one word in it.
type Postings map[int]float64

// WordFreqs maps a word handle to its term frequency in one document.
type WordFreqs map[words.Handle]float64

// PostingIndex keeps forward (word → doc → tf) and reverse (doc → word → tf)
// postings consistent with each other.
//
// Concurrency: readers may run in parallel with each other. During a
// parallel removal, DetachWord may be called concurrently for distinct
// handles because each call mutates only that word's own Postings map.
// Every other mutation, in particular DropWord, must run single-threaded.
type PostingIndex struct {
	forward map[words.Handle]Postings
	reverse map[int]WordFreqs
}

func NewPostingIndex() *PostingIndex {
	return &PostingIndex{
		forward: make(map[words.Handle]Postings),
		reverse: make(map[int]WordFreqs),
	}
}

// Insert records the postings of a new document. It returns the handles
// whose forward posting did not exist before, so the caller can retain them
// in the word store.
func (p *PostingIndex) Insert(docID int, freqs WordFreqs) []words.Handle {
	var created []words.Handle
	reverse := make(WordFreqs, len(freqs))
	for h, tf := range freqs {
		postings, ok := p.forward[h]
		if !ok {
			postings = make(Postings)
			p.forward[h] = postings
			created = append(created, h)
		}
		postings[docID] = tf
		reverse[h] = tf
	}
	p.reverse[docID] = reverse
	return created
}

// Postings returns the forward posting of h.
func (p *PostingIndex) Postings(h words.Handle) (Postings, bool) {
	postings, ok := p.forward[h]
	return postings, ok
}

// DocumentFreq returns the number of documents posting h.
func (p *PostingIndex) DocumentFreq(h words.Handle) int {
	return len(p.forward[h])
}

// Contains reports whether docID is posted under h.
func (p *PostingIndex) Contains(h words.Handle, docID int) bool {
	_, ok := p.forward[h][docID]
	return ok
}

// DocumentWords returns the reverse posting of docID. The map is owned by
// the index and must not be modified.
func (p *PostingIndex) DocumentWords(docID int) (WordFreqs, bool) {
	freqs, ok := p.reverse[docID]
	return freqs, ok
}

// DocumentHandles returns the handles posted for docID in ascending order.
func (p *PostingIndex) DocumentHandles(docID int) []words.Handle {
	freqs := p.reverse[docID]
	handles := make([]words.Handle, 0, len(freqs))
	for h := range freqs {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

// DetachWord erases docID from the forward posting of h and reports whether
// that posting is now empty. It never changes the forward map itself.
func (p *PostingIndex) DetachWord(h words.Handle, docID int) bool {
	postings, ok := p.forward[h]
	if !ok {
		return false
	}
	delete(postings, docID)
	return len(postings) == 0
}

// DropWord removes the (empty) forward posting of h from the index.
func (p *PostingIndex) DropWord(h words.Handle) {
	delete(p.forward, h)
}

// DropDocument removes the reverse posting of docID.
func (p *PostingIndex) DropDocument(docID int) {
	delete(p.reverse, docID)
}

// WordCount returns the number of words with at least one posting.
func (p *PostingIndex) WordCount() int {
	return len(p.forward)
}
