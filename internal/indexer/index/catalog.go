package index

import (
	"fmt"
	"slices"
	"strings"
)

// Status is the lifecycle label attached to a document at insertion.
type Status int

const (
	StatusActive Status = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusIrrelevant:
		return "irrelevant"
	case StatusBanned:
		return "banned"
	case StatusRemoved:
		return "removed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus converts a status name as written in corpus files and
// ingestion events. "actual" is accepted as an alias of "active".
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active", "actual":
		return StatusActive, nil
	case "irrelevant":
		return StatusIrrelevant, nil
	case "banned":
		return StatusBanned, nil
	case "removed":
		return StatusRemoved, nil
	default:
		return 0, fmt.Errorf("unknown document status %q", s)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DocumentData is the catalog record of a live document.
type DocumentData struct {
	Rating int
	Status Status
}

// Catalog maps live document ids to their data and keeps the ids ordered.
type Catalog struct {
	docs map[int]DocumentData
	ids  []int
}

func NewCatalog() *Catalog {
	return &Catalog{
		docs: make(map[int]DocumentData),
	}
}

func (c *Catalog) Insert(id int, data DocumentData) {
	if _, exists := c.docs[id]; exists {
		c.docs[id] = data
		return
	}
	c.docs[id] = data
	pos, _ := slices.BinarySearch(c.ids, id)
	c.ids = slices.Insert(c.ids, pos, id)
}

func (c *Catalog) Get(id int) (DocumentData, bool) {
	data, ok := c.docs[id]
	return data, ok
}

func (c *Catalog) Contains(id int) bool {
	_, ok := c.docs[id]
	return ok
}

func (c *Catalog) Remove(id int) {
	if _, ok := c.docs[id]; !ok {
		return
	}
	delete(c.docs, id)
	if pos, found := slices.BinarySearch(c.ids, id); found {
		c.ids = slices.Delete(c.ids, pos, pos+1)
	}
}

// IDs returns a copy of the live ids in ascending order.
func (c *Catalog) IDs() []int {
	return slices.Clone(c.ids)
}

func (c *Catalog) Len() int {
	return len(c.docs)
}

// AverageRating returns floor(sum/count), or 0 for no ratings.
func AverageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	n := len(ratings)
	avg := sum / n
	if sum%n != 0 && (sum < 0) != (n < 0) {
		avg--
	}
	return avg
}
