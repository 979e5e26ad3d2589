// Package source loads corpus documents from a YAML file or a Postgres table.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
)

// File reads a YAML corpus. The file holds either a top-level list of
// documents or a mapping with a "documents" list.
type File struct {
	Path string
}

func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Load(_ context.Context) ([]ingestion.Document, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", f.Path, err)
	}
	docs, err := DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", f.Path, err)
	}
	return docs, nil
}

// DecodeYAML parses a corpus document.
func DecodeYAML(data []byte) ([]ingestion.Document, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	node := root.Content[0]
	var docs []ingestion.Document
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&docs); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var wrapped struct {
			Documents []ingestion.Document `yaml:"documents"`
		}
		if err := node.Decode(&wrapped); err != nil {
			return nil, err
		}
		docs = wrapped.Documents
	default:
		return nil, fmt.Errorf("line %d: expected a list of documents", node.Line)
	}
	return docs, nil
}
