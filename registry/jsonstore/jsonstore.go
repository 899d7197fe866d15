// Package jsonstore keeps every selector in a single JSON document. Each save
// rewrites the whole document atomically.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/common/file"
	"github.com/thrasher-corp/strategyfit/log"
	"github.com/thrasher-corp/strategyfit/registry"
)

// DefaultFileName is used when the configured path is a directory
const DefaultFileName = "strategies.json"

var errEmptyPath = errors.New("registry path is empty")

// Store is a registry.Store backed by a JSON file
type Store struct {
	m    sync.Mutex
	path string
}

// New returns a store writing to path. The file is created on first save.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errEmptyPath
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	return &Store{path: path}, nil
}

// Path returns the document location
func (s *Store) Path() string {
	return s.path
}

// Load returns the selector for symbol
func (s *Store) Load(ctx context.Context, symbol string) (*registry.Selector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.m.Lock()
	defer s.m.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range doc {
		if doc[i].Symbol == symbol {
			return doc[i], nil
		}
	}
	return nil, fmt.Errorf("%s %w", symbol, registry.ErrSelectorNotFound)
}

// Save replaces or appends sel and rewrites the document
func (s *Store) Save(ctx context.Context, sel *registry.Selector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sel.Validate(); err != nil {
		return err
	}
	s.m.Lock()
	defer s.m.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	replaced := false
	for i := range doc {
		if doc[i].Symbol == sel.Symbol {
			doc[i] = sel
			replaced = true
			break
		}
	}
	if !replaced {
		doc = append(doc, sel)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err = file.Write(s.path, data); err != nil {
		return fmt.Errorf("writing registry %s: %w", s.path, err)
	}
	log.Debugf(log.Registry, "saved %s to %s", sel.Symbol, s.path)
	return nil
}

// List returns every selector in the document ordered by symbol
func (s *Store) List(ctx context.Context) ([]*registry.Selector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.m.Lock()
	defer s.m.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	registry.SortSelectors(doc)
	return doc, nil
}

// read loads and validates the document. A missing file is an empty registry.
func (s *Store) read() ([]*registry.Selector, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var doc []*registry.Selector
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", registry.ErrCorruptRegistryState, s.path, err)
	}
	for i := range doc {
		if doc[i] == nil {
			return nil, fmt.Errorf("%w: %s: null selector at %d", registry.ErrCorruptRegistryState, s.path, i)
		}
		if doc[i].Tested == nil {
			doc[i].Tested = make(map[base.Kind]*registry.TestedStrategy)
		}
		if err = doc[i].Validate(); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
