package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ClickerPilot/internal/model"
)

// Document keys written by the game API responses.
const (
	KeyClickerUser    = "clickerUser"
	KeyUpgradesForBuy = "upgradesForBuy"
)

// Document is the persisted JSON object. Keys are merged as opaque values.
type Document map[string]json.RawMessage

// Store holds the persisted document and flushes every merge to disk.
type Store struct {
	mu       sync.Mutex
	doc      Document
	filePath string
}

// Open loads the document at filePath. A missing file yields an empty store.
func Open(filePath string) (*Store, error) {
	doc, err := Load(filePath)
	if err != nil {
		return nil, err
	}
	return &Store{doc: doc, filePath: filePath}, nil
}

// Load reads a document from a JSON file. Returns an empty document if the file doesn't exist.
func Load(filePath string) (Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	doc := Document{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return doc, nil
}

// Save writes the document to filePath via a temporary file and rename.
func Save(filePath string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// Merge overwrites the top-level keys of patch and flushes immediately.
func (s *Store) Merge(patch map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range patch {
		s.doc[k] = v
	}
	return Save(s.filePath, s.doc)
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.doc[key]
	return ok
}

// Economic decodes the clickerUser snapshot.
func (s *Store) Economic() (*model.EconomicState, error) {
	var st model.EconomicState
	if err := s.decode(KeyClickerUser, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Upgrades splits the upgradesForBuy list into raw records. The records are
// left undecoded so a single bad entry can be skipped by the caller.
func (s *Store) Upgrades() ([]json.RawMessage, error) {
	var records []json.RawMessage
	if err := s.decode(KeyUpgradesForBuy, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) decode(key string, v any) error {
	s.mu.Lock()
	raw, ok := s.doc[key]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("state has no %q", key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
