// Package rawstore is a file-based cache of raw stats API responses.
// Boxscores and schedules for completed seasons never change, so once
// fetched they are read from disk instead of the network.
package rawstore

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

type Store struct {
	Root string // e.g. "data/raw"
}

func New(root string) *Store {
	return &Store{Root: root}
}

func (s *Store) Path(rel string) string {
	return filepath.Join(s.Root, rel)
}

func (s *Store) Exists(rel string) bool {
	_, err := os.Stat(s.Path(rel))
	return err == nil
}

// Write stores body at rel, pretty-printing it when it is valid JSON so
// cached responses stay diffable.
func (s *Store) Write(rel string, body []byte) error {
	path := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		buf := &bytes.Buffer{}
		enc := json.NewEncoder(buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err == nil {
			body = buf.Bytes()
		}
	}

	return os.WriteFile(path, body, 0o644)
}

func (s *Store) Read(rel string) ([]byte, error) {
	return os.ReadFile(s.Path(rel))
}
