// Package snapshot reads and writes fish files: a single JSON object whose
// keys are store keys and whose values are the documents stored under them.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/getmockd/fishem/pkg/fish"
)

// LoadError is returned when a fish file cannot be read or decoded.
// Nothing is merged into the store when a LoadError is returned.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("loading fish: %v", e.Err)
	}
	return fmt.Sprintf("loading fish file %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Export returns a deep copy of every entry in the store, taken while the
// store is read-locked.
func Export(store *fish.Store) map[string]fish.Document {
	out := make(map[string]fish.Document, store.Len())
	_ = store.Range(func(key string, doc fish.Document) error {
		out[key] = doc.Clone()
		return nil
	})
	return out
}

// Import merges docs into the store. Existing keys are overwritten; keys
// not present in docs are kept.
func Import(store *fish.Store, docs map[string]fish.Document) {
	store.Merge(docs)
}

// Encode writes the store to w as compact JSON.
func Encode(w io.Writer, store *fish.Store) error {
	data, err := json.Marshal(Export(store))
	if err != nil {
		return fmt.Errorf("encoding fish: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing fish: %w", err)
	}
	return nil
}

// Decode reads a fish file from r and merges it into the store. Every
// top-level value must be a JSON object.
func Decode(r io.Reader, store *fish.Store) error {
	docs, err := decode(r)
	if err != nil {
		return &LoadError{Err: err}
	}
	Import(store, docs)
	return nil
}

// ReadFile loads the fish file at path into the store.
func ReadFile(path string, store *fish.Store) error {
	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	docs, err := decode(f)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	Import(store, docs)
	return nil
}

// WriteFile writes the store to path. The file is written to a temporary
// sibling first and renamed into place.
func WriteFile(path string, store *fish.Store) error {
	var buf bytes.Buffer
	if err := Encode(&buf, store); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmpFile, err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("renaming %s: %w", tmpFile, err)
	}
	return nil
}

func decode(r io.Reader) (map[string]fish.Document, error) {
	var raw map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("fish file has data after the top-level JSON object")
	}
	if raw == nil {
		return nil, fmt.Errorf("fish file is not a JSON object")
	}

	docs := make(map[string]fish.Document, len(raw))
	for key, value := range raw {
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("value for key %q is not a JSON object", key)
		}
		docs[key] = fish.Document(obj)
	}
	return docs, nil
}
