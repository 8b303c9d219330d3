package mockup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/fishem/pkg/fish"
	"github.com/getmockd/fishem/pkg/logging"
)

// Well-known keys and file names of the mockup layout.
const (
	RootKey     = "/redfish/v1"
	VersionKey  = "/redfish"
	MetadataKey = "/redfish/v1/$metadata"

	JSONFile = "index.json"
	XMLFile  = "index.xml"
)

// filePattern finds every data file below the mockup root, including the
// root itself.
const filePattern = "**/index.{json,xml}"

// ErrNotDirectory is returned by Import when the mockup root is a file.
var ErrNotDirectory = errors.New("not a directory")

// Error is a fatal mockup import or export failure.
type Error struct {
	Op   string // "import" or "export"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("mockup %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Codec reads and writes mockup directories.
type Codec struct {
	log *slog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger used for progress and skipped entries.
func WithLogger(log *slog.Logger) Option {
	return func(c *Codec) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Codec.
func New(opts ...Option) *Codec {
	c := &Codec{log: logging.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Import loads the mockup at rootDir into store with a default Codec.
func Import(rootDir string, store *fish.Store) error {
	return New().Import(rootDir, store)
}

// Export writes store to rootDir with a default Codec.
func Export(rootDir string, store *fish.Store) error {
	return New().Export(rootDir, store)
}

// Import reads every index.json (and the $metadata index.xml) below rootDir
// and merges the documents into store. Existing keys are overwritten.
func (c *Codec) Import(rootDir string, store *fish.Store) error {
	info, err := os.Stat(rootDir)
	if err != nil {
		return &Error{Op: "import", Path: rootDir, Err: err}
	}
	if !info.IsDir() {
		return &Error{Op: "import", Path: rootDir, Err: ErrNotDirectory}
	}

	fsys := os.DirFS(rootDir)
	matches, err := doublestar.Glob(fsys, filePattern)
	if err != nil {
		return &Error{Op: "import", Path: rootDir, Err: err}
	}

	docs := make(map[string]fish.Document, len(matches))
	for _, match := range matches {
		key := keyForFile(match)
		doc, err := readDocument(fsys, match, key)
		if err != nil {
			return &Error{Op: "import", Path: filepath.Join(rootDir, filepath.FromSlash(match)), Err: err}
		}
		docs[key] = doc
	}

	store.Merge(docs)
	c.log.Info("imported mockup", "dir", rootDir, "resources", len(docs))
	return nil
}

// Export writes every document under RootKey to rootDir. Anything already at
// rootDir is removed first.
func (c *Codec) Export(rootDir string, store *fish.Store) error {
	if rootDir == "" {
		return &Error{Op: "export", Path: rootDir, Err: errors.New("empty mockup directory")}
	}
	if err := os.RemoveAll(rootDir); err != nil {
		return &Error{Op: "export", Path: rootDir, Err: err}
	}
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return &Error{Op: "export", Path: rootDir, Err: err}
	}

	written := 0
	err := store.Range(func(key string, doc fish.Document) error {
		if key == VersionKey {
			return nil
		}
		rel, ok := relativeDir(key)
		if !ok {
			c.log.Warn("skipping resource outside the mockup root", "key", key)
			return nil
		}

		dir := filepath.Join(rootDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &Error{Op: "export", Path: dir, Err: err}
		}

		name, data, err := encodeDocument(key, doc)
		if err != nil {
			return &Error{Op: "export", Path: dir, Err: fmt.Errorf("encoding %s: %w", key, err)}
		}
		file := filepath.Join(dir, name)
		if err := os.WriteFile(file, data, 0o644); err != nil {
			return &Error{Op: "export", Path: file, Err: err}
		}
		written++
		return nil
	})
	if err != nil {
		return err
	}

	c.log.Info("exported mockup", "dir", rootDir, "resources", written)
	return nil
}

// keyForFile maps a slash-separated path relative to the mockup root onto a
// store key.
func keyForFile(rel string) string {
	dir := path.Dir(rel)
	if dir == "." {
		return RootKey
	}
	return fish.Join(RootKey, dir)
}

// relativeDir maps a store key onto a directory relative to the mockup root.
// Keys outside RootKey, and keys whose segments would escape or collapse in
// a file path, have no place in the layout.
func relativeDir(key string) (string, bool) {
	if key == RootKey {
		return "", true
	}
	rest, ok := strings.CutPrefix(key, RootKey+fish.Separator)
	if !ok {
		return "", false
	}
	for _, seg := range strings.Split(rest, fish.Separator) {
		if seg == "" || seg == "." || seg == ".." {
			return "", false
		}
	}
	return rest, true
}

func readDocument(fsys fs.FS, name, key string) (fish.Document, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}

	if key == MetadataKey && path.Base(name) == XMLFile {
		return DecodeMetadata(data)
	}

	var doc fish.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is not a JSON object")
	}
	return doc, nil
}

func encodeDocument(key string, doc fish.Document) (string, []byte, error) {
	if key == MetadataKey {
		data, err := EncodeMetadata(doc)
		return XMLFile, data, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return "", nil, err
	}
	return JSONFile, buf.Bytes(), nil
}
