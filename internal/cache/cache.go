// Package cache persists gob-encodable values, such as a built
// kmerindex.Index, on disk, keyed by a sha256 fingerprint of the arguments
// that produced them, so a repeated `type` run against the same MSA file
// and flags skips rebuilding the k-mer index (spec.md §6). The `type`
// command caches only the index: it reparses the MSA file and rebuilds
// the allele graph on every run.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists gob-encoded blobs under a base directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, creating it if necessary.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: creating %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// NewGraphStore returns the conventional ".cache/graphs" store under baseDir.
func NewGraphStore(baseDir string) (*Store, error) {
	return NewStore(filepath.Join(baseDir, ".cache", "graphs"))
}

// NewIndexStore returns the conventional ".cache/indices" store under baseDir.
func NewIndexStore(baseDir string) (*Store, error) {
	return NewStore(filepath.Join(baseDir, ".cache", "indices"))
}

// Fingerprint derives a stable cache key from the arguments that
// determine a cached value's contents — an MSA file's path and mtime,
// the k-mer size, allele-selection flags, and so on.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".gob")
}

// Get decodes the cached value for key into dst, reporting whether an
// entry existed. A missing entry is not an error.
func (s *Store) Get(key string, dst any) (bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("cache: reading %s: %w", key, err)
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(dst); err != nil {
		return false, fmt.Errorf("cache: decoding %s: %w", key, err)
	}
	return true, nil
}

// Put gob-encodes src and writes it under key, via a temp file plus
// rename so a concurrent Get never observes a partially written entry.
func (s *Store) Put(key string, src any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(src); err != nil {
		return fmt.Errorf("cache: encoding %s: %w", key, err)
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cache: writing %s: %w", key, err)
	}
	return os.Rename(tmp, s.path(key))
}

// Has reports whether key has a cached entry, without decoding it.
func (s *Store) Has(key string) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}
