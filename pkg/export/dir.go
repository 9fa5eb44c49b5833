package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// DirSink writes documents as files below a root directory.
type DirSink struct {
	root string
}

// NewDirSink creates root if needed and returns a sink writing below it.
func NewDirSink(root string) (*DirSink, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDestination, err)
	}
	return &DirSink{root: root}, nil
}

// Root returns the directory documents are written to.
func (s *DirSink) Root() string {
	return s.root
}

// Put writes content to root/path. An existing file with identical content
// is left alone. Paths that would leave root are rejected.
func (s *DirSink) Put(ctx context.Context, path string, content []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	rel := filepath.FromSlash(path)
	if !filepath.IsLocal(rel) {
		return false, fmt.Errorf("export: path %q escapes the export directory", path)
	}
	full := filepath.Join(s.root, rel)

	if existing, err := os.ReadFile(full); err == nil && len(existing) == len(content) &&
		xxhash.Sum64(existing) == xxhash.Sum64(content) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return false, err
	}

	// Write to a temp file and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(filepath.Dir(full), ".leafwire-*")
	if err != nil {
		return false, err
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return false, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	return true, nil
}
