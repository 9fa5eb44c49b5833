package export

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ErrDestination is matched by errors that make a sink unusable, as opposed
// to a failure for one document.
var ErrDestination = errors.New("export: destination unusable")

// Sink stores exported documents.
type Sink interface {
	// Put stores content under the slash-separated path. written is false
	// when the stored content already had the same fingerprint.
	Put(ctx context.Context, path string, content []byte) (written bool, err error)
}

// DocumentError is the failure to export one document.
type DocumentError struct {
	Path  string
	DocID string
	Err   error
}

// Error returns the error message.
func (e *DocumentError) Error() string {
	return fmt.Sprintf("export: %s (%s): %v", e.Path, e.DocID, e.Err)
}

// Unwrap returns the underlying error.
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Fingerprint returns the content fingerprint used to detect unchanged
// documents, as 16 hex digits.
func Fingerprint(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// parseFingerprint is the inverse of Fingerprint.
func parseFingerprint(s string) (uint64, bool) {
	if len(s) != 16 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 64)
	return v, err == nil
}
