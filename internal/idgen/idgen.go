// Package idgen assigns opaque identifiers and derives binary-store names
// from them. Ids are wide enough that no uniqueness check against existing
// storage is performed before use.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a 32-character opaque id.
func New() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NameFor derives the binary-store key for an id. The same function is
// used for originals and thumbnails, so keys are always id+extension.
func NameFor(id, extension string) string {
	return id + extension
}
