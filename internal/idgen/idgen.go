// Package idgen generates opaque, collision-resistant identifiers for
// engine entities. IDs carry a short type prefix purely for readability
// in logs and the changelog; callers must treat them as opaque.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// New returns an opaque identifier prefixed with kind, e.g. New("tsk")
// produces "tsk_3f9a2c1e8b7d4a56b0e14c7d92a8f635" (32 hex characters).
// The random suffix carries the full
// entropy of a UUIDv4 (122 random bits), well above the ≥72-bit floor.
func New(kind string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	if kind == "" {
		return raw
	}
	return kind + "_" + raw
}
