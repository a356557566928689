// ABOUTME: Record identifier generation
// ABOUTME: Produces prefixed, monotonic ULIDs that are unique for the process lifetime
package db

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// ID prefixes per entity.
const (
	PrefixContact     = "contact"
	PrefixCompany     = "company"
	PrefixInteraction = "int"
	PrefixTask        = "task"
	PrefixTag         = "tag"
)

// NewID returns a fresh identifier such as "contact_01j9x...". ulid.Make uses
// a process-wide monotonic entropy source, so ids never repeat within a run
// and sort by creation time.
func NewID(prefix string) string {
	return prefix + "_" + strings.ToLower(ulid.Make().String())
}
