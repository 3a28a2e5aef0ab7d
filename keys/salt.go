// Package keys turns logical cache keys into physical storage keys.
//
// Layout:
//
//	prefix DELIM key [DELIM generation] [DELIM suffix]
//
// The prefix carries the envelope format version so a new format never reads
// entries written by an old one. The generation is a namespace-wide epoch:
// bumping it orphans every previously salted key without deleting anything.
// The suffix is an optional per-deployment namespace.
package keys

import (
	"strconv"
	"strings"

	"github.com/QuickenLoans/mcp-cache/internal/util"
)

// DefaultDelimiter separates the parts of a physical key.
const DefaultDelimiter = ":"

// Salter builds physical keys. The zero value has no prefix and uses
// DefaultDelimiter.
type Salter struct {
	Prefix    string
	Delimiter string
	// MaxLength caps the physical key length; 0 disables the cap. When a key
	// would exceed it, the logical key is replaced by its digest.
	MaxLength int
}

func (s Salter) delim() string {
	if s.Delimiter == "" {
		return DefaultDelimiter
	}
	return s.Delimiter
}

// Salt derives the physical key. gen == 0 and suffix == "" are omitted.
func (s Salter) Salt(key, suffix string, gen uint64) string {
	out := s.build(key, suffix, gen)
	if s.MaxLength > 0 && len(out) > s.MaxLength {
		out = s.build(util.Digest(key), suffix, gen)
	}
	return out
}

func (s Salter) build(key, suffix string, gen uint64) string {
	d := s.delim()

	var b strings.Builder
	b.Grow(len(s.Prefix) + len(key) + len(suffix) + 3*len(d) + 20)
	if s.Prefix != "" {
		b.WriteString(s.Prefix)
		b.WriteString(d)
	}
	b.WriteString(key)
	if gen > 0 {
		b.WriteString(d)
		b.WriteString(strconv.FormatUint(gen, 10))
	}
	if suffix != "" {
		b.WriteString(d)
		b.WriteString(suffix)
	}
	return b.String()
}
