package mcpcache

import (
	"strconv"

	"github.com/QuickenLoans/mcp-cache/internal/wire"
)

// DefaultPrefix namespaces physical keys by envelope version.
var DefaultPrefix = "mcp-cache-v" + strconv.Itoa(int(wire.Version))

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
