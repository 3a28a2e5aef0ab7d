// Package mcpcache is a cache abstraction: one Get/Set/Delete/Clear contract
// over interchangeable byte stores (in-process map, ristretto, bigcache,
// Redis, memcached, bbolt).
//
// Components:
//   - Provider: byte store with TTL, see provider/ and its subpackages.
//   - Codec[V]: (de)serializes V <-> []byte.
//   - Item envelope: value + absolute expiry + original TTL, framed with the
//     codec id so a codec switch degrades to misses.
//   - Stampede protection: optional probabilistic early expiration, so one
//     reader recomputes a hot value shortly before its deadline instead of
//     all of them at once.
//   - GenStore: optional namespace-wide epoch. Clear bumps it instead of
//     flushing a shared store.
//
// Keys:
//
//	<prefix>:<key>[:<generation>][:<suffix>]
//
// prefix defaults to "mcp-cache-v<envelope version>". Logical keys must not
// contain any of {}()/\@: .
//
// Typical use:
//
//	c, _ := mcpcache.New[User](mcpcache.Options[User]{
//	    Provider: redisProvider,
//	    Codec:    codec.JSON[User]{},
//	    MaxTTL:   time.Hour,
//	    StampedeProtection: true,
//	})
//	u, ok, err := c.Get(ctx, "user.42")
package mcpcache
