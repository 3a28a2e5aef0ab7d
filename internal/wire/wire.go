package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// Version is bumped whenever the layout below changes. It also feeds the
// physical key prefix, so old and new layouts never share keys.
const Version byte = 1

const (
	flagExpiry byte = 1 << 0

	headerLen = 4 + 1 + 1 + 1 + 8 + 4 + 4
)

var (
	ErrCorrupt = errors.New("mcpcache: corrupt entry")
	magic4     = [...]byte{'M', 'C', 'P', 'C'}
)

// Envelope is the framed form of an item.
type Envelope struct {
	Codec   byte
	Expiry  int64  // unix nanos; meaningful only when HasExpiry
	TTL     uint32 // original ttl in seconds; 0 = none
	Payload []byte

	HasExpiry bool
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames e:
//
//	magic(4) | ver(1) | codec(1) | flags(1) | expiry(i64 be) | ttl(u32 be) | vlen(u32 be) | payload(vlen)
func Encode(e Envelope) []byte {
	var buf bytes.Buffer
	buf.Grow(headerLen + len(e.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(Version)
	buf.WriteByte(e.Codec)

	var flags byte
	if e.HasExpiry {
		flags |= flagExpiry
	}
	buf.WriteByte(flags)

	var u8 [8]byte
	var u4 [4]byte

	exp := int64(0)
	if e.HasExpiry {
		exp = e.Expiry
	}
	binary.BigEndian.PutUint64(u8[:], uint64(exp))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], e.TTL)
	buf.Write(u4[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
	buf.Write(u4[:])

	buf.Write(e.Payload)
	return buf.Bytes()
}

// Decode parses a frame. The payload aliases b (no copy).
// Trailing bytes, unknown flags and short buffers are rejected.
func Decode(b []byte) (Envelope, error) {
	if len(b) < headerLen || !hasMagic(b) || b[4] != Version {
		return Envelope{}, ErrCorrupt
	}

	e := Envelope{Codec: b[5]}
	flags := b[6]
	if flags&^flagExpiry != 0 {
		return Envelope{}, ErrCorrupt
	}
	e.HasExpiry = flags&flagExpiry != 0

	off := 7
	e.Expiry = int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	if !e.HasExpiry && e.Expiry != 0 {
		return Envelope{}, ErrCorrupt
	}

	e.TTL = binary.BigEndian.Uint32(b[off : off+4])
	off += 4

	vlen := uint64(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen > math.MaxInt32 || int(vlen) != len(b)-off {
		return Envelope{}, ErrCorrupt
	}

	e.Payload = b[off:]
	return e, nil
}
