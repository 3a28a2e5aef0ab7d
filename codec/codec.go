// Package codec converts cached values to and from bytes.
//
// Every codec carries a one-byte ID that is written into the entry envelope.
// Reading an entry written by a different codec is treated as corruption, so
// switching codecs on a live cache degrades to misses instead of garbage.
// IDs below 128 are reserved for this package; custom codecs use 128..255.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
	ID() byte
}

const (
	IDBytes    byte = 1
	IDString   byte = 2
	IDJSON     byte = 3
	IDMsgpack  byte = 4
	IDCBOR     byte = 5
	IDProtobuf byte = 6
)
