package wire

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func mustDecode(t *testing.T, b []byte) Envelope {
	t.Helper()
	e, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return e
}

func TestRoundTrip(t *testing.T) {
	exp := time.Date(2015, 8, 15, 12, 1, 0, 0, time.UTC).UnixNano()
	cases := []Envelope{
		{Codec: 1, Payload: nil},
		{Codec: 2, Payload: []byte("hello"), HasExpiry: true, Expiry: exp, TTL: 60},
		{Codec: 3, Payload: []byte{0, 1, 2, 3}, HasExpiry: true, Expiry: -5, TTL: math.MaxUint32},
	}
	for _, tc := range cases {
		got := mustDecode(t, Encode(tc))
		if got.Codec != tc.Codec || got.HasExpiry != tc.HasExpiry || got.Expiry != tc.Expiry || got.TTL != tc.TTL {
			t.Fatalf("header mismatch: got %+v want %+v", got, tc)
		}
		if !bytes.Equal(got.Payload, tc.Payload) {
			t.Fatalf("payload mismatch: got %x want %x", got.Payload, tc.Payload)
		}
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc := Encode(Envelope{Codec: 1, Payload: []byte("x")})
	enc = append(enc, 0xDE, 0xAD)
	if _, err := Decode(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestCorruptHeadersAndLengths(t *testing.T) {
	enc := Encode(Envelope{Codec: 1, Payload: []byte("abc"), HasExpiry: true, Expiry: 10, TTL: 5})

	mutate := func(f func(b []byte) []byte) []byte {
		return f(append([]byte(nil), enc...))
	}

	cases := map[string][]byte{
		"bad magic":   mutate(func(b []byte) []byte { b[0] = 'X'; return b }),
		"bad version": mutate(func(b []byte) []byte { b[4] = Version + 1; return b }),
		"bad flags":   mutate(func(b []byte) []byte { b[6] = 0x80; return b }),
		"expiry without flag": mutate(func(b []byte) []byte {
			b[6] = 0
			return b
		}),
		"vlen too large": mutate(func(b []byte) []byte {
			binary.BigEndian.PutUint32(b[19:23], uint32(len("abc")+1))
			return b
		}),
		"truncated": enc[:len(enc)-1],
		"short":     enc[:10],
		"empty":     nil,
		"foreign":   []byte("s:5:\"hello\";"),
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(b); err == nil {
				t.Fatalf("expected ErrCorrupt")
			}
		})
	}
}

func TestZeroCopyPayload(t *testing.T) {
	enc := Encode(Envelope{Codec: 1, Payload: []byte("Z")})
	e := mustDecode(t, enc)
	e.Payload[0] = 'Q'
	if mustDecode(t, enc).Payload[0] != 'Q' {
		t.Fatalf("expected payload to alias the encoded buffer")
	}
}

func TestNoExpiryEncodesZero(t *testing.T) {
	enc := Encode(Envelope{Codec: 1, Expiry: 12345})
	e := mustDecode(t, enc)
	if e.HasExpiry || e.Expiry != 0 {
		t.Fatalf("expiry leaked without flag: %+v", e)
	}
}
