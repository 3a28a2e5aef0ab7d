package codec

// Bytes is an identity codec for []byte values.
type Bytes struct{}

func (Bytes) ID() byte                         { return IDBytes }
func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return append([]byte(nil), b...), nil }

// String converts Go strings to bytes and back. Assumes UTF-8, no validation.
type String struct{}

func (String) ID() byte                         { return IDString }
func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
