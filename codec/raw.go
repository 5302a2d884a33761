package codec

// Bytes is the identity codec for []byte values. Useful when the caller
// already holds serialized bytes and only wants the cache's orchestration.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String round-trips Go strings as raw bytes. Assumes UTF-8, validates
// nothing.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
