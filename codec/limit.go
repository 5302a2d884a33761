package codec

import "fmt"

// Limit wraps another codec and rejects oversized payloads at Decode time,
// guarding against hostile or corrupt entries in a shared store. Encode is
// forwarded unchanged. MaxDecode <= 0 disables the check.
type Limit[V any] struct {
	// Inner is the wrapped codec. Must be set.
	Inner Codec[V]
	// MaxDecode is the maximum permitted payload length in bytes.
	MaxDecode int
}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
