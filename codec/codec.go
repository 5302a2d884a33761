// Package codec provides the pluggable value serializers leasecache stores
// bytes with. The cache never interprets stored bytes itself.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
