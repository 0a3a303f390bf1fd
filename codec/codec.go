// Package codec implements the field-level wire codec for the auth-server
// protocol. Messages are flat sequences of little-endian fields; strings are
// uint16 length-prefixed UTF-8 and byte buffers are uint32 length-prefixed.
// The codec carries no type information on the wire: both peers agree on the
// field layout of every message id within a protocol epoch.
package codec

import "errors"

var (
	// ErrShortBuffer is returned when a read runs past the end of the
	// message body.
	ErrShortBuffer = errors.New("codec: short buffer")

	// ErrFieldTooLarge is returned when a length-prefixed field exceeds
	// its limit.
	ErrFieldTooLarge = errors.New("codec: field too large")
)

const (
	// MaxStringLen bounds uint16-prefixed strings. The prefix already
	// limits them to 64KiB; this tightens it to a sane protocol bound.
	MaxStringLen = 4096

	// MaxBufferLen bounds uint32-prefixed byte buffers (file chunks,
	// vault node blobs, propagated buffers).
	MaxBufferLen = 1 << 20
)
