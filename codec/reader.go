package codec

import "encoding/binary"

// Reader consumes a message body field by field. Errors are sticky: after
// the first failed read every subsequent call returns the zero value, and
// the single check of Err at the end of a decode suffices.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader creates a reader over a message body.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Err returns the first error encountered while reading, if any.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.Remaining() < n {
		r.err = ErrShortBuffer
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

// Byte reads a single byte field.
func (r *Reader) Byte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Uint16 reads a little-endian uint16 field.
func (r *Reader) Uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// Uint32 reads a little-endian uint32 field.
func (r *Reader) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Uint64 reads a little-endian uint64 field.
func (r *Reader) Uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// String reads a uint16 length-prefixed UTF-8 string field.
func (r *Reader) String() string {
	n := int(r.Uint16())
	if r.err != nil {
		return ""
	}
	if n > MaxStringLen {
		r.err = ErrFieldTooLarge
		return ""
	}
	b := r.take(n)
	if b == nil {
		return ""
	}
	return string(b)
}

// Buffer reads a uint32 length-prefixed byte buffer field. The returned
// slice is a copy and remains valid after the underlying body is recycled.
func (r *Reader) Buffer() []byte {
	n := int(r.Uint32())
	if r.err != nil {
		return nil
	}
	if n > MaxBufferLen {
		r.err = ErrFieldTooLarge
		return nil
	}
	b := r.take(n)
	if b == nil {
		return nil
	}
	cp := make([]byte, n)
	copy(cp, b)
	return cp
}

// Raw reads n bytes without a length prefix.
func (r *Reader) Raw(n int) []byte {
	return r.take(n)
}
