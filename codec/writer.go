package codec

import "encoding/binary"

// Writer builds a message body field by field. The zero value is ready to
// use. Writers are not safe for concurrent use.
type Writer struct {
	buf []byte
}

// NewWriter creates a writer with a preallocated buffer.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the encoded body. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Byte appends a single byte field.
func (w *Writer) Byte(v byte) *Writer {
	w.buf = append(w.buf, v)
	return w
}

// Uint16 appends a little-endian uint16 field.
func (w *Writer) Uint16(v uint16) *Writer {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

// Uint32 appends a little-endian uint32 field.
func (w *Writer) Uint32(v uint32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}

// Uint64 appends a little-endian uint64 field.
func (w *Writer) Uint64(v uint64) *Writer {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

// String appends a uint16 length-prefixed UTF-8 string field.
// Oversized strings are truncated at MaxStringLen; the protocol has no
// legitimate string fields anywhere near that bound.
func (w *Writer) String(v string) *Writer {
	if len(v) > MaxStringLen {
		v = v[:MaxStringLen]
	}
	w.Uint16(uint16(len(v)))
	w.buf = append(w.buf, v...)
	return w
}

// Buffer appends a uint32 length-prefixed byte buffer field.
func (w *Writer) Buffer(v []byte) *Writer {
	w.Uint32(uint32(len(v)))
	w.buf = append(w.buf, v...)
	return w
}

// Raw appends bytes without a length prefix. Used for fixed-size fields
// such as digests and tokens whose length is part of the message layout.
func (w *Writer) Raw(v []byte) *Writer {
	w.buf = append(w.buf, v...)
	return w
}
