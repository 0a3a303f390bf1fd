package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderFields(t *testing.T) {
	w := NewWriter(64)
	w.Byte(0x7F).
		Uint16(0xBEEF).
		Uint32(0xDEADBEEF).
		Uint64(0x0102030405060708).
		String("hello").
		Buffer([]byte{9, 8, 7}).
		Raw([]byte{1, 1})

	r := NewReader(w.Bytes())
	assert.Equal(t, byte(0x7F), r.Byte())
	assert.Equal(t, uint16(0xBEEF), r.Uint16())
	assert.Equal(t, uint32(0xDEADBEEF), r.Uint32())
	assert.Equal(t, uint64(0x0102030405060708), r.Uint64())
	assert.Equal(t, "hello", r.String())
	assert.Equal(t, []byte{9, 8, 7}, r.Buffer())
	assert.Equal(t, []byte{1, 1}, r.Raw(2))
	require.NoError(t, r.Err())
	assert.Equal(t, 0, r.Remaining())
}

func TestWriterLittleEndian(t *testing.T) {
	w := NewWriter(4)
	w.Uint32(0x04030201)
	assert.Equal(t, []byte{1, 2, 3, 4}, w.Bytes())
}

func TestReaderStickyError(t *testing.T) {
	r := NewReader([]byte{1, 2})

	// First failure sets the error.
	assert.Equal(t, uint32(0), r.Uint32())
	require.ErrorIs(t, r.Err(), ErrShortBuffer)

	// Subsequent reads return zero values even where bytes remain.
	assert.Equal(t, byte(0), r.Byte())
	assert.Equal(t, "", r.String())
	assert.Nil(t, r.Buffer())
	require.ErrorIs(t, r.Err(), ErrShortBuffer)
}

func TestReaderShortString(t *testing.T) {
	// Prefix claims 10 bytes, only 2 present.
	r := NewReader([]byte{10, 0, 'a', 'b'})
	assert.Equal(t, "", r.String())
	assert.ErrorIs(t, r.Err(), ErrShortBuffer)
}

func TestReaderOversizedBuffer(t *testing.T) {
	w := NewWriter(8)
	w.Uint32(MaxBufferLen + 1)
	r := NewReader(w.Bytes())
	assert.Nil(t, r.Buffer())
	assert.ErrorIs(t, r.Err(), ErrFieldTooLarge)
}

func TestReaderBufferIsCopy(t *testing.T) {
	w := NewWriter(16)
	w.Buffer([]byte{1, 2, 3})
	src := w.Bytes()

	r := NewReader(src)
	got := r.Buffer()
	require.NoError(t, r.Err())

	src[4] = 0xFF
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestWriterStringTruncation(t *testing.T) {
	long := make([]byte, MaxStringLen+100)
	for i := range long {
		long[i] = 'x'
	}

	w := NewWriter(0)
	w.String(string(long))

	r := NewReader(w.Bytes())
	got := r.String()
	require.NoError(t, r.Err())
	assert.Len(t, got, MaxStringLen)
}

func TestWriterZeroValueReady(t *testing.T) {
	var w Writer
	w.Uint16(7)
	assert.Equal(t, 2, w.Len())
}

func TestReaderEmptyString(t *testing.T) {
	w := NewWriter(2)
	w.String("")
	r := NewReader(w.Bytes())
	assert.Equal(t, "", r.String())
	assert.NoError(t, r.Err())
}
