package wire

import (
	"errors"

	"github.com/lcx/authlink/codec"
)

// TokenSize is the size of a resumption token on the wire.
const TokenSize = 16

// ConnectHeader is presented by the client immediately after a socket
// opens, before any framed message. The server uses BuildID to reject
// mismatched client builds and Token to resume a prior session; a zero
// token requests a fresh session.
type ConnectHeader struct {
	BuildID   uint32
	BranchID  uint32
	ProductID uint32
	Token     [TokenSize]byte
}

// ConnectHeaderSize is the encoded size of a ConnectHeader, including
// its own leading length byte.
const ConnectHeaderSize = 1 + 4 + 4 + 4 + TokenSize

// EncodeConnectHeader encodes a connect header. The leading byte carries
// the header's total size so servers can skip fields appended by newer
// client builds.
func EncodeConnectHeader(hdr *ConnectHeader) []byte {
	w := codec.NewWriter(ConnectHeaderSize)
	w.Byte(ConnectHeaderSize).
		Uint32(hdr.BuildID).
		Uint32(hdr.BranchID).
		Uint32(hdr.ProductID).
		Raw(hdr.Token[:])
	return w.Bytes()
}

// DecodeConnectHeader decodes a connect header.
func DecodeConnectHeader(buf []byte) (*ConnectHeader, error) {
	r := codec.NewReader(buf)
	size := r.Byte()
	if int(size) < ConnectHeaderSize {
		return nil, errors.New("connect header too small")
	}
	hdr := &ConnectHeader{
		BuildID:   r.Uint32(),
		BranchID:  r.Uint32(),
		ProductID: r.Uint32(),
	}
	copy(hdr.Token[:], r.Raw(TokenSize))
	if err := r.Err(); err != nil {
		return nil, err
	}
	return hdr, nil
}
