// Package wire defines the auth-server protocol's wire contract: the frame
// prehead, the two fixed message-id tables (one per direction), and the
// connect header presented when a socket opens. The tables are the contract
// between client and server and must remain stable within a protocol epoch;
// new message kinds are added by appending entries, never by renumbering.
package wire

import (
	"encoding/binary"
	"errors"
)

// FRAME_HEAD_SIZE is the size of the frame prehead.
const FRAME_HEAD_SIZE = 8

// MaxBodySize bounds a single frame body. Larger bodies indicate a corrupt
// stream or a peer speaking a different protocol epoch.
const MaxBodySize = 2 << 20

// FrameHead precedes every message body on the stream.
type FrameHead struct {
	MsgID    uint32
	BodySize uint32
}

// EncodeFrameHead encodes a frame prehead.
func EncodeFrameHead(hdr *FrameHead) []byte {
	buf := make([]byte, FRAME_HEAD_SIZE)
	binary.LittleEndian.PutUint32(buf[0:4], hdr.MsgID)
	binary.LittleEndian.PutUint32(buf[4:8], hdr.BodySize)
	return buf
}

// DecodeFrameHead decodes a frame prehead.
func DecodeFrameHead(buf []byte) (*FrameHead, error) {
	if len(buf) < FRAME_HEAD_SIZE {
		return &FrameHead{}, errors.New("buff too small")
	}
	hdr := &FrameHead{
		MsgID:    binary.LittleEndian.Uint32(buf),
		BodySize: binary.LittleEndian.Uint32(buf[4:8]),
	}
	if hdr.BodySize > MaxBodySize {
		return hdr, errors.New("body too large")
	}
	return hdr, nil
}

// EncodeFrame builds a complete frame from a message id and body.
func EncodeFrame(msgID uint32, body []byte) []byte {
	buf := make([]byte, 0, FRAME_HEAD_SIZE+len(body))
	buf = binary.LittleEndian.AppendUint32(buf, msgID)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(body)))
	return append(buf, body...)
}
