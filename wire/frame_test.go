package wire

import (
	"bytes"
	"testing"
)

func TestEncodeFrameHead(t *testing.T) {
	tests := []struct {
		name string
		hdr  *FrameHead
	}{
		{
			name: "normal case",
			hdr: &FrameHead{
				MsgID:    Cli2Auth_AcctLoginRequest,
				BodySize: 200,
			},
		},
		{
			name: "zero values",
			hdr:  &FrameHead{},
		},
		{
			name: "max body",
			hdr: &FrameHead{
				MsgID:    Cli2Auth_PingRequest,
				BodySize: MaxBodySize,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EncodeFrameHead(tt.hdr)
			if len(result) != FRAME_HEAD_SIZE {
				t.Errorf("EncodeFrameHead() length = %v, want %v", len(result), FRAME_HEAD_SIZE)
			}
		})
	}
}

func TestDecodeFrameHead(t *testing.T) {
	tests := []struct {
		name        string
		buf         []byte
		wantHdr     *FrameHead
		wantErr     bool
		errContains string
	}{
		{
			name:    "normal case",
			buf:     EncodeFrameHead(&FrameHead{MsgID: 3, BodySize: 200}),
			wantHdr: &FrameHead{MsgID: 3, BodySize: 200},
		},
		{
			name:        "body too large",
			buf:         EncodeFrameHead(&FrameHead{MsgID: 3, BodySize: MaxBodySize + 1}),
			wantErr:     true,
			errContains: "body too large",
		},
		{
			name:        "buffer too small",
			buf:         []byte{1, 2, 3},
			wantErr:     true,
			errContains: "buff too small",
		},
		{
			name:        "empty buffer",
			buf:         []byte{},
			wantErr:     true,
			errContains: "buff too small",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeFrameHead(tt.buf)

			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeFrameHead() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr && err != nil {
				if tt.errContains != "" && !bytes.Contains([]byte(err.Error()), []byte(tt.errContains)) {
					t.Errorf("DecodeFrameHead() error = %v, want error containing %v", err, tt.errContains)
				}
				return
			}

			if got.MsgID != tt.wantHdr.MsgID {
				t.Errorf("DecodeFrameHead() MsgID = %v, want %v", got.MsgID, tt.wantHdr.MsgID)
			}
			if got.BodySize != tt.wantHdr.BodySize {
				t.Errorf("DecodeFrameHead() BodySize = %v, want %v", got.BodySize, tt.wantHdr.BodySize)
			}
		})
	}
}

func TestEncodeFrame(t *testing.T) {
	body := []byte{0xAA, 0xBB, 0xCC}
	frame := EncodeFrame(Auth2Cli_PingReply, body)

	if len(frame) != FRAME_HEAD_SIZE+len(body) {
		t.Fatalf("EncodeFrame() length = %v, want %v", len(frame), FRAME_HEAD_SIZE+len(body))
	}

	hdr, err := DecodeFrameHead(frame[:FRAME_HEAD_SIZE])
	if err != nil {
		t.Fatalf("DecodeFrameHead() unexpected error = %v", err)
	}
	if hdr.MsgID != Auth2Cli_PingReply {
		t.Errorf("MsgID = %v, want %v", hdr.MsgID, Auth2Cli_PingReply)
	}
	if hdr.BodySize != uint32(len(body)) {
		t.Errorf("BodySize = %v, want %v", hdr.BodySize, len(body))
	}
	if !bytes.Equal(frame[FRAME_HEAD_SIZE:], body) {
		t.Errorf("body mismatch")
	}
}

func TestConnectHeaderRoundTrip(t *testing.T) {
	hdr := &ConnectHeader{BuildID: 912, BranchID: 1, ProductID: 42}
	for i := range hdr.Token {
		hdr.Token[i] = byte(i + 1)
	}

	encoded := EncodeConnectHeader(hdr)
	if len(encoded) != ConnectHeaderSize {
		t.Fatalf("EncodeConnectHeader() length = %v, want %v", len(encoded), ConnectHeaderSize)
	}

	decoded, err := DecodeConnectHeader(encoded)
	if err != nil {
		t.Fatalf("DecodeConnectHeader() unexpected error = %v", err)
	}
	if decoded.BuildID != hdr.BuildID || decoded.BranchID != hdr.BranchID || decoded.ProductID != hdr.ProductID {
		t.Errorf("field mismatch: got %+v, want %+v", decoded, hdr)
	}
	if decoded.Token != hdr.Token {
		t.Errorf("token mismatch: got %v, want %v", decoded.Token, hdr.Token)
	}
}

func TestDecodeConnectHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{name: "empty", buf: nil},
		{name: "undersized declared length", buf: []byte{4, 1, 2, 3}},
		{name: "truncated", buf: EncodeConnectHeader(&ConnectHeader{BuildID: 1})[:10]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeConnectHeader(tt.buf); err == nil {
				t.Error("DecodeConnectHeader() expected error, got nil")
			}
		})
	}
}

func TestMsgIDNames(t *testing.T) {
	if got := Cli2AuthName(Cli2Auth_AcctLoginRequest); got != "Cli2Auth_AcctLoginRequest" {
		t.Errorf("Cli2AuthName() = %v", got)
	}
	if got := Auth2CliName(Auth2Cli_KickedOff); got != "Auth2Cli_KickedOff" {
		t.Errorf("Auth2CliName() = %v", got)
	}
	if got := Cli2AuthName(0xFFFF); got != "Cli2Auth_Unknown" {
		t.Errorf("Cli2AuthName(unknown) = %v", got)
	}
	if got := Auth2CliName(0xFFFF); got != "Auth2Cli_Unknown" {
		t.Errorf("Auth2CliName(unknown) = %v", got)
	}
}

func TestMsgIDNameTablesComplete(t *testing.T) {
	// Every id below the table size must have a name; a gap means a new
	// message id was added without its name map entry.
	for id := uint32(0); id < uint32(len(cli2AuthNames)); id++ {
		if _, ok := cli2AuthNames[id]; !ok {
			t.Errorf("cli2AuthNames missing id %d", id)
		}
	}
	for id := uint32(0); id < uint32(len(auth2CliNames)); id++ {
		if _, ok := auth2CliNames[id]; !ok {
			t.Errorf("auth2CliNames missing id %d", id)
		}
	}
}
