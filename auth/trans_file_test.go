package auth

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/wire"
)

// chunkedFileServer serves one file over the download exchange: the
// first chunk goes out on the request, each later chunk only after the
// previous chunk's ack.
type chunkedFileServer struct {
	srv       *fakeAuthServer
	data      []byte
	chunkSize int

	lock     sync.Mutex
	offset   int
	transID  uint32
	ackCount int
}

func serveChunkedFile(srv *fakeAuthServer, data []byte, chunkSize int) *chunkedFileServer {
	cfs := &chunkedFileServer{srv: srv, data: data, chunkSize: chunkSize}

	srv.on(wire.Cli2Auth_FileDownloadRequest, func(s *serverSession, body []byte) {
		r := codec.NewReader(body)
		cfs.lock.Lock()
		cfs.transID = r.Uint32()
		cfs.offset = 0
		cfs.lock.Unlock()
		cfs.sendNext(s)
	})
	srv.on(wire.Cli2Auth_FileDownloadChunkAck, func(s *serverSession, body []byte) {
		cfs.lock.Lock()
		cfs.ackCount++
		cfs.lock.Unlock()
		cfs.sendNext(s)
	})
	return cfs
}

func (cfs *chunkedFileServer) sendNext(s *serverSession) {
	cfs.lock.Lock()
	defer cfs.lock.Unlock()
	if cfs.offset >= len(cfs.data) {
		return
	}
	end := cfs.offset + cfs.chunkSize
	if end > len(cfs.data) {
		end = len(cfs.data)
	}
	chunk := codec.NewWriter(64 + end - cfs.offset)
	chunk.Uint32(cfs.transID).
		Uint32(0).
		Uint32(uint32(len(cfs.data))).
		Uint32(uint32(cfs.offset)).
		Buffer(cfs.data[cfs.offset:end])
	cfs.offset = end
	s.send(wire.Auth2Cli_FileDownloadChunk, chunk.Bytes())
}

func (cfs *chunkedFileServer) acks() int {
	cfs.lock.Lock()
	defer cfs.lock.Unlock()
	return cfs.ackCount
}

func TestDownloadFileChunked(t *testing.T) {
	srv := startFakeAuthServer(t)

	fileData := bytes.Repeat([]byte("0123456789abcdef"), 16) // 256 bytes
	cfs := serveChunkedFile(srv, fileData, 100)

	cl := newConnectedClient(t, srv, nil)

	var chunkLock sync.Mutex
	var offsets []uint32
	var assembled []byte

	done := make(chan Result, 1)
	var finalSize uint32
	var finalDigest uint64
	require.NoError(t, cl.DownloadFile("data.bin", xxhash.Sum64(fileData),
		func(offset uint32, data []byte) {
			chunkLock.Lock()
			defer chunkLock.Unlock()
			offsets = append(offsets, offset)
			assembled = append(assembled, data...)
		},
		func(res Result, code, size uint32, digest uint64) {
			finalSize = size
			finalDigest = digest
			done <- res
		}))

	select {
	case res := <-done:
		require.Equal(t, ResultSuccess, res)
	case <-time.After(5 * time.Second):
		t.Fatal("download never completed")
	}

	chunkLock.Lock()
	defer chunkLock.Unlock()
	assert.Equal(t, []uint32{0, 100, 200}, offsets)
	assert.Equal(t, fileData, assembled)
	assert.Equal(t, uint32(len(fileData)), finalSize)
	assert.Equal(t, xxhash.Sum64(fileData), finalDigest)

	// Every chunk was individually acknowledged.
	waitUntil(t, time.Second, func() bool { return cfs.acks() == 3 }, "expected 3 chunk acks")
}

func TestDownloadFileDigestMismatch(t *testing.T) {
	srv := startFakeAuthServer(t)
	serveChunkedFile(srv, []byte("not what the list advertised"), 64)

	cl := newConnectedClient(t, srv, nil)

	done := make(chan Result, 1)
	require.NoError(t, cl.DownloadFile("data.bin", 0xBAD0BAD0BAD0BAD0,
		nil,
		func(res Result, code, size uint32, digest uint64) {
			done <- res
		}))

	select {
	case res := <-done:
		assert.Equal(t, ResultProtocolError, res)
	case <-time.After(5 * time.Second):
		t.Fatal("download never completed")
	}
}

func TestFileList(t *testing.T) {
	srv := startFakeAuthServer(t)
	srv.on(wire.Cli2Auth_FileListRequest, func(s *serverSession, body []byte) {
		r := codec.NewReader(body)
		transID := r.Uint32()

		reply := codec.NewWriter(128)
		reply.Uint32(transID).
			Uint32(0).
			Uint32(2).
			String("core.pak").Uint32(1024).Uint64(0x1111).
			String("extra.pak").Uint32(2048).Uint64(0x2222)
		s.send(wire.Auth2Cli_FileListReply, reply.Bytes())
	})

	cl := newConnectedClient(t, srv, nil)

	done := make(chan []FileInfo, 1)
	require.NoError(t, cl.FileList("data", "pak", func(res Result, code uint32, files []FileInfo) {
		require.Equal(t, ResultSuccess, res)
		done <- files
	}))

	select {
	case files := <-done:
		require.Len(t, files, 2)
		assert.Equal(t, FileInfo{Name: "core.pak", Size: 1024, Digest: 0x1111}, files[0])
		assert.Equal(t, FileInfo{Name: "extra.pak", Size: 2048, Digest: 0x2222}, files[1])
	case <-time.After(3 * time.Second):
		t.Fatal("file list never completed")
	}
}
