package auth

import (
	"github.com/cespare/xxhash/v2"

	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/wire"
)

// chunkAcksPerSecond paces the per-chunk acknowledgements. The server
// sends the next chunk only after the previous ack, so this leaky bucket
// is the download's effective flow control.
const chunkAcksPerSecond = 100

// FileInfo is one entry of a file-list reply. Digest is the xxhash of
// the file contents, checked after download.
type FileInfo struct {
	Name   string
	Size   uint32
	Digest uint64
}

// FileListCallback receives the directory listing.
type FileListCallback func(res Result, serverCode uint32, files []FileInfo)

// FileList lists the downloadable files under a directory, filtered by
// extension.
func (cl *Client) FileList(directory, ext string, cb FileListCallback) error {
	var code uint32
	var files []FileInfo

	t := cl.newTrans("file_list", wire.Cli2Auth_FileListRequest,
		func(w *codec.Writer) {
			w.String(directory).String(ext)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			count := r.Uint32()
			for i := uint32(0); i < count && r.Err() == nil; i++ {
				files = append(files, FileInfo{
					Name:   r.String(),
					Size:   r.Uint32(),
					Digest: r.Uint64(),
				})
			}
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, files)
		})
	return cl.sendTrans(t)
}

// ChunkCallback receives one downloaded chunk on the application turn,
// in offset order. The data slice is owned by the callback.
type ChunkCallback func(offset uint32, data []byte)

// DownloadCallback receives the download outcome. size and digest
// describe the received bytes; on success digest has been verified
// against expectedDigest when one was given.
type DownloadCallback func(res Result, serverCode uint32, size uint32, digest uint64)

// DownloadFile streams a file in server-paced chunks. Every chunk is
// acknowledged individually (the ack is the flow control) and posted to
// the application turn; the transaction completes only after the final
// chunk's offset plus size reaches the advertised file size AND every
// posted chunk has been consumed. Pass expectedDigest zero to skip
// integrity verification. The timeout budget restarts on every chunk, so
// only a stalled server times the download out, not a long transfer.
func (cl *Client) DownloadFile(filename string, expectedDigest uint64, chunkCb ChunkCallback, cb DownloadCallback) error {
	var code uint32
	var received uint32
	digest := xxhash.New()

	var t *trans
	t = cl.newTrans("file_download", wire.Cli2Auth_FileDownloadRequest,
		func(w *codec.Writer) {
			w.String(filename)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			fileSize := r.Uint32()
			chunkOffset := r.Uint32()
			chunkData := r.Buffer()
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			if code != 0 {
				return true, ResultRejected
			}

			_, _ = digest.Write(chunkData)
			received = chunkOffset + uint32(len(chunkData))
			cl.refreshDeadline(t)

			// Post the chunk as sub-work; the parent cannot complete
			// until the application has consumed every chunk.
			if chunkCb != nil {
				t.subPending.Add(1)
				data := chunkData
				offset := chunkOffset
				cl.enqueuePost(func() {
					chunkCb(offset, data)
					cl.subDone(t)
				})
			}

			cl.ackChunk(t.id, chunkOffset)

			if received < fileSize {
				return false, ResultSuccess
			}
			if expectedDigest != 0 && digest.Sum64() != expectedDigest {
				return true, ResultProtocolError
			}
			return true, ResultSuccess
		},
		func(res Result) {
			cb(res, code, received, digest.Sum64())
		})
	return cl.sendTrans(t)
}

// ackChunk acknowledges one received chunk, paced by the leaky bucket.
// Runs on the receive goroutine: blocking here is intentional, it is
// what slows the server down.
func (cl *Client) ackChunk(transID, chunkOffset uint32) {
	cl.chunkAckLimiter.Take()

	c := cl.registry.acquireActive()
	if c == nil {
		return
	}
	w := codec.NewWriter(8)
	w.Uint32(transID).Uint32(chunkOffset)
	if err := c.send(wire.Cli2Auth_FileDownloadChunkAck, w.Bytes()); err != nil {
		c.slog.Warn().Uint32("transID", transID).Err(err).Msg("chunk ack send failed")
	}
}
