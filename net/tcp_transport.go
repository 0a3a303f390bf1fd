package net

import (
	"context"
	"errors"
	"io"
	gonet "net"
	"sync"
	"time"

	"github.com/lcx/authlink/metrics"
	"github.com/lcx/authlink/wire"
)

func init() {
	RegisterFactory("tcp", func(cfg *TransportCfg, sink EventSink) Transport {
		return newTCPTransport(cfg, sink)
	})
}

type sendPkg struct {
	msgID uint32
	body  []byte
}

// TCPTransport is the primary transport: one TCP socket, one send
// goroutine draining a bounded channel, one receive goroutine reading
// frames and feeding the sink.
type TCPTransport struct {
	cfg  *TransportCfg
	sink EventSink

	conn       gonet.Conn
	remoteAddr string
	cancelCtx  context.Context
	cancel     context.CancelFunc
	sendCh     chan sendPkg
	closeOnce  sync.Once
	closedErr  error

	lastWriteTime time.Time
}

func newTCPTransport(cfg *TransportCfg, sink EventSink) *TCPTransport {
	cancelCtx, cancel := context.WithCancel(context.Background())
	return &TCPTransport{
		cfg:       cfg,
		sink:      sink,
		cancelCtx: cancelCtx,
		cancel:    cancel,
		sendCh:    make(chan sendPkg, cfg.SendChannelSize),
	}
}

// Dial Transport interface.
func (t *TCPTransport) Dial(ctx context.Context, addr string, hdr *wire.ConnectHeader) error {
	metrics.IncrCounterWithGroup("net", "dial_total", 1)

	dialCtx, cancel := context.WithTimeout(ctx, time.Duration(t.cfg.DialTimeoutMS)*time.Millisecond)
	defer cancel()

	var d gonet.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		metrics.IncrCounterWithDimGroup("net", "dial_error_total", 1, map[string]string{"error_type": "connect"})
		return errors.New("dial: " + err.Error())
	}

	if tc, ok := conn.(*gonet.TCPConn); ok {
		if err = tc.SetReadBuffer(t.cfg.MaxBufferSize); err != nil {
			_ = conn.Close()
			return errors.New("set read buffer: " + err.Error())
		}
		if err = tc.SetWriteBuffer(t.cfg.MaxBufferSize); err != nil {
			_ = conn.Close()
			return errors.New("set write buffer: " + err.Error())
		}
		_ = tc.SetNoDelay(true)
	}

	// The connect header goes out before any framed traffic.
	t.setWriteDeadline(conn)
	if _, err = conn.Write(wire.EncodeConnectHeader(hdr)); err != nil {
		_ = conn.Close()
		metrics.IncrCounterWithDimGroup("net", "dial_error_total", 1, map[string]string{"error_type": "connect_header"})
		return errors.New("write connect header: " + err.Error())
	}

	t.conn = conn
	t.remoteAddr = addr
	metrics.IncrCounterWithDimGroup("net", "dial_success_total", 1, map[string]string{"transport_type": "tcp"})

	go t.serveSend()
	go t.serveRecv()
	return nil
}

// Send Transport interface.
func (t *TCPTransport) Send(msgID uint32, body []byte) error {
	select {
	case t.sendCh <- sendPkg{msgID: msgID, body: body}:
		return nil
	default:
		metrics.IncrCounterWithGroup("net", "send_channel_full_total", 1)
		return errors.New("send channel is full")
	}
}

// Close Transport interface.
func (t *TCPTransport) Close() error {
	t.closeWith(nil)
	return nil
}

// RemoteAddr Transport interface.
func (t *TCPTransport) RemoteAddr() string {
	return t.remoteAddr
}

func (t *TCPTransport) closeWith(err error) {
	t.closeOnce.Do(func() {
		t.closedErr = err
		t.cancel()
		if t.conn != nil {
			_ = t.conn.Close()
		}
		metrics.IncrCounterWithGroup("net", "connection_close_total", 1)
		t.sink.OnClosed(err)
	})
}

func (t *TCPTransport) serveSend() {
	for {
		select {
		case <-t.cancelCtx.Done():
			return
		case pkg := <-t.sendCh:
			if err := t.send(pkg); err != nil {
				t.closeWith(err)
				return
			}
		}
	}
}

func (t *TCPTransport) send(pkg sendPkg) error {
	t.setWriteDeadline(t.conn)
	if _, err := t.conn.Write(wire.EncodeFrame(pkg.msgID, pkg.body)); err != nil {
		return errors.New("send frame fail: " + err.Error())
	}
	return nil
}

func (t *TCPTransport) serveRecv() {
	headBuf := make([]byte, wire.FRAME_HEAD_SIZE)
	bodyBuf := make([]byte, 0, 4096)

	for {
		select {
		case <-t.cancelCtx.Done():
			return
		default:
		}

		hdr, err := t.readFrameHead(headBuf)
		if err != nil {
			t.closeWith(err)
			return
		}

		if cap(bodyBuf) < int(hdr.BodySize) {
			bodyBuf = make([]byte, 0, hdr.BodySize)
		}
		body := bodyBuf[:hdr.BodySize]
		if _, err = io.ReadFull(t.conn, body); err != nil {
			t.closeWith(errors.New("read body fail: " + err.Error()))
			return
		}

		metrics.IncrCounterWithGroup("net", "frame_recv_total", 1)
		t.sink.OnFrame(hdr.MsgID, body)
	}
}

func (t *TCPTransport) readFrameHead(buf []byte) (*wire.FrameHead, error) {
	t.setReadDeadline(t.conn)
	if _, err := io.ReadFull(t.conn, buf); err != nil {
		return nil, errors.New("read frame head fail: " + err.Error())
	}
	hdr, err := wire.DecodeFrameHead(buf)
	if err != nil {
		return nil, err
	}
	if int(hdr.BodySize) > t.cfg.MaxBufferSize {
		return nil, errors.New("frame body exceeds buffer size")
	}
	return hdr, nil
}

func (t *TCPTransport) setReadDeadline(conn gonet.Conn) {
	if t.cfg.IdleTimeoutMS > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(time.Duration(t.cfg.IdleTimeoutMS) * time.Millisecond))
	}
}

func (t *TCPTransport) setWriteDeadline(conn gonet.Conn) {
	// timeout control, refer to the practice of trpc
	if t.cfg.IdleTimeoutMS > 0 {
		n := time.Now()
		if n.Sub(t.lastWriteTime) > 5*time.Second {
			t.lastWriteTime = n
			_ = conn.SetWriteDeadline(n.Add(time.Duration(t.cfg.IdleTimeoutMS) * time.Millisecond))
		}
	}
}
