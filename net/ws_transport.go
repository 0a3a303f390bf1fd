package net

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lcx/authlink/metrics"
	"github.com/lcx/authlink/wire"
)

func init() {
	RegisterFactory("websocket", func(cfg *TransportCfg, sink EventSink) Transport {
		return newWSTransport(cfg, sink)
	})
}

// WSTransport carries the auth protocol over websocket binary messages,
// for deployments where raw TCP is blocked. Each websocket message holds
// exactly one frame, prehead included, so both transports share one
// framing contract.
type WSTransport struct {
	cfg  *TransportCfg
	sink EventSink

	conn       *websocket.Conn
	remoteAddr string
	cancelCtx  context.Context
	cancel     context.CancelFunc
	sendCh     chan sendPkg
	closeOnce  sync.Once
}

func newWSTransport(cfg *TransportCfg, sink EventSink) *WSTransport {
	cancelCtx, cancel := context.WithCancel(context.Background())
	return &WSTransport{
		cfg:       cfg,
		sink:      sink,
		cancelCtx: cancelCtx,
		cancel:    cancel,
		sendCh:    make(chan sendPkg, cfg.SendChannelSize),
	}
}

// Dial Transport interface. addr is a ws:// or wss:// URL.
func (t *WSTransport) Dial(ctx context.Context, addr string, hdr *wire.ConnectHeader) error {
	metrics.IncrCounterWithGroup("net", "dial_total", 1)

	dialCtx, cancel := context.WithTimeout(ctx, time.Duration(t.cfg.DialTimeoutMS)*time.Millisecond)
	defer cancel()

	dialer := websocket.Dialer{
		ReadBufferSize:  t.cfg.MaxBufferSize,
		WriteBufferSize: t.cfg.MaxBufferSize,
	}
	conn, _, err := dialer.DialContext(dialCtx, addr, nil)
	if err != nil {
		metrics.IncrCounterWithDimGroup("net", "dial_error_total", 1, map[string]string{"error_type": "connect"})
		return errors.New("ws dial: " + err.Error())
	}
	conn.SetReadLimit(int64(t.cfg.MaxBufferSize))

	t.setWriteDeadline(conn)
	if err = conn.WriteMessage(websocket.BinaryMessage, wire.EncodeConnectHeader(hdr)); err != nil {
		_ = conn.Close()
		metrics.IncrCounterWithDimGroup("net", "dial_error_total", 1, map[string]string{"error_type": "connect_header"})
		return errors.New("ws write connect header: " + err.Error())
	}

	t.conn = conn
	t.remoteAddr = addr
	metrics.IncrCounterWithDimGroup("net", "dial_success_total", 1, map[string]string{"transport_type": "websocket"})

	go t.serveSend()
	go t.serveRecv()
	return nil
}

// Send Transport interface.
func (t *WSTransport) Send(msgID uint32, body []byte) error {
	select {
	case t.sendCh <- sendPkg{msgID: msgID, body: body}:
		return nil
	default:
		metrics.IncrCounterWithGroup("net", "send_channel_full_total", 1)
		return errors.New("send channel is full")
	}
}

// Close Transport interface.
func (t *WSTransport) Close() error {
	t.closeWith(nil)
	return nil
}

// RemoteAddr Transport interface.
func (t *WSTransport) RemoteAddr() string {
	return t.remoteAddr
}

func (t *WSTransport) closeWith(err error) {
	t.closeOnce.Do(func() {
		t.cancel()
		if t.conn != nil {
			_ = t.conn.Close()
		}
		metrics.IncrCounterWithGroup("net", "connection_close_total", 1)
		t.sink.OnClosed(err)
	})
}

func (t *WSTransport) serveSend() {
	for {
		select {
		case <-t.cancelCtx.Done():
			return
		case pkg := <-t.sendCh:
			t.setWriteDeadline(t.conn)
			if err := t.conn.WriteMessage(websocket.BinaryMessage, wire.EncodeFrame(pkg.msgID, pkg.body)); err != nil {
				t.closeWith(errors.New("ws send frame fail: " + err.Error()))
				return
			}
		}
	}
}

func (t *WSTransport) serveRecv() {
	for {
		select {
		case <-t.cancelCtx.Done():
			return
		default:
		}

		if t.cfg.IdleTimeoutMS > 0 {
			_ = t.conn.SetReadDeadline(time.Now().Add(time.Duration(t.cfg.IdleTimeoutMS) * time.Millisecond))
		}
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			t.closeWith(errors.New("ws read fail: " + err.Error()))
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		hdr, err := wire.DecodeFrameHead(data)
		if err != nil {
			t.closeWith(err)
			return
		}
		if int(hdr.BodySize) != len(data)-wire.FRAME_HEAD_SIZE {
			t.closeWith(errors.New("ws frame: lens not match"))
			return
		}

		metrics.IncrCounterWithGroup("net", "frame_recv_total", 1)
		t.sink.OnFrame(hdr.MsgID, data[wire.FRAME_HEAD_SIZE:])
	}
}

func (t *WSTransport) setWriteDeadline(conn *websocket.Conn) {
	if t.cfg.IdleTimeoutMS > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(time.Duration(t.cfg.IdleTimeoutMS) * time.Millisecond))
	}
}
