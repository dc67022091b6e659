package channel

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

// Frame is one raw inbound message.
type Frame struct {
	Data []byte
	At   time.Time
}

// Conn is one live connection. Frames delivers inbound messages in
// transport order. Closed delivers the terminal close reason at most
// once, nil meaning a clean shutdown. Close releases the underlying
// socket on every path and is safe to call more than once.
type Conn interface {
	Frames() <-chan Frame
	Closed() <-chan error
	Close() error
}

// Dialer opens live connections. Tests substitute a scripted one.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer connects with the x/net websocket client. The handshake
// requires an origin, which defaults to the http rendition of the target.
type WebsocketDialer struct {
	Origin string
}

func (d *WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	origin := d.Origin
	if origin == "" {
		origin = defaultOrigin(url)
	}
	cfg, err := websocket.NewConfig(url, origin)
	if err != nil {
		return nil, &ConnectionError{URL: url, Err: err}
	}
	type dialed struct {
		ws  *websocket.Conn
		err error
	}
	done := make(chan dialed, 1)
	go func() {
		ws, dialErr := websocket.DialConfig(cfg)
		done <- dialed{ws: ws, err: dialErr}
	}()
	select {
	case <-ctx.Done():
		// the handshake has no context hook, reap the socket when it
		// eventually returns
		go func() {
			if res := <-done; res.ws != nil {
				res.ws.Close()
			}
		}()
		return nil, &ConnectionError{URL: url, Err: ctx.Err()}
	case res := <-done:
		if res.err != nil {
			return nil, &ConnectionError{URL: url, Err: res.err}
		}
		return newWsConn(res.ws), nil
	}
}

func defaultOrigin(url string) string {
	switch {
	case strings.HasPrefix(url, "wss://"):
		return "https://" + strings.TrimPrefix(url, "wss://")
	case strings.HasPrefix(url, "ws://"):
		return "http://" + strings.TrimPrefix(url, "ws://")
	}
	return url
}

type wsConn struct {
	ws       *websocket.Conn
	frames   chan Frame
	closed   chan error
	done     chan struct{}
	once     sync.Once
	closeErr error
}

func newWsConn(ws *websocket.Conn) *wsConn {
	c := &wsConn{
		ws:     ws,
		frames: make(chan Frame),
		closed: make(chan error, 1),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *wsConn) Frames() <-chan Frame { return c.frames }

func (c *wsConn) Closed() <-chan error { return c.closed }

func (c *wsConn) Close() error {
	c.once.Do(func() {
		close(c.done)
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

func (c *wsConn) readLoop() {
	for {
		var data []byte
		if err := websocket.Message.Receive(c.ws, &data); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				err = nil
			}
			select {
			case c.closed <- err:
			case <-c.done:
			}
			return
		}
		select {
		case c.frames <- Frame{Data: data, At: time.Now()}:
		case <-c.done:
			return
		}
	}
}
