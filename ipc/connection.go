package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned by ReadLoop when the server ends the session.
var ErrClosed = errors.New("server closed the session")

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	defaultPingWait  = 45 * time.Second
)

// Handler processes one received event. A returned error stops the read loop.
type Handler func(env Envelope) error

// Connection is one Socket.IO session with the game server. Handlers run
// on the ReadLoop goroutine one at a time; Emit may be called from any
// goroutine.
type Connection struct {
	conn     *websocket.Conn
	handlers map[string]Handler
	SID      string

	pingWait time.Duration
	writeMu  sync.Mutex
}

// Dial opens the websocket, completes the Engine.IO handshake and joins
// the main namespace. query is sent as-is alongside the transport
// parameters.
func Dial(ctx context.Context, server string, query url.Values) (*Connection, error) {
	u, err := socketURL(server, query)
	if err != nil {
		return nil, err
	}
	d := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := d.DialContext(ctx, u, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", server, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c := NewConnection(conn, nil)
	if err := c.handshake(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	slog.Info("connected", "server", server, "sid", c.SID)
	return c, nil
}

func NewConnection(conn *websocket.Conn, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		conn:     conn,
		handlers: handlers,
		pingWait: defaultPingWait,
	}
}

func socketURL(server string, query url.Values) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/socket.io/"
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// handshake reads the open packet, then requests and awaits the namespace
// connect acknowledgement.
func (c *Connection) handshake() error {
	_ = c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer c.conn.SetReadDeadline(time.Time{})

	f, err := c.readFrame()
	if err != nil {
		return fmt.Errorf("read open packet: %w", err)
	}
	if f.engine != engineOpen {
		return fmt.Errorf("expected open packet, got type %q", f.engine)
	}
	var hs handshake
	if err := json.Unmarshal(f.payload, &hs); err != nil {
		return fmt.Errorf("decode open packet: %w", err)
	}
	if hs.PingInterval > 0 {
		c.pingWait = time.Duration(hs.PingInterval+hs.PingTimeout) * time.Millisecond
	}

	if err := c.write([]byte{engineMessage, socketConnect}); err != nil {
		return fmt.Errorf("join namespace: %w", err)
	}
	for {
		f, err := c.readFrame()
		if err != nil {
			return fmt.Errorf("await namespace ack: %w", err)
		}
		switch {
		case f.engine == enginePing:
			if err := c.write([]byte{enginePong}); err != nil {
				return err
			}
		case f.engine == engineMessage && f.socket == socketConnect:
			var ack struct {
				SID string `json:"sid"`
			}
			_ = json.Unmarshal(f.payload, &ack)
			c.SID = ack.SID
			return nil
		case f.engine == engineMessage && f.socket == socketConnectError:
			return fmt.Errorf("namespace refused: %s", f.payload)
		default:
			slog.Debug("frame before namespace ack ignored", "type", string(f.engine))
		}
	}
}

func (c *Connection) RegisterHandler(event string, handler Handler) {
	c.handlers[event] = handler
}

// Emit sends one event with positional arguments.
func (c *Connection) Emit(event string, args ...any) error {
	env, err := NewEnvelope(event, args...)
	if err != nil {
		return err
	}
	b, err := EncodeEvent(env)
	if err != nil {
		return err
	}
	if err := c.write(b); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

func (c *Connection) write(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *Connection) readFrame() (frame, error) {
	for {
		mt, b, err := c.conn.ReadMessage()
		if err != nil {
			return frame{}, err
		}
		if mt != websocket.TextMessage {
			continue
		}
		return decodeFrame(b)
	}
}

// Close leaves the namespace and closes the socket.
func (c *Connection) Close() error {
	_ = c.write([]byte{engineMessage, socketDisconnect})
	return c.conn.Close()
}

// ReadLoop dispatches events until ctx is cancelled, the server closes the
// session, or a handler fails. It owns the conn lifetime so callers don't
// need to track cleanup. Cancellation returns nil.
func (c *Connection) ReadLoop(ctx context.Context) error {
	defer c.conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pingWait))
		f, err := c.readFrame()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, errBadFrame) {
				slog.Warn("dropping frame", "error", err)
				continue
			}
			return fmt.Errorf("read: %w", err)
		}

		switch f.engine {
		case enginePing:
			if err := c.write([]byte{enginePong}); err != nil {
				return fmt.Errorf("pong: %w", err)
			}
			continue
		case engineClose:
			return ErrClosed
		case engineMessage:
		default:
			continue
		}

		switch f.socket {
		case socketDisconnect:
			return ErrClosed
		case socketConnectError:
			return fmt.Errorf("connect error: %s", f.payload)
		case socketEvent:
		default:
			continue
		}

		env, err := DecodeEvent(f.payload)
		if err != nil {
			slog.Warn("undecodable event", "error", err)
			continue
		}
		handler, ok := c.handlers[env.Event]
		if !ok {
			slog.Warn("no handler for event", "event", env.Event)
			continue
		}
		if err := dispatch(handler, env); err != nil {
			return fmt.Errorf("handle %s: %w", env.Event, err)
		}
	}
}

// dispatch runs a handler and turns a panic into an error.
func dispatch(h Handler, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(env)
}
