package ipc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Engine.IO packet types (first byte of every websocket frame).
const (
	engineOpen    = '0'
	engineClose   = '1'
	enginePing    = '2'
	enginePong    = '3'
	engineMessage = '4'
)

// Socket.IO packet types (second byte of an Engine.IO message).
const (
	socketConnect      = '0'
	socketDisconnect   = '1'
	socketEvent        = '2'
	socketConnectError = '4'
)

// errBadFrame marks a frame that could not be decoded. The session survives it.
var errBadFrame = errors.New("malformed frame")

// Envelope is one Socket.IO event: a name plus positional arguments.
// Args are kept raw so handlers can decode each into its concrete type.
type Envelope struct {
	Event string
	Args  []json.RawMessage
}

func NewEnvelope(event string, args ...any) (Envelope, error) {
	env := Envelope{Event: event, Args: make([]json.RawMessage, 0, len(args))}
	for i, a := range args {
		raw, err := json.Marshal(a)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshal %s arg %d: %w", event, i, err)
		}
		env.Args = append(env.Args, raw)
	}
	return env, nil
}

// Arg decodes argument i into v. A missing argument is an error.
func (e Envelope) Arg(i int, v any) error {
	if i >= len(e.Args) {
		return fmt.Errorf("%s: missing argument %d", e.Event, i)
	}
	if err := json.Unmarshal(e.Args[i], v); err != nil {
		return fmt.Errorf("%s: decode argument %d: %w", e.Event, i, err)
	}
	return nil
}

// handshake is the payload of the Engine.IO open packet.
type handshake struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"` // milliseconds
	PingTimeout  int    `json:"pingTimeout"`  // milliseconds
}

// frame is a decoded websocket text frame.
type frame struct {
	engine  byte
	socket  byte // only for engineMessage
	payload []byte
}

func decodeFrame(b []byte) (frame, error) {
	if len(b) == 0 {
		return frame{}, fmt.Errorf("%w: empty", errBadFrame)
	}
	f := frame{engine: b[0], payload: b[1:]}
	if f.engine != engineMessage {
		return f, nil
	}
	if len(f.payload) == 0 {
		return frame{}, fmt.Errorf("%w: message without socket packet type", errBadFrame)
	}
	f.socket = f.payload[0]
	f.payload = stripNamespace(f.payload[1:])
	return f, nil
}

// stripNamespace drops a "/nsp," prefix. Only the main namespace is used.
func stripNamespace(b []byte) []byte {
	if len(b) == 0 || b[0] != '/' {
		return b
	}
	if i := bytes.IndexByte(b, ','); i >= 0 {
		return b[i+1:]
	}
	return nil
}

// EncodeEvent renders an event as an Engine.IO message frame.
func EncodeEvent(env Envelope) ([]byte, error) {
	parts := make([]json.RawMessage, 0, len(env.Args)+1)
	name, err := json.Marshal(env.Event)
	if err != nil {
		return nil, fmt.Errorf("marshal event name: %w", err)
	}
	parts = append(parts, name)
	parts = append(parts, env.Args...)
	body, err := json.Marshal(parts)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", env.Event, err)
	}
	return append([]byte{engineMessage, socketEvent}, body...), nil
}

// DecodeEvent parses the payload of a Socket.IO event packet. An ack id
// between the packet type and the array is skipped.
func DecodeEvent(payload []byte) (Envelope, error) {
	i := 0
	for i < len(payload) && payload[i] >= '0' && payload[i] <= '9' {
		i++
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(payload[i:], &parts); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if len(parts) == 0 {
		return Envelope{}, fmt.Errorf("event without name")
	}
	var env Envelope
	if err := json.Unmarshal(parts[0], &env.Event); err != nil {
		return Envelope{}, fmt.Errorf("event name: %w", err)
	}
	env.Args = parts[1:]
	return env, nil
}
