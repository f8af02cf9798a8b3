// Package protocol defines the websocket frames exchanged with clients.
//
// Every frame is a JSON object {"event": <name>, "data": <payload>}.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Event names on the wire
const (
	EventRegister           = "register"
	EventNewMessage         = "new_message"
	EventRegistrationResult = "registration_result"
	EventDisconnectIdle     = "disconnect_idle"
	EventOnlineUsersUpdate  = "online_users_update"
)

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrUnknownEvent   = errors.New("unknown event")
)

// Inbound is implemented by events received from a connection
type Inbound interface {
	inbound()
}

// Register asks to claim Name for the connection
type Register struct {
	Name string
}

// NewMessage carries a chat line exactly as the client sent it
type NewMessage struct {
	Text   any
	Sender any
}

// Disconnect is raised by the transport when a connection ends; it never
// arrives as a frame
type Disconnect struct{}

func (Register) inbound()   {}
func (NewMessage) inbound() {}
func (Disconnect) inbound() {}

// Outbound is implemented by events sent to connections
type Outbound interface {
	Event() string
}

// RegistrationResult answers a Register
type RegistrationResult struct {
	Success bool `json:"success"`
}

// IdleDisconnectNotice precedes closing an idle connection
type IdleDisconnectNotice struct{}

// PresenceUpdate lists every online name in claim order
type PresenceUpdate struct {
	Names []string
}

// ChatEvent is a user or system chat line
type ChatEvent struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	System   bool   `json:"system"`
	Error    bool   `json:"error"`
}

func (RegistrationResult) Event() string   { return EventRegistrationResult }
func (IdleDisconnectNotice) Event() string { return EventDisconnectIdle }
func (PresenceUpdate) Event() string       { return EventOnlineUsersUpdate }
func (ChatEvent) Event() string            { return EventNewMessage }

type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Decode parses one client frame
func Decode(raw []byte) (Inbound, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedFrame)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedFrame)
	}

	event := root.Get("event")
	data := root.Get("data")
	switch event.String() {
	case EventRegister:
		if data.Type != gjson.String {
			return nil, fmt.Errorf("%w: register expects a string name", ErrMalformedFrame)
		}
		return Register{Name: data.Str}, nil
	case EventNewMessage:
		return NewMessage{
			Text:   data.Get("message").Value(),
			Sender: data.Get("username").Value(),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, event.String())
	}
}

// Encode serializes an outbound event into a frame
func Encode(ev Outbound) ([]byte, error) {
	f := frame{Event: ev.Event()}
	switch e := ev.(type) {
	case RegistrationResult, ChatEvent:
		f.Data = e
	case PresenceUpdate:
		names := e.Names
		if names == nil {
			names = []string{}
		}
		f.Data = names
	case IdleDisconnectNotice:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	return json.Marshal(f)
}
