package lobby

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Code is the stable response code sent to clients.
type Code int

const (
	CodeWaiting Code = iota
	CodeFound
	// CodeNotFound is part of the wire enum but no engine path emits it.
	CodeNotFound
	CodeDisconnected
	CodeStrangerLeft
	CodeMessagesSent
)

// Command tags accepted from clients.
const (
	CommandReady      = "ready"
	CommandDisconnect = "disconnect"
	CommandMessage    = "message"
)

const (
	infoWaiting      = "Looking for stranger"
	infoFound        = "Stranger found"
	infoDisconnected = "You disconnected"
	infoStrangerLeft = "Stranger left"
	infoMessagesSent = "Messages sent"
)

// Handshake is sent once to a client right after it connects.
type Handshake struct {
	ID SessionID `json:"id"`
}

// Command is an inbound client frame.
type Command struct {
	Command string  `json:"command" validate:"required,oneof=ready disconnect message"`
	ID      string  `json:"id" validate:"required"`
	Message *string `json:"message,omitempty"`
}

// WireMessage is one entry of a room's history as sent to clients.
type WireMessage struct {
	ID      SessionID `json:"id"`
	Message string    `json:"message"`
}

// Response is an outbound engine frame.
type Response struct {
	Info     string        `json:"info,omitempty"`
	Code     Code          `json:"code"`
	Messages []WireMessage `json:"messages,omitempty"`
}

var validate = validator.New()

// DecodeCommand parses and validates an inbound frame.
func DecodeCommand(payload []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return Command{}, malformed(err, "decode command")
	}
	if err := validate.Struct(cmd); err != nil {
		return Command{}, malformed(err, "validate command %q", cmd.Command)
	}
	return cmd, nil
}

func encode(v interface{}) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode frame")
	}
	return payload, nil
}

func waitingResponse() Response {
	return Response{Info: infoWaiting, Code: CodeWaiting}
}

func foundResponse() Response {
	return Response{Info: infoFound, Code: CodeFound}
}

func disconnectedResponse() Response {
	return Response{Info: infoDisconnected, Code: CodeDisconnected}
}

func strangerLeftResponse() Response {
	return Response{Info: infoStrangerLeft, Code: CodeStrangerLeft}
}

func messagesResponse(history []Message) Response {
	return Response{
		Info: infoMessagesSent,
		Code: CodeMessagesSent,
		Messages: lo.Map(history, func(m Message, _ int) WireMessage {
			return WireMessage{ID: m.Sender, Message: m.Text}
		}),
	}
}
