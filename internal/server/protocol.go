package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Inbound event names.
const (
	eventJoin           = "join"
	eventSendMessage    = "sendMessage"
	eventSendLocation   = "sendLocation"
	eventRoomsListQuery = "roomsListQuery"
	eventAck            = "ack"
)

// Errors raised by the connection layer before the controller is reached.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrRateLimited    = errors.New("rate limit exceeded")
)

const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeRateLimited    = "RATE_LIMITED"
)

var validate = validator.New()

// Request is one frame sent by a client.
type Request struct {
	Event string          `json:"event" validate:"required,oneof=join sendMessage sendLocation roomsListQuery"`
	Ack   *int64          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinData carries the join event. Empty fields are reported by the
// controller, not by validation.
type JoinData struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

type MessageData struct {
	Text string `json:"text"`
}

type LocationData struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// Frame is one event pushed to a client.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// AckFrame answers a request that carried an ack id.
type AckFrame struct {
	Event string      `json:"event"`
	Ack   int64       `json:"ack"`
	Error *FrameError `json:"error,omitempty"`
}

type FrameError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeRequest parses and validates raw. The returned request keeps its ack
// id whenever the JSON itself was readable, so the caller can still answer.
func decodeRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := validate.Struct(req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return req, nil
}

// decodeData fills dst from the data member of a request. Absent data leaves
// dst at its zero value.
func decodeData(data json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, dst); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

func encodeFrame(event string, payload any) ([]byte, error) {
	return json.Marshal(Frame{Event: event, Data: payload})
}

func encodeAck(id int64, err error) ([]byte, error) {
	return json.Marshal(AckFrame{Event: eventAck, Ack: id, Error: frameError(err)})
}

func frameError(err error) *FrameError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidRequest):
		return &FrameError{Code: CodeInvalidRequest, Message: "Invalid request."}
	case errors.Is(err, ErrRateLimited):
		return &FrameError{Code: CodeRateLimited, Message: "You are sending messages too fast!"}
	default:
		return &FrameError{Code: chat.Code(err), Message: chat.UserMessage(err)}
	}
}
