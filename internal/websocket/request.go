package websocket

import (
	"encoding/json"
	"fmt"
)

// RequestType tags an inbound frame. The set is closed: ParseRequest
// rejects anything outside it, and Handler.Handle switches exhaustively
// over these four values.
type RequestType string

const (
	RequestTypeChat        RequestType = "message"
	RequestTypeLogin       RequestType = "login"
	RequestTypeRegister    RequestType = "register"
	RequestTypeLoginWithID RequestType = "loginWithID"
)

func (rt RequestType) IsValid() bool {
	switch rt {
	case RequestTypeChat, RequestTypeLogin, RequestTypeRegister, RequestTypeLoginWithID:
		return true
	default:
		return false
	}
}

// Request is one inbound frame. Which fields are meaningful depends on
// Type; the rest stay zero.
type Request struct {
	Type RequestType `json:"type"`

	// Chat
	Room    *string `json:"room,omitempty"`
	Message string  `json:"message,omitempty"`

	// Login / Register
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// LoginWithID
	SessionID string `json:"sessionID,omitempty"`
}

// ParseRequest decodes a JSON text frame into a Request. Malformed JSON
// and unknown tags are protocol errors; the caller logs and drops the
// frame without closing the connection.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("malformed request: %w", err)
	}
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("unknown request type %q", req.Type)
	}
	return &req, nil
}

// ResponseType tags an outbound frame.
type ResponseType string

const (
	ResponseTypeChat        ResponseType = "message"
	ResponseTypeLogin       ResponseType = "login"
	ResponseTypeRegister    ResponseType = "register"
	ResponseTypeLoginWithID ResponseType = "loginWithID"
)

// UserPayload is the user object embedded in auth responses.
type UserPayload struct {
	Username string `json:"username"`
}

// Response is one outbound frame. Optional fields marshal only when set.
type Response struct {
	Type      ResponseType `json:"type"`
	Message   *string      `json:"message,omitempty"`
	User      *UserPayload `json:"user,omitempty"`
	Status    *string      `json:"status,omitempty"`
	SessionID *string      `json:"sessionID,omitempty"`
}

func strptr(s string) *string { return &s }

// NewChatResponse wraps a chat message for fan-out.
func NewChatResponse(text string) Response {
	return Response{Type: ResponseTypeChat, Message: strptr(text)}
}

func NewLoginSuccess(username, sessionID string) Response {
	return Response{
		Type:      ResponseTypeLogin,
		User:      &UserPayload{Username: username},
		Status:    strptr("success"),
		SessionID: strptr(sessionID),
	}
}

func NewLoginFailure(message string) Response {
	return Response{Type: ResponseTypeLogin, Message: strptr(message)}
}

func NewRegisterSuccess(username, sessionID string) Response {
	return Response{
		Type:      ResponseTypeRegister,
		User:      &UserPayload{Username: username},
		SessionID: strptr(sessionID),
	}
}

func NewRegisterFailure(message string) Response {
	return Response{Type: ResponseTypeRegister, Message: strptr(message)}
}

func NewLoginWithIDSuccess(username string) Response {
	return Response{
		Type: ResponseTypeLoginWithID,
		User: &UserPayload{Username: username},
	}
}

func NewLoginWithIDFailure(message string) Response {
	return Response{Type: ResponseTypeLoginWithID, Message: strptr(message)}
}
