package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chat-gateway/internal/services"
)

const genericFailure = "Something went wrong, please try again"

// CredentialStore is the slice of the user store the handler needs.
type CredentialStore interface {
	Create(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) error
}

// SessionStore mints and resolves ephemeral session tokens.
type SessionStore interface {
	Mint(ctx context.Context, username string) (string, error)
	Lookup(ctx context.Context, token string) (string, error)
}

// Handler dispatches parsed inbound frames. Chat frames fan out through
// the router; auth frames answer only the originating connection.
type Handler struct {
	router   *Router
	users    CredentialStore
	sessions SessionStore
}

func NewHandler(router *Router, users CredentialStore, sessions SessionStore) *Handler {
	return &Handler{router: router, users: users, sessions: sessions}
}

// Handle processes one inbound frame from clientID. Frames from one
// connection arrive here strictly in order, driven by its read pump.
func (h *Handler) Handle(ctx context.Context, clientID string, req *Request) {
	switch req.Type {
	case RequestTypeChat:
		h.handleChat(req)
	case RequestTypeLogin:
		h.handleLogin(ctx, clientID, req)
	case RequestTypeRegister:
		h.handleRegister(ctx, clientID, req)
	case RequestTypeLoginWithID:
		h.handleLoginWithID(ctx, clientID, req)
	}
}

// handleChat routes a chat message to its room, or to every connection
// when no room is given. Chat requires no session; see DESIGN.md.
func (h *Handler) handleChat(req *Request) {
	room := ""
	if req.Room != nil {
		room = *req.Room
	}
	h.router.DeliverToTopic(room, NewChatResponse(req.Message))
}

func (h *Handler) handleLogin(ctx context.Context, clientID string, req *Request) {
	err := h.users.Authenticate(ctx, req.Username, req.Password)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		h.router.DeliverToConnection(clientID, NewLoginFailure("User does not exist"))
		return
	case errors.Is(err, services.ErrIncorrectPassword):
		h.router.DeliverToConnection(clientID, NewLoginFailure("Incorrect password"))
		return
	case err != nil:
		slog.Error("Login lookup failed", "clientID", clientID, "username", req.Username, "error", err)
		h.router.DeliverToConnection(clientID, NewLoginFailure(genericFailure))
		return
	}

	token, err := h.sessions.Mint(ctx, req.Username)
	if err != nil {
		slog.Error("Session mint failed", "clientID", clientID, "username", req.Username, "error", err)
		h.router.DeliverToConnection(clientID, NewLoginFailure(genericFailure))
		return
	}

	h.router.DeliverToConnection(clientID, NewLoginSuccess(req.Username, token))
}

func (h *Handler) handleRegister(ctx context.Context, clientID string, req *Request) {
	if err := validateUsername(req.Username); err != nil {
		h.router.DeliverToConnection(clientID, NewRegisterFailure(err.Error()))
		return
	}
	if err := validatePassword(req.Password); err != nil {
		h.router.DeliverToConnection(clientID, NewRegisterFailure(err.Error()))
		return
	}

	err := h.users.Create(ctx, req.Username, req.Password)
	switch {
	case errors.Is(err, services.ErrUserExists):
		h.router.DeliverToConnection(clientID, NewRegisterFailure("User already exists"))
		return
	case err != nil:
		slog.Error("Register failed", "clientID", clientID, "username", req.Username, "error", err)
		h.router.DeliverToConnection(clientID, NewRegisterFailure(genericFailure))
		return
	}

	token, err := h.sessions.Mint(ctx, req.Username)
	if err != nil {
		slog.Error("Session mint failed", "clientID", clientID, "username", req.Username, "error", err)
		h.router.DeliverToConnection(clientID, NewRegisterFailure(genericFailure))
		return
	}

	h.router.DeliverToConnection(clientID, NewRegisterSuccess(req.Username, token))
}

func (h *Handler) handleLoginWithID(ctx context.Context, clientID string, req *Request) {
	username, err := h.sessions.Lookup(ctx, req.SessionID)
	switch {
	case errors.Is(err, services.ErrSessionInvalid):
		h.router.DeliverToConnection(clientID, NewLoginWithIDFailure("Session is invalid"))
		return
	case err != nil:
		slog.Error("Session lookup failed", "clientID", clientID, "error", err)
		h.router.DeliverToConnection(clientID, NewLoginWithIDFailure(genericFailure))
		return
	}

	h.router.DeliverToConnection(clientID, NewLoginWithIDSuccess(username))
}

const (
	usernameMinLen = 3
	usernameMaxLen = 20
	passwordMinLen = 8
	passwordMaxLen = 120
)

// validateUsername enforces the account naming rules before any store
// access: 3-20 characters, leading letter, then letters, digits, '_',
// '-' or '.'.
func validateUsername(username string) error {
	if len(username) < usernameMinLen {
		return fmt.Errorf("Username must be at least %d characters long", usernameMinLen)
	}
	if len(username) > usernameMaxLen {
		return fmt.Errorf("Username must be at most %d characters long", usernameMaxLen)
	}
	first := username[0]
	if !isLetter(first) {
		return errors.New("Username must start with a letter")
	}
	for i := 1; i < len(username); i++ {
		c := username[i]
		if !isLetter(c) && !isDigit(c) && c != '_' && c != '-' && c != '.' {
			return errors.New("Username may only contain letters, digits, '_', '-' and '.'")
		}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < passwordMinLen {
		return fmt.Errorf("Password must be at least %d characters long", passwordMinLen)
	}
	if len(password) > passwordMaxLen {
		return fmt.Errorf("Password must be at most %d characters long", passwordMaxLen)
	}
	return nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
