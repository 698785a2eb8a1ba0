package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// AccessChecker reports whether a user may open a diagram.
type AccessChecker interface {
	Authorize(ctx context.Context, diagramID, userID string) error
}

// Handler upgrades /ws/diagrams/{diagramId}?token= requests and attaches the
// socket to the hub.
type Handler struct {
	hub            *Hub
	tokens         TokenValidator
	access         AccessChecker
	originPatterns []string
}

func NewHandler(hub *Hub, tokens TokenValidator, access AccessChecker, originPatterns []string) *Handler {
	return &Handler{hub: hub, tokens: tokens, access: access, originPatterns: originPatterns}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	diagramID := mux.Vars(r)["diagramId"]

	var userID string
	if diagramID == PlaygroundID {
		userID = "anon-" + uuid.New().String()[:8]
	} else {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		var err error
		userID, err = h.tokens.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if err := h.access.Authorize(r.Context(), diagramID, userID); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, userID, diagramID, uuid.New().String())
	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
