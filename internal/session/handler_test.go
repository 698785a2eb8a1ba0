package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens map[string]string

func (f fakeTokens) ValidateToken(token string) (string, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

type ownerOnly string

func (o ownerOnly) Authorize(_ context.Context, _, userID string) error {
	if userID != string(o) {
		return errors.New("forbidden")
	}
	return nil
}

func newTestRouter(hub *Hub) *mux.Router {
	r := mux.NewRouter()
	tokens := fakeTokens{"tok-owner": "user_owner", "tok-other": "user_other"}
	r.Handle("/ws/diagrams/{diagramId}", NewHandler(hub, tokens, ownerOnly("user_owner"), nil))
	return r
}

func TestHandlerRejects(t *testing.T) {
	router := newTestRouter(NewHub(newMemoryDocs().load, nil, time.Hour))

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"bad token", "?token=nope", http.StatusUnauthorized},
		{"not the owner", "?token=tok-other", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/diagrams/diag_1"+tt.query, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandlerSocketRoundTrip(t *testing.T) {
	docs := newMemoryDocs()
	hub := NewHub(docs.load, docs.save, time.Hour)
	go hub.Run()
	defer hub.Stop()

	srv := httptest.NewServer(newTestRouter(hub))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/diagrams/diag_1?token=tok-owner"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	read := func() Message {
		t.Helper()
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	welcome := read()
	require.Equal(t, TypeWelcome, welcome.Type)
	var wp WelcomePayload
	require.NoError(t, json.Unmarshal(welcome.Payload, &wp))
	assert.Equal(t, "user_owner", wp.UserID)
	assert.Equal(t, "diag_1", wp.DiagramID)
	assert.Equal(t, TypeDocSync, read().Type)

	payload, err := json.Marshal(OperationSubmitPayload{Operation: Operation{
		ID:      "op1",
		Type:    OpDiagramUpdate,
		Changes: map[string]any{"gridType": "dots"},
	}})
	require.NoError(t, err)
	data, err := json.Marshal(Message{Type: TypeOpSubmit, Payload: payload})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))

	ack := read()
	require.Equal(t, TypeOpAck, ack.Type)
	assert.Equal(t, int64(1), ack.Seq)
	assert.Equal(t, TypeRedraw, read().Type)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))

	assert.Eventually(t, func() bool {
		saved, saves := docs.snapshot("diag_1")
		return saves == 1 && saved.Properties.GridType == "dots"
	}, 2*time.Second, 10*time.Millisecond)
}
