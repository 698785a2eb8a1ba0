package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/diagrammer/backend-go/internal/diagram"
	"github.com/inamate/diagrammer/backend-go/internal/document"
)

// PlaygroundID names a shared scratch diagram that anyone may join. It starts
// from the sample diagram and is never saved.
const PlaygroundID = "playground"

const saveTimeout = 10 * time.Second

// DocLoader returns the stored record of a diagram.
type DocLoader func(ctx context.Context, diagramID string) (*document.Diagram, error)

// DocSaver stores the record of a diagram.
type DocSaver func(ctx context.Context, diagramID string, doc *document.Diagram) error

type Room struct {
	diagramID string
	clients   map[string]*Client // clientID -> client
	state     *DocumentState

	// Serializes apply and fan-out so every client sees operations in
	// server sequence order
	opMu sync.Mutex
}

func newRoom(diagramID string, state *DocumentState) *Room {
	return &Room{
		diagramID: diagramID,
		clients:   make(map[string]*Client),
		state:     state,
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // diagramID -> room
	register   chan *Client
	unregister chan *Client
	loader     DocLoader
	saver      DocSaver
	autosave   time.Duration
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a hub that loads rooms through loader and saves changed
// rooms through saver every autosave interval, when a room empties and when
// the hub stops.
func NewHub(loader DocLoader, saver DocSaver, autosave time.Duration) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		loader:     loader,
		saver:      saver,
		autosave:   autosave,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	ticker := time.NewTicker(h.autosave)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ticker.C:
			h.saveAll()
		case <-h.stop:
			h.saveAll()
			return
		}
	}
}

// Stop saves every changed room and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DiagramID]
	if !ok {
		state, err := h.loadState(client.DiagramID)
		if err != nil {
			h.mu.Unlock()
			slog.Error("load diagram failed", "diagram", client.DiagramID, "error", err)
			client.Send(newMessage(TypeError, ErrorPayload{Message: "could not load diagram"}))
			client.closeSend()
			return
		}
		room = newRoom(client.DiagramID, state)
		h.rooms[client.DiagramID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	welcome := newMessage(TypeWelcome, WelcomePayload{
		ClientID:  client.ClientID,
		UserID:    client.UserID,
		DiagramID: client.DiagramID,
	})
	client.Send(welcome)
	h.sendDocSync(room, client)

	slog.Info("client joined", "user", client.UserID, "diagram", client.DiagramID)
}

func (h *Hub) loadState(diagramID string) (*DocumentState, error) {
	if diagramID == PlaygroundID {
		return NewDocumentState(diagram.NewSample().Record())
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	doc, err := h.loader(ctx, diagramID)
	if err != nil {
		return nil, err
	}
	return NewDocumentState(doc)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DiagramID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.DiagramID)
	}
	h.mu.Unlock()

	if empty {
		h.saveRoom(room)
	}

	slog.Info("client left", "user", client.UserID, "diagram", client.DiagramID)
}

func (h *Hub) saveAll() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.RUnlock()

	for _, room := range rooms {
		h.saveRoom(room)
	}
}

func (h *Hub) saveRoom(room *Room) {
	if room.diagramID == PlaygroundID {
		return
	}
	doc, dirty := room.state.TakeDirty()
	if !dirty {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := h.saver(ctx, room.diagramID, doc); err != nil {
		room.state.MarkDirty()
		slog.Error("save diagram failed", "diagram", room.diagramID, "error", err)
		return
	}
	slog.Debug("diagram saved", "diagram", room.diagramID)
}

func (h *Hub) room(diagramID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[diagramID]
	return room, ok
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	case TypeDocSync:
		if room, ok := h.room(sender.DiagramID); ok {
			h.sendDocSync(room, sender)
		}
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		sender.Send(newMessage(TypeError, ErrorPayload{Message: "unknown message type: " + msg.Type}))
	}
}

func (h *Hub) sendDocSync(room *Room, client *Client) {
	doc, seq := room.state.Document()
	client.Send(newMessage(TypeDocSync, DocSyncPayload{Document: doc, ServerSeq: seq}))
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid operation payload", "error", err, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{Reason: "invalid payload"}))
		return
	}
	op := submit.Operation

	room, ok := h.room(sender.DiagramID)
	if !ok {
		slog.Debug("operation for closed room", "op", op.Type, "diagram", sender.DiagramID, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{
			OperationID: op.ID,
			Reason:      "diagram is not open",
		}))
		return
	}

	room.opMu.Lock()
	defer room.opMu.Unlock()

	res, err := room.state.ApplyOperation(&op)
	if err != nil {
		slog.Debug("operation rejected", "op", op.Type, "error", err, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
		}))
		return
	}

	ack := newMessage(TypeOpAck, OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       res.ServerSeq,
		ServerTimestamp: time.Now().UnixMilli(),
		ItemID:          res.ItemID,
		Angle:           res.Angle,
	})
	ack.Seq = res.ServerSeq
	sender.Send(ack)

	broadcast := newMessage(TypeOpBroadcast, OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: res.ServerSeq,
	})
	broadcast.Seq = res.ServerSeq
	broadcast.UserID = sender.UserID
	h.broadcastToRoom(room, broadcast, sender.ClientID)

	if len(res.Notices) > 0 {
		redraw := newMessage(TypeRedraw, RedrawPayload{Notices: res.Notices})
		redraw.Seq = res.ServerSeq
		h.broadcastToRoom(room, redraw, "")
	}
}

func (h *Hub) broadcastToRoom(room *Room, msg *Message, excludeClientID string) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
