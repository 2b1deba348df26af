// Package server exposes nonogram play sessions over HTTP and WebSocket.
// Each connected client gets its own session; the engine itself lives in
// the session package and the server only translates messages.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nonogarden/go-nonogram/grid"
	"github.com/nonogarden/go-nonogram/puzzle"
	"github.com/nonogarden/go-nonogram/session"
)

// Server handles HTTP and WebSocket connections.
type Server struct {
	mu sync.RWMutex

	catalog *puzzle.Catalog
	store   session.Store

	clients map[*Client]bool

	upgrader websocket.Upgrader
}

// Client represents a connected player and their session.
type Client struct {
	ID       string
	Conn     *websocket.Conn
	Session  *session.Session
	sendChan chan []byte
}

// MessageType enumerates the wire protocol.
type MessageType string

const (
	MsgTypeJoin          MessageType = "join"
	MsgTypeState         MessageType = "state"
	MsgTypeFill          MessageType = "fill"
	MsgTypeStrokeBegin   MessageType = "stroke_begin"
	MsgTypeStrokeEnd     MessageType = "stroke_end"
	MsgTypeStrokeCancel  MessageType = "stroke_cancel"
	MsgTypeUndo          MessageType = "undo"
	MsgTypeRedo          MessageType = "redo"
	MsgTypeClearPencil   MessageType = "clear_pencil"
	MsgTypeConfirmPencil MessageType = "confirm_pencil"
	MsgTypeReset         MessageType = "reset"
	MsgTypeReveal        MessageType = "reveal"
	MsgTypeSelectColor   MessageType = "select_color"
	MsgTypeTogglePencil  MessageType = "toggle_pencil"
	MsgTypeError         MessageType = "error"
	MsgTypePing          MessageType = "ping"
	MsgTypePong          MessageType = "pong"
)

// Message is the wire envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// JoinPayload selects a puzzle by catalog index.
type JoinPayload struct {
	PuzzleIndex int `json:"puzzle_index"`
}

// FillPayload carries one fill request. Color and Certain override the
// session defaults when Explicit is set; drags send Continuation for every
// cell after the first.
type FillPayload struct {
	Row          int  `json:"row"`
	Col          int  `json:"col"`
	Explicit     bool `json:"explicit,omitempty"`
	Color        int  `json:"color,omitempty"`
	Certain      bool `json:"certain,omitempty"`
	Continuation bool `json:"continuation,omitempty"`
}

// SelectColorPayload selects the active palette color.
type SelectColorPayload struct {
	Color int `json:"color"`
}

// ErrorPayload reports a rejected request.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// New creates a server over the given catalog and store.
func New(catalog *puzzle.Catalog, store session.Store) *Server {
	return &Server{
		catalog: catalog,
		store:   store,
		clients: make(map[*Client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// SetCatalog swaps the catalog after a hot reload. Existing sessions keep
// playing their active puzzle; new joins see the new catalog.
func (s *Server) SetCatalog(c *puzzle.Catalog) {
	s.mu.Lock()
	s.catalog = c
	clients := make([]*Client, 0, len(s.clients))
	for cl := range s.clients {
		clients = append(clients, cl)
	}
	s.mu.Unlock()
	for _, cl := range clients {
		cl.Session.SetCatalog(c)
	}
}

// ServeHTTP routes requests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ws":
		s.handleWebSocket(w, r)
	case "/health":
		s.handleHealth(w, r)
	case "/api/puzzles":
		s.handlePuzzles(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	clients := len(s.clients)
	puzzles := s.catalog.Len()
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": clients,
		"puzzles": puzzles,
	})
}

// puzzleListing is one catalog entry in the browse API.
type puzzleListing struct {
	Index      int    `json:"index"`
	ID         string `json:"id"`
	Title      string `json:"title"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Colors     int    `json:"colors"`
	Difficulty string `json:"difficulty,omitempty"`
	Completed  bool   `json:"completed"`
}

func (s *Server) handlePuzzles(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	catalog := s.catalog
	s.mu.RUnlock()

	listings := make([]puzzleListing, 0, catalog.Len())
	for i, p := range catalog.Puzzles() {
		entry := puzzleListing{
			Index:      i,
			ID:         p.ID,
			Title:      p.Title,
			Width:      p.Width,
			Height:     p.Height,
			Colors:     p.Colors(),
			Difficulty: string(p.Difficulty),
		}
		if s.store != nil {
			done, err := s.store.PuzzleCompleted(r.Context(), p.ID)
			if err == nil {
				entry.Completed = done
			}
		}
		listings = append(listings, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listings)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	s.mu.RLock()
	catalog := s.catalog
	s.mu.RUnlock()

	client := &Client{
		ID:       uuid.New().String(),
		Conn:     conn,
		Session:  session.New(catalog, s.store),
		sendChan: make(chan []byte, 256),
	}

	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()

	log.Printf("Client %s connected", client.ID)

	go client.writePump()
	s.handleClient(client)
}

func (s *Server) handleClient(client *Client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, client)
		s.mu.Unlock()
		client.Conn.Close()
		close(client.sendChan)
		log.Printf("Client %s disconnected", client.ID)
	}()

	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, msgBytes, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Client %s read error: %v", client.ID, err)
			}
			break
		}
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg Message
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			s.sendError(client, "invalid_message", "Could not parse message")
			continue
		}
		s.handleMessage(client, &msg)
	}
}

func (s *Server) handleMessage(client *Client, msg *Message) {
	ctx := context.Background()

	switch msg.Type {
	case MsgTypeJoin:
		var p JoinPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError(client, "invalid_payload", fmt.Sprintf("Invalid join payload: %v", err))
			return
		}
		if err := client.Session.LoadPuzzle(ctx, p.PuzzleIndex); err != nil {
			s.sendError(client, "join_failed", err.Error())
			return
		}
		s.pushState(client)

	case MsgTypeFill:
		var p FillPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError(client, "invalid_payload", fmt.Sprintf("Invalid fill payload: %v", err))
			return
		}
		if p.Explicit {
			client.Session.FillCell(ctx, p.Row, p.Col, grid.ColorID(p.Color), p.Certain, p.Continuation)
		} else {
			client.Session.Fill(ctx, p.Row, p.Col)
		}
		s.pushState(client)

	case MsgTypeStrokeBegin:
		client.Session.BeginStroke()

	case MsgTypeStrokeEnd:
		client.Session.EndStroke()
		s.pushState(client)

	case MsgTypeStrokeCancel:
		client.Session.CancelStroke()
		s.pushState(client)

	case MsgTypeUndo:
		client.Session.PerformUndo(ctx)
		s.pushState(client)

	case MsgTypeRedo:
		client.Session.PerformRedo(ctx)
		s.pushState(client)

	case MsgTypeClearPencil:
		client.Session.ClearAllPencilMarks(ctx)
		s.pushState(client)

	case MsgTypeConfirmPencil:
		client.Session.ConfirmAllPencilMarks(ctx)
		s.pushState(client)

	case MsgTypeReset:
		client.Session.ResetPuzzle(ctx)
		s.pushState(client)

	case MsgTypeReveal:
		client.Session.RevealSolution(ctx)
		s.pushState(client)

	case MsgTypeSelectColor:
		var p SelectColorPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError(client, "invalid_payload", fmt.Sprintf("Invalid color payload: %v", err))
			return
		}
		client.Session.SelectColor(grid.ColorID(p.Color))
		s.pushState(client)

	case MsgTypeTogglePencil:
		client.Session.TogglePencilMode()
		s.pushState(client)

	case MsgTypePing:
		s.sendMessage(client, MsgTypePong, nil)

	default:
		s.sendError(client, "unknown_type", fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

// pushState sends the session view to the client.
func (s *Server) pushState(client *Client) {
	view := client.Session.Snapshot()
	if view == nil {
		return
	}
	s.sendMessage(client, MsgTypeState, view)
}

func (s *Server) sendMessage(client *Client, msgType MessageType, payload any) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Client %s: marshal %s payload: %v", client.ID, msgType, err)
			return
		}
		raw = data
	}
	msg := Message{Type: msgType, Payload: raw, Timestamp: time.Now().UnixMilli()}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.sendChan <- data:
	default:
		log.Printf("Client %s send buffer full, dropping %s", client.ID, msgType)
	}
}

func (s *Server) sendError(client *Client, code, message string) {
	s.sendMessage(client, MsgTypeError, ErrorPayload{Code: code, Message: message})
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.sendChan:
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
