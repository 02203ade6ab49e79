package hub

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Frame is the wire shape of every server-to-client message.
type Frame struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// command is what clients send: join/leave an event group, or ping.
type command struct {
	Action  string `json:"action"`
	EventID uint   `json:"eventId"`
}

// Notifier is the narrow surface mutation handlers broadcast through.
// Tests substitute a recorder; the web tier never sees the transport.
type Notifier interface {
	RequestAdded(eventID, requestID uint, requesterName string)
	RequestStatusUpdated(eventID, requestID uint, status string)
	VoteAdded(eventID, requestID uint, voteCount int64, userID uint)
	VoteRemoved(eventID, requestID uint, voteCount int64)
}

// Hub owns all realtime state: which connections exist and which event
// group each belongs to. Join, Leave, Disconnect and the broadcast
// methods are its only mutators; nothing else touches the registry.
type Hub struct {
	mu     sync.Mutex
	conns  map[string]*connection
	groups map[uint]map[string]struct{} // eventID -> member connection ids

	upgrader websocket.Upgrader
}

type connection struct {
	id       string
	username string
	ws       *websocket.Conn

	writeMu sync.Mutex // serializes frames; broadcasts and pong replies race otherwise

	// queryEventID is the eventId the client connected with (?eventId=N).
	// A departure announcement on abrupt disconnect is only owed for this
	// group; explicit leaves announce themselves.
	queryEventID uint

	events map[uint]struct{}
}

func New() *Hub {
	return &Hub{
		conns:  make(map[string]*connection),
		groups: make(map[uint]map[string]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS policy already allows any origin at the HTTP layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GroupName renders the broadcast scope for one event, "event-{id}".
func GroupName(eventID uint) string {
	return fmt.Sprintf("event-%d", eventID)
}

// ServeWS upgrades the request and runs the connection's read loop until
// the client goes away. Must be mounted behind RequireAuth so the
// username claim is present.
func (h *Hub) ServeWS(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	username, _ := c.Get("username")
	name, _ := username.(string)

	conn := &connection{
		id:       uuid.NewString(),
		username: name,
		ws:       ws,
		events:   make(map[uint]struct{}),
	}

	if raw := c.Query("eventId"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			conn.queryEventID = uint(id)
		}
	}

	h.mu.Lock()
	h.conns[conn.id] = conn
	h.mu.Unlock()
	connectedClients.Inc()

	if conn.queryEventID != 0 {
		h.Join(conn.id, conn.queryEventID)
	}

	h.readLoop(conn)
}

func (h *Hub) readLoop(conn *connection) {
	defer h.disconnect(conn)

	for {
		var cmd command
		if err := conn.ws.ReadJSON(&cmd); err != nil {
			return
		}
		switch cmd.Action {
		case "join":
			if cmd.EventID != 0 {
				h.Join(conn.id, cmd.EventID)
			}
		case "leave":
			if cmd.EventID != 0 {
				h.Leave(conn.id, cmd.EventID)
			}
		case "ping":
			// Liveness no-op: prove the channel is alive, change nothing.
			h.send(conn, Frame{Event: "pong"})
		default:
			slog.Warn("unknown hub action", "action", cmd.Action, "conn", conn.id)
		}
	}
}

// Join adds the connection to an event group and announces the arrival
// to the whole group.
func (h *Hub) Join(connID string, eventID uint) {
	h.mu.Lock()
	conn, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	conn.events[eventID] = struct{}{}
	if h.groups[eventID] == nil {
		h.groups[eventID] = make(map[string]struct{})
	}
	h.groups[eventID][connID] = struct{}{}
	h.mu.Unlock()

	h.broadcast(eventID, "userJoinedEvent", map[string]any{
		"eventId":  eventID,
		"username": conn.username,
	})
}

// Leave removes the connection from an event group and announces the
// departure. Leaving a group the connection never joined is a no-op.
func (h *Hub) Leave(connID string, eventID uint) {
	h.mu.Lock()
	conn, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, member := conn.events[eventID]; !member {
		h.mu.Unlock()
		return
	}
	delete(conn.events, eventID)
	delete(h.groups[eventID], connID)
	if len(h.groups[eventID]) == 0 {
		delete(h.groups, eventID)
	}
	h.mu.Unlock()

	h.broadcast(eventID, "userLeftEvent", map[string]any{
		"eventId":  eventID,
		"username": conn.username,
	})
}

func (h *Hub) disconnect(conn *connection) {
	conn.ws.Close()

	h.mu.Lock()
	joined := make([]uint, 0, len(conn.events))
	for id := range conn.events {
		joined = append(joined, id)
		delete(h.groups[id], conn.id)
		if len(h.groups[id]) == 0 {
			delete(h.groups, id)
		}
	}
	delete(h.conns, conn.id)
	h.mu.Unlock()
	connectedClients.Dec()

	// Departure is only announced for the group named in the connect
	// query string; action-joined groups were the client's own business.
	for _, id := range joined {
		if id == conn.queryEventID {
			h.broadcast(id, "userLeftEvent", map[string]any{
				"eventId":  id,
				"username": conn.username,
			})
		}
	}
}

// Members returns the connection count for an event group.
func (h *Hub) Members(eventID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[eventID])
}

// broadcast fans a frame out to every member of the event's group.
// Delivery failures are logged and swallowed: the mutation that triggered
// the frame is already committed, a dead socket must not undo it.
func (h *Hub) broadcast(eventID uint, event string, payload map[string]any) {
	h.mu.Lock()
	members := make([]*connection, 0, len(h.groups[eventID]))
	for id := range h.groups[eventID] {
		if conn, ok := h.conns[id]; ok {
			members = append(members, conn)
		}
	}
	h.mu.Unlock()

	frame := Frame{Event: event, Payload: payload}
	for _, conn := range members {
		h.send(conn, frame)
	}
	broadcastsTotal.WithLabelValues(event).Inc()
}

func (h *Hub) send(conn *connection, frame Frame) {
	conn.writeMu.Lock()
	defer conn.writeMu.Unlock()
	if err := conn.ws.WriteJSON(frame); err != nil {
		slog.Error("frame delivery failed",
			"conn", conn.id, "event", frame.Event, "error", err)
	}
}

// --- Notifier implementation ---

func (h *Hub) RequestAdded(eventID, requestID uint, requesterName string) {
	h.broadcast(eventID, "requestAdded", map[string]any{
		"eventId":       eventID,
		"requestId":     requestID,
		"requesterName": requesterName,
	})
}

func (h *Hub) RequestStatusUpdated(eventID, requestID uint, status string) {
	h.broadcast(eventID, "requestStatusUpdated", map[string]any{
		"eventId":   eventID,
		"requestId": requestID,
		"status":    status,
	})
}

func (h *Hub) VoteAdded(eventID, requestID uint, voteCount int64, userID uint) {
	h.broadcast(eventID, "voteAdded", map[string]any{
		"eventId":   eventID,
		"requestId": requestID,
		"voteCount": voteCount,
		"userId":    userID,
	})
}

func (h *Hub) VoteRemoved(eventID, requestID uint, voteCount int64) {
	h.broadcast(eventID, "voteRemoved", map[string]any{
		"eventId":   eventID,
		"requestId": requestID,
		"voteCount": voteCount,
	})
}
