package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	apperrors "github.com/manmad-web/sfubot/internal/errors"
	"github.com/manmad-web/sfubot/internal/logger"
	"github.com/manmad-web/sfubot/internal/metrics"
	"github.com/manmad-web/sfubot/internal/ratelimit"
	"github.com/manmad-web/sfubot/internal/rooms"
)

const defaultSessionID = "default"

// responder produces an assistant reply for one chat message.
type responder interface {
	Respond(ctx context.Context, sessionID, message string) string
}

// roomEngine is the group chat surface a connection talks to.
type roomEngine interface {
	SetUsername(c rooms.Client, username string)
	Join(c rooms.Client, roomID string)
	Leave(c rooms.Client, roomID string)
	GroupMessage(c rooms.Client, roomID, text string)
	PrivateMessage(c rooms.Client, targetUserID, text string)
	Disconnect(c rooms.Client)
}

// Handler upgrades HTTP requests to WebSocket connections and routes
// inbound events to the chat pipeline and the room engine.
type Handler struct {
	upgrader   websocket.Upgrader
	pipeline   responder
	engine     roomEngine
	streamer   *Streamer
	connBurst  float64
	connRefill float64
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewHandler builds the WebSocket handler. connBurst and connRefill
// configure the per-connection token bucket for chat traffic.
func NewHandler(pipeline responder, engine roomEngine, streamer *Streamer, connBurst, connRefill float64, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pipeline:   pipeline,
		engine:     engine,
		streamer:   streamer,
		connBurst:  connBurst,
		connRefill: connRefill,
		log:        log.WithModule("ws"),
		metrics:    m,
	}
}

// Serve handles GET /ws.
func (h *Handler) Serve(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	if h.metrics != nil {
		h.metrics.ActiveConnections.Inc()
	}

	conn := newConn(ws, ratelimit.New(h.connBurst, h.connRefill), h.log)
	go conn.writePump()

	conn.Send(h.roomsList())

	conn.readPump(h.dispatch, func(c *Conn) {
		h.engine.Disconnect(c)
		if h.metrics != nil {
			h.metrics.ActiveConnections.Dec()
		}
	})
}

func (h *Handler) roomsList() RoomsListEvent {
	list := make(map[string]RoomInfo)
	for _, r := range rooms.Registry() {
		list[r.ID] = RoomInfo{Name: r.Name, Description: r.Description}
	}
	return RoomsListEvent{Type: "rooms_list", Rooms: list}
}

func (h *Handler) dispatch(conn *Conn, data []byte) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		conn.Send(ErrorEvent{Type: "error", Message: "Invalid message format"})
		return
	}

	switch msg.Type {
	case TypeChat, TypeGroupMessage, TypePrivateMessage:
		if err := conn.allowMessage(); err != nil {
			conn.Send(ErrorEvent{Type: "error", Message: apperrors.GetUserMessage(err)})
			return
		}
	}

	switch msg.Type {
	case TypeChat:
		go h.handleChat(conn, msg)
	case TypeSetUsername:
		h.engine.SetUsername(conn, msg.Username)
	case TypeJoinRoom:
		h.engine.Join(conn, msg.RoomID)
	case TypeLeaveRoom:
		h.engine.Leave(conn, msg.RoomID)
	case TypeGroupMessage:
		h.engine.GroupMessage(conn, msg.RoomID, msg.Message)
	case TypePrivateMessage:
		h.engine.PrivateMessage(conn, msg.TargetUserID, msg.Message)
	default:
		conn.Send(ErrorEvent{Type: "error", Message: "Unknown message type"})
	}
}

// handleChat runs the assistant pipeline for one message and streams the
// reply back. Runs on its own goroutine so a slow reply does not block
// the read loop.
func (h *Handler) handleChat(conn *Conn, msg Inbound) {
	conn.Send(TypingEvent{Type: "typing", IsTyping: true})

	sessionID := msg.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	response := h.pipeline.Respond(context.Background(), sessionID, msg.Message)
	h.streamer.Stream(context.Background(), conn, response)
}
