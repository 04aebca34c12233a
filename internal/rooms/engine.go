package rooms

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/manmad-web/sfubot/internal/errors"
	"github.com/manmad-web/sfubot/internal/genai"
	"github.com/manmad-web/sfubot/internal/logger"
	"github.com/manmad-web/sfubot/internal/metrics"
)

// User-facing error messages for room operations.
const (
	errUsernameLength        = "Username must be between 2-20 characters"
	errUsernameInappropriate = "Username contains inappropriate content"
	errUsernameRequired      = "Please set a username first"
	errRoomNotFound          = "Room not found"
	errNotInRoom             = "Not in this room"
	errMessageInappropriate  = "Message contains inappropriate content"
	errAuthRequired          = "Authentication required"
	errUserOffline           = "User not found or offline"
)

// Assistant bot identity and behavior in group chats.
const (
	botUsername     = "AskSFU Bot"
	botUserID       = "asksfu-bot"
	botSystemPrompt = "You are AskSFU bot in a group chat. Give brief, helpful responses about SFU. Keep responses under 150 words."
	botMaxTokens    = 200
	botErrorReply   = "I'm having trouble processing that question right now."
	botReplyTimeout = 30 * time.Second
)

const (
	// roomLogCap bounds the per-room message log.
	roomLogCap = 100
	// recentOnJoin is how many logged messages a joining user receives.
	recentOnJoin = 50
)

// Client receives room events. Send must not block; implementations queue
// or drop.
type Client interface {
	Send(event any)
}

// Message is one group chat message, stored and broadcast verbatim.
type Message struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
	Username  string `json:"username"`
	UserID    string `json:"userId"`
	Message   string `json:"message"`
	RoomID    string `json:"roomId"`
	Timestamp int64  `json:"timestamp"`
	IsBot     bool   `json:"isBot,omitempty"`
}

// Room lifecycle and delivery events.
type (
	ErrorEvent struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}

	UsernameSetEvent struct {
		Type     string `json:"type"`
		UserID   string `json:"userId"`
		Username string `json:"username"`
	}

	RoomJoinedEvent struct {
		Type           string    `json:"type"`
		RoomID         string    `json:"roomId"`
		RoomName       string    `json:"roomName"`
		RecentMessages []Message `json:"recentMessages"`
	}

	RoomLeftEvent struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}

	UserJoinedEvent struct {
		Type      string `json:"type"`
		Username  string `json:"username"`
		Timestamp int64  `json:"timestamp"`
	}

	UserLeftEvent struct {
		Type      string `json:"type"`
		Username  string `json:"username"`
		Timestamp int64  `json:"timestamp"`
	}

	RoomStatsEvent struct {
		Type      string `json:"type"`
		UserCount int    `json:"userCount"`
	}

	PrivateMessageEvent struct {
		Type         string `json:"type"`
		MessageID    string `json:"messageId"`
		FromUsername string `json:"fromUsername"`
		FromUserID   string `json:"fromUserId"`
		Message      string `json:"message"`
		Timestamp    int64  `json:"timestamp"`
	}

	PrivateMessageSentEvent struct {
		Type      string `json:"type"`
		MessageID string `json:"messageId"`
		ToUserID  string `json:"toUserId"`
	}
)

// session tracks one connected user.
type session struct {
	userID   string
	username string
	room     string // empty when not in a room
}

// Engine coordinates sessions, rooms, moderation, and the assistant bot.
type Engine struct {
	mu       sync.Mutex
	sessions map[Client]*session
	members  map[string]map[Client]struct{}
	logs     map[string][]Message

	completer genai.Completer
	botDelay  time.Duration
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// NewEngine creates a room engine. The completer may be nil, which
// disables the assistant bot; metrics may be nil.
func NewEngine(completer genai.Completer, botDelay time.Duration, log *logger.Logger, m *metrics.Metrics) *Engine {
	e := &Engine{
		sessions:  make(map[Client]*session),
		members:   make(map[string]map[Client]struct{}),
		logs:      make(map[string][]Message),
		completer: completer,
		botDelay:  botDelay,
		log:       log.WithModule("rooms"),
		metrics:   m,
	}
	for _, room := range Registry() {
		e.members[room.ID] = make(map[Client]struct{})
		e.logs[room.ID] = nil
	}
	return e
}

// sendError reports a failed operation to the client using the
// user-facing message carried by the error.
func (e *Engine) sendError(c Client, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		c.Send(ErrorEvent{Type: "error", Message: verr.Message})
		return
	}
	c.Send(ErrorEvent{Type: "error", Message: apperrors.GetUserMessage(err)})
}

// validateUsername checks the raw username before any markup is stripped.
func validateUsername(username string) error {
	if len(username) < 2 || len(username) > maxUsernameLen {
		return apperrors.NewValidationError("username", errUsernameLength)
	}
	if IsInappropriate(username) {
		return apperrors.NewValidationError("username", errUsernameInappropriate)
	}
	return nil
}

// SetUsername registers the client under a validated username.
// Length is checked on the raw input; markup is stripped afterwards.
func (e *Engine) SetUsername(c Client, username string) {
	if err := validateUsername(username); err != nil {
		e.sendError(c, err)
		return
	}

	cleaned := SanitizeUsername(username)
	userID := "user_" + uuid.NewString()

	e.mu.Lock()
	e.sessions[c] = &session{userID: userID, username: cleaned}
	e.mu.Unlock()

	c.Send(UsernameSetEvent{Type: "username_set", UserID: userID, Username: cleaned})
}

// Join moves the client into the room, replaying recent messages to the
// joiner and announcing the arrival to everyone else.
func (e *Engine) Join(c Client, roomID string) {
	e.mu.Lock()
	sess, ok := e.sessions[c]
	if !ok {
		e.mu.Unlock()
		e.sendError(c, apperrors.Wrap("rooms", "join", apperrors.ErrInvalidInput, errUsernameRequired))
		return
	}
	room, found := Lookup(roomID)
	if !found {
		e.mu.Unlock()
		e.sendError(c, apperrors.Wrap("rooms", "join", apperrors.ErrNotFound, errRoomNotFound))
		return
	}

	if sess.room != "" {
		e.leaveLocked(c, sess, sess.room)
	}

	e.members[roomID][c] = struct{}{}
	sess.room = roomID

	recent := e.logs[roomID]
	if len(recent) > recentOnJoin {
		recent = recent[len(recent)-recentOnJoin:]
	}
	replay := make([]Message, len(recent))
	copy(replay, recent)

	e.broadcastLocked(roomID, UserJoinedEvent{
		Type:      "user_joined",
		Username:  sess.username,
		Timestamp: time.Now().UnixMilli(),
	}, c)
	e.broadcastLocked(roomID, RoomStatsEvent{Type: "room_stats", UserCount: len(e.members[roomID])}, nil)
	e.setRoomGauge(roomID, len(e.members[roomID]))
	e.mu.Unlock()

	c.Send(RoomJoinedEvent{
		Type:           "room_joined",
		RoomID:         roomID,
		RoomName:       room.Name,
		RecentMessages: replay,
	})
}

// Leave removes the client from the room. A mismatch between the claimed
// room and the actual one is ignored.
func (e *Engine) Leave(c Client, roomID string) {
	e.mu.Lock()
	sess, ok := e.sessions[c]
	if !ok || sess.room != roomID {
		e.mu.Unlock()
		return
	}
	e.leaveLocked(c, sess, roomID)
	e.mu.Unlock()

	c.Send(RoomLeftEvent{Type: "room_left", RoomID: roomID})
}

// leaveLocked removes the client from the room and notifies the remaining
// members. Caller holds the mutex.
func (e *Engine) leaveLocked(c Client, sess *session, roomID string) {
	delete(e.members[roomID], c)
	sess.room = ""

	e.broadcastLocked(roomID, UserLeftEvent{
		Type:      "user_left",
		Username:  sess.username,
		Timestamp: time.Now().UnixMilli(),
	}, nil)
	e.broadcastLocked(roomID, RoomStatsEvent{Type: "room_stats", UserCount: len(e.members[roomID])}, nil)
	e.setRoomGauge(roomID, len(e.members[roomID]))
}

// GroupMessage moderates, stores, and broadcasts a room message, then
// summons the assistant bot when the message triggers it.
func (e *Engine) GroupMessage(c Client, roomID, text string) {
	e.mu.Lock()
	sess, ok := e.sessions[c]
	if !ok || sess.room != roomID {
		e.mu.Unlock()
		e.sendError(c, apperrors.Wrap("rooms", "group_message", apperrors.ErrNotInRoom, errNotInRoom))
		return
	}
	if IsInappropriate(text) {
		e.mu.Unlock()
		e.sendError(c, apperrors.Wrap("rooms", "group_message", apperrors.ErrInvalidInput, errMessageInappropriate))
		e.countMessage(roomID, "rejected")
		return
	}

	msg := Message{
		Type:      "group_message",
		MessageID: "msg_" + uuid.NewString(),
		Username:  sess.username,
		UserID:    sess.userID,
		Message:   SanitizeMessage(text),
		RoomID:    roomID,
		Timestamp: time.Now().UnixMilli(),
	}
	e.appendLogLocked(roomID, msg)
	e.broadcastLocked(roomID, msg, nil)
	username := sess.username
	e.mu.Unlock()

	e.countMessage(roomID, "delivered")

	if e.completer != nil && ShouldBotRespond(text) {
		time.AfterFunc(e.botDelay, func() {
			e.botReply(roomID, text, username)
		})
	}
}

// PrivateMessage delivers a direct message to another online user.
func (e *Engine) PrivateMessage(c Client, targetUserID, text string) {
	e.mu.Lock()
	sess, ok := e.sessions[c]
	if !ok {
		e.mu.Unlock()
		e.sendError(c, apperrors.Wrap("rooms", "private_message", apperrors.ErrInvalidInput, errAuthRequired))
		return
	}

	var target Client
	for client, other := range e.sessions {
		if other.userID == targetUserID {
			target = client
			break
		}
	}
	e.mu.Unlock()

	if target == nil {
		e.sendError(c, apperrors.Wrap("rooms", "private_message", apperrors.ErrUserOffline, errUserOffline))
		return
	}

	msg := PrivateMessageEvent{
		Type:         "private_message",
		MessageID:    "msg_" + uuid.NewString(),
		FromUsername: sess.username,
		FromUserID:   sess.userID,
		Message:      SanitizeMessage(text),
		Timestamp:    time.Now().UnixMilli(),
	}
	target.Send(msg)
	c.Send(PrivateMessageSentEvent{Type: "private_message_sent", MessageID: msg.MessageID, ToUserID: targetUserID})
}

// Disconnect cleans up after a closed connection.
func (e *Engine) Disconnect(c Client) {
	e.mu.Lock()
	sess, ok := e.sessions[c]
	if ok && sess.room != "" {
		e.leaveLocked(c, sess, sess.room)
	}
	delete(e.sessions, c)
	e.mu.Unlock()
}

// botReply generates and posts the assistant's answer to a trigger.
func (e *Engine) botReply(roomID, trigger, triggerUsername string) {
	ctx, cancel := context.WithTimeout(context.Background(), botReplyTimeout)
	defer cancel()

	answer, err := e.completer.Complete(ctx, genai.Request{
		System:    botSystemPrompt,
		Prompt:    trigger,
		MaxTokens: botMaxTokens,
	})
	if err != nil {
		e.log.WithError(err).WithField("room", roomID).Warn("bot reply failed")
		answer = botErrorReply
	}

	msg := Message{
		Type:      "group_message",
		MessageID: "msg_" + uuid.NewString(),
		Username:  botUsername,
		UserID:    botUserID,
		Message:   "@" + triggerUsername + " " + answer,
		RoomID:    roomID,
		Timestamp: time.Now().UnixMilli(),
		IsBot:     true,
	}

	e.mu.Lock()
	e.appendLogLocked(roomID, msg)
	e.broadcastLocked(roomID, msg, nil)
	e.mu.Unlock()

	e.countMessage(roomID, "delivered")
}

// appendLogLocked stores a message, trimming the oldest beyond the cap.
func (e *Engine) appendLogLocked(roomID string, msg Message) {
	log := append(e.logs[roomID], msg)
	if len(log) > roomLogCap {
		log = log[len(log)-roomLogCap:]
	}
	e.logs[roomID] = log
}

// broadcastLocked sends the event to every room member except exclude.
func (e *Engine) broadcastLocked(roomID string, event any, exclude Client) {
	for member := range e.members[roomID] {
		if member != exclude {
			member.Send(event)
		}
	}
}

// RoomStats describes one room for the listing endpoints.
type RoomStats struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	UserCount      int    `json:"userCount"`
	RecentActivity int64  `json:"recentActivity"`
	MessageCount   int    `json:"messageCount"`
}

// RoomsWithStats returns every room with live membership and activity.
func (e *Engine) RoomsWithStats() []RoomStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]RoomStats, 0, len(registry))
	for _, room := range Registry() {
		stats := RoomStats{
			ID:           room.ID,
			Name:         room.Name,
			Description:  room.Description,
			UserCount:    len(e.members[room.ID]),
			MessageCount: len(e.logs[room.ID]),
		}
		if log := e.logs[room.ID]; len(log) > 0 {
			stats.RecentActivity = log[len(log)-1].Timestamp
		}
		out = append(out, stats)
	}
	return out
}

// UserCount returns the number of registered sessions.
func (e *Engine) UserCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func (e *Engine) setRoomGauge(roomID string, count int) {
	if e.metrics != nil {
		e.metrics.RoomUsers.WithLabelValues(roomID).Set(float64(count))
	}
}

func (e *Engine) countMessage(roomID, status string) {
	if e.metrics != nil {
		e.metrics.RoomMessagesTotal.WithLabelValues(roomID, status).Inc()
	}
}
