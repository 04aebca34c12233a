// Package ws provides the WebSocket boundary: connection lifecycle with
// ping/pong keepalive, inbound event dispatch, and word-by-word response
// streaming.
package ws

// Inbound is the envelope for every client-to-server event. Fields beyond
// Type are populated depending on the event.
type Inbound struct {
	Type         string `json:"type"`
	Message      string `json:"message,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
	Username     string `json:"username,omitempty"`
	RoomID       string `json:"roomId,omitempty"`
	TargetUserID string `json:"targetUserId,omitempty"`
}

// Inbound event types.
const (
	TypeChat           = "chat"
	TypeSetUsername    = "set_username"
	TypeJoinRoom       = "join_room"
	TypeLeaveRoom      = "leave_room"
	TypeGroupMessage   = "group_message"
	TypePrivateMessage = "private_message"
)

// RoomInfo describes one room in the rooms_list handshake.
type RoomInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoomsListEvent is sent once when a connection opens.
type RoomsListEvent struct {
	Type  string              `json:"type"`
	Rooms map[string]RoomInfo `json:"rooms"`
}

// TypingEvent toggles the assistant typing indicator.
type TypingEvent struct {
	Type     string `json:"type"`
	IsTyping bool   `json:"isTyping"`
}

// StreamEvent carries one cumulative partial of a streamed reply.
type StreamEvent struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	IsComplete bool   `json:"isComplete"`
}

// MessageEvent carries the final complete reply.
type MessageEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ErrorEvent reports a protocol-level failure.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
