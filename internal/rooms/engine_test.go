package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/manmad-web/sfubot/internal/errors"
	"github.com/manmad-web/sfubot/internal/genai"
	"github.com/manmad-web/sfubot/internal/logger"
)

type fakeClient struct {
	mu     sync.Mutex
	events []any
}

func (f *fakeClient) Send(event any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeClient) all() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeClient) lastError() (ErrorEvent, bool) {
	for _, ev := range f.all() {
		if e, ok := ev.(ErrorEvent); ok {
			return e, true
		}
	}
	return ErrorEvent{}, false
}

func (f *fakeClient) groupMessages() []Message {
	var out []Message
	for _, ev := range f.all() {
		if m, ok := ev.(Message); ok {
			out = append(out, m)
		}
	}
	return out
}

type fakeCompleter struct {
	answer string
	err    error
}

func (f *fakeCompleter) Complete(_ context.Context, _ genai.Request) (string, error) {
	return f.answer, f.err
}

func (f *fakeCompleter) Provider() genai.Provider { return genai.ProviderGemini }
func (f *fakeCompleter) Close() error             { return nil }

func newTestEngine(completer genai.Completer) *Engine {
	return NewEngine(completer, 0, logger.New("error"), nil)
}

func registeredClient(t *testing.T, e *Engine, username string) *fakeClient {
	t.Helper()
	c := &fakeClient{}
	e.SetUsername(c, username)
	events := c.all()
	require.NotEmpty(t, events)
	_, ok := events[len(events)-1].(UsernameSetEvent)
	require.True(t, ok, "expected username_set, got %T", events[len(events)-1])
	return c
}

func TestSetUsername(t *testing.T) {
	e := newTestEngine(nil)
	c := &fakeClient{}

	e.SetUsername(c, `Al<ice>`)

	events := c.all()
	require.Len(t, events, 1)
	set, ok := events[0].(UsernameSetEvent)
	require.True(t, ok)
	assert.Equal(t, "username_set", set.Type)
	assert.Equal(t, "Alice", set.Username)
	assert.True(t, strings.HasPrefix(set.UserID, "user_"))
}

func TestSetUsernameValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  string
	}{
		{"too short", "a", errUsernameLength},
		{"too long", strings.Repeat("a", 21), errUsernameLength},
		{"banned word", "spam_lord", errUsernameInappropriate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(nil)
			c := &fakeClient{}

			e.SetUsername(c, tt.username)

			errEvent, ok := c.lastError()
			require.True(t, ok)
			assert.Equal(t, tt.wantErr, errEvent.Message)
		})
	}
}

func TestValidateUsernameErrorType(t *testing.T) {
	var verr *apperrors.ValidationError
	require.True(t, errors.As(validateUsername("a"), &verr))
	assert.Equal(t, "username", verr.Field)
	assert.Equal(t, errUsernameLength, verr.Message)

	assert.NoError(t, validateUsername("alice"))
}

func TestSendErrorReportsUserMessage(t *testing.T) {
	e := newTestEngine(nil)
	c := &fakeClient{}

	e.sendError(c, apperrors.Wrap("rooms", "join", apperrors.ErrNotFound, errRoomNotFound))
	e.sendError(c, apperrors.NewValidationError("username", errUsernameLength))

	events := c.all()
	require.Len(t, events, 2)
	assert.Equal(t, errRoomNotFound, events[0].(ErrorEvent).Message)
	assert.Equal(t, errUsernameLength, events[1].(ErrorEvent).Message)
}

func TestJoinRequiresUsername(t *testing.T) {
	e := newTestEngine(nil)
	c := &fakeClient{}

	e.Join(c, "general")

	errEvent, ok := c.lastError()
	require.True(t, ok)
	assert.Equal(t, errUsernameRequired, errEvent.Message)
}

func TestJoinUnknownRoom(t *testing.T) {
	e := newTestEngine(nil)
	c := registeredClient(t, e, "alice")

	e.Join(c, "nope")

	errEvent, ok := c.lastError()
	require.True(t, ok)
	assert.Equal(t, errRoomNotFound, errEvent.Message)
}

func TestJoinAnnouncesToOthersOnly(t *testing.T) {
	e := newTestEngine(nil)
	alice := registeredClient(t, e, "alice")
	bob := registeredClient(t, e, "bob")

	e.Join(alice, "general")
	e.Join(bob, "general")

	var joined *RoomJoinedEvent
	for _, ev := range bob.all() {
		if r, ok := ev.(RoomJoinedEvent); ok {
			joined = &r
		}
	}
	require.NotNil(t, joined)
	assert.Equal(t, "General SFU Discussion", joined.RoomName)

	// Alice sees bob arrive; bob gets no user_joined for himself.
	var aliceSawBob, bobSawSelf bool
	for _, ev := range alice.all() {
		if u, ok := ev.(UserJoinedEvent); ok && u.Username == "bob" {
			aliceSawBob = true
		}
	}
	for _, ev := range bob.all() {
		if u, ok := ev.(UserJoinedEvent); ok && u.Username == "bob" {
			bobSawSelf = true
		}
	}
	assert.True(t, aliceSawBob)
	assert.False(t, bobSawSelf)

	// Both got the updated member count.
	var counts []int
	for _, ev := range bob.all() {
		if s, ok := ev.(RoomStatsEvent); ok {
			counts = append(counts, s.UserCount)
		}
	}
	assert.Contains(t, counts, 2)
}

func TestJoinSwitchesRooms(t *testing.T) {
	e := newTestEngine(nil)
	alice := registeredClient(t, e, "alice")
	bob := registeredClient(t, e, "bob")
	e.Join(alice, "general")
	e.Join(bob, "general")

	e.Join(bob, "cmpt")

	var aliceSawLeave bool
	for _, ev := range alice.all() {
		if u, ok := ev.(UserLeftEvent); ok && u.Username == "bob" {
			aliceSawLeave = true
		}
	}
	assert.True(t, aliceSawLeave)

	stats := e.RoomsWithStats()
	byID := make(map[string]RoomStats)
	for _, s := range stats {
		byID[s.ID] = s
	}
	assert.Equal(t, 1, byID["general"].UserCount)
	assert.Equal(t, 1, byID["cmpt"].UserCount)
}

func TestLeaveRoom(t *testing.T) {
	e := newTestEngine(nil)
	alice := registeredClient(t, e, "alice")
	e.Join(alice, "general")

	e.Leave(alice, "general")

	var left bool
	for _, ev := range alice.all() {
		if l, ok := ev.(RoomLeftEvent); ok && l.RoomID == "general" {
			left = true
		}
	}
	assert.True(t, left)
}

func TestLeaveWrongRoomIgnored(t *testing.T) {
	e := newTestEngine(nil)
	alice := registeredClient(t, e, "alice")
	e.Join(alice, "general")
	before := len(alice.all())

	e.Leave(alice, "cmpt")

	assert.Len(t, alice.all(), before)
}

func TestGroupMessageRequiresMembership(t *testing.T) {
	e := newTestEngine(nil)
	alice := registeredClient(t, e, "alice")

	e.GroupMessage(alice, "general", "hi all")

	errEvent, ok := alice.lastError()
	require.True(t, ok)
	assert.Equal(t, errNotInRoom, errEvent.Message)
}

func TestGroupMessageModeration(t *testing.T) {
	e := newTestEngine(nil)
	alice := registeredClient(t, e, "alice")
	e.Join(alice, "general")

	e.GroupMessage(alice, "general", "this is spam content")

	errEvent, ok := alice.lastError()
	require.True(t, ok)
	assert.Equal(t, errMessageInappropriate, errEvent.Message)
	assert.Empty(t, alice.groupMessages())
}

func TestGroupMessageBroadcastAndSanitized(t *testing.T) {
	e := newTestEngine(nil)
	alice := registeredClient(t, e, "alice")
	bob := registeredClient(t, e, "bob")
	e.Join(alice, "general")
	e.Join(bob, "general")

	e.GroupMessage(alice, "general", "hello <b>everyone</b>")

	for _, c := range []*fakeClient{alice, bob} {
		msgs := c.groupMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "alice", msgs[0].Username)
		assert.Equal(t, "hello beveryone/b", msgs[0].Message)
		assert.True(t, strings.HasPrefix(msgs[0].MessageID, "msg_"))
		assert.NotZero(t, msgs[0].Timestamp)
	}
}

func TestJoinReplaysRecentMessages(t *testing.T) {
	e := newTestEngine(nil)
	alice := registeredClient(t, e, "alice")
	e.Join(alice, "general")
	for i := 0; i < 60; i++ {
		e.GroupMessage(alice, "general", fmt.Sprintf("note number %d", i))
	}

	bob := registeredClient(t, e, "bob")
	e.Join(bob, "general")

	var joined *RoomJoinedEvent
	for _, ev := range bob.all() {
		if r, ok := ev.(RoomJoinedEvent); ok {
			joined = &r
		}
	}
	require.NotNil(t, joined)
	require.Len(t, joined.RecentMessages, recentOnJoin)
	assert.Equal(t, "note number 59", joined.RecentMessages[len(joined.RecentMessages)-1].Message)
}

func TestRoomLogCapped(t *testing.T) {
	e := newTestEngine(nil)
	alice := registeredClient(t, e, "alice")
	e.Join(alice, "general")
	for i := 0; i < roomLogCap+5; i++ {
		e.GroupMessage(alice, "general", fmt.Sprintf("note number %d", i))
	}

	stats := e.RoomsWithStats()
	for _, s := range stats {
		if s.ID == "general" {
			assert.Equal(t, roomLogCap, s.MessageCount)
			assert.NotZero(t, s.RecentActivity)
		}
	}
}

func TestPrivateMessage(t *testing.T) {
	e := newTestEngine(nil)
	alice := registeredClient(t, e, "alice")
	bob := registeredClient(t, e, "bob")

	var bobID string
	for _, ev := range bob.all() {
		if s, ok := ev.(UsernameSetEvent); ok {
			bobID = s.UserID
		}
	}
	require.NotEmpty(t, bobID)

	e.PrivateMessage(alice, bobID, "meet at the <library>?")

	var delivered *PrivateMessageEvent
	for _, ev := range bob.all() {
		if p, ok := ev.(PrivateMessageEvent); ok {
			delivered = &p
		}
	}
	require.NotNil(t, delivered)
	assert.Equal(t, "alice", delivered.FromUsername)
	assert.Equal(t, "meet at the library?", delivered.Message)

	var confirmed bool
	for _, ev := range alice.all() {
		if s, ok := ev.(PrivateMessageSentEvent); ok && s.ToUserID == bobID {
			confirmed = true
		}
	}
	assert.True(t, confirmed)
}

func TestPrivateMessageOffline(t *testing.T) {
	e := newTestEngine(nil)
	alice := registeredClient(t, e, "alice")

	e.PrivateMessage(alice, "user_ghost", "anyone there")

	errEvent, ok := alice.lastError()
	require.True(t, ok)
	assert.Equal(t, errUserOffline, errEvent.Message)
}

func TestPrivateMessageRequiresSession(t *testing.T) {
	e := newTestEngine(nil)
	c := &fakeClient{}

	e.PrivateMessage(c, "user_x", "hello")

	errEvent, ok := c.lastError()
	require.True(t, ok)
	assert.Equal(t, errAuthRequired, errEvent.Message)
}

func TestDisconnectLeavesRoom(t *testing.T) {
	e := newTestEngine(nil)
	alice := registeredClient(t, e, "alice")
	bob := registeredClient(t, e, "bob")
	e.Join(alice, "general")
	e.Join(bob, "general")

	e.Disconnect(bob)

	var aliceSawLeave bool
	for _, ev := range alice.all() {
		if u, ok := ev.(UserLeftEvent); ok && u.Username == "bob" {
			aliceSawLeave = true
		}
	}
	assert.True(t, aliceSawLeave)
	assert.Equal(t, 1, e.UserCount())
}

func TestBotRepliesToTrigger(t *testing.T) {
	e := newTestEngine(&fakeCompleter{answer: "The add/drop deadline is in week two."})
	alice := registeredClient(t, e, "alice")
	e.Join(alice, "general")

	e.GroupMessage(alice, "general", "hey asksfu when is the add/drop deadline")

	assert.Eventually(t, func() bool {
		for _, msg := range alice.groupMessages() {
			if msg.IsBot {
				return msg.Username == botUsername &&
					msg.UserID == botUserID &&
					strings.HasPrefix(msg.Message, "@alice ")
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBotErrorFallbackText(t *testing.T) {
	e := newTestEngine(&fakeCompleter{err: errors.New("provider down")})
	alice := registeredClient(t, e, "alice")
	e.Join(alice, "general")

	e.GroupMessage(alice, "general", "@asksfu help me out")

	assert.Eventually(t, func() bool {
		for _, msg := range alice.groupMessages() {
			if msg.IsBot {
				return strings.Contains(msg.Message, botErrorReply)
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBotIgnoresUntriggeredMessages(t *testing.T) {
	e := newTestEngine(&fakeCompleter{answer: "unused"})
	alice := registeredClient(t, e, "alice")
	e.Join(alice, "general")

	e.GroupMessage(alice, "general", "just talking amongst ourselves")

	time.Sleep(50 * time.Millisecond)
	for _, msg := range alice.groupMessages() {
		assert.False(t, msg.IsBot)
	}
}

func TestRegistryLookup(t *testing.T) {
	rooms := Registry()
	assert.Len(t, rooms, 5)

	room, ok := Lookup("cmpt")
	require.True(t, ok)
	assert.Equal(t, "Computing Science", room.Name)

	_, ok = Lookup("unknown")
	assert.False(t, ok)
}
