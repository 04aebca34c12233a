// Package rooms implements multi-room group chat: a fixed room registry,
// per-connection user sessions, message moderation, bounded room history,
// private messages, and an assistant bot that answers triggered messages.
package rooms

// Room describes one chat room.
type Room struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// registry is the fixed set of available rooms.
var registry = []Room{
	{ID: "general", Name: "General SFU Discussion", Description: "Open discussion for all SFU topics"},
	{ID: "cmpt", Name: "Computing Science", Description: "CMPT courses, programming, and tech discussions"},
	{ID: "study", Name: "Study Groups", Description: "Find study partners and group sessions"},
	{ID: "clubs", Name: "Clubs & Activities", Description: "SFU clubs, events, and campus life"},
	{ID: "help", Name: "Academic Help", Description: "Get help with courses and assignments"},
}

// Registry returns the available rooms in display order.
func Registry() []Room {
	out := make([]Room, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the room with the given id.
func Lookup(id string) (Room, bool) {
	for _, room := range registry {
		if room.ID == id {
			return room, true
		}
	}
	return Room{}, false
}
