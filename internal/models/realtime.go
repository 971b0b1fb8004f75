package models

// Realtime event types carried over the websocket channel and the Redis
// broker. One envelope covers both directions; unused fields are omitted.
const (
	EventJoinRoom     = "join_room"     // client -> server
	EventChatMessage  = "chat_message"  // both directions
	EventHistory      = "history"       // server -> joining client only
	EventParticipants = "participants"  // server -> room subscribers
	EventRoomExpired  = "room_expired"  // server -> client whose join hit an expired room
	EventRoomsUpdated = "rooms_updated" // server -> all clients, advisory
)

type Event struct {
	Type         string        `json:"type"`
	RoomID       string        `json:"room_id,omitempty"`
	User         *Participant  `json:"user,omitempty"`
	Text         string        `json:"text,omitempty"`
	Message      *Message      `json:"message,omitempty"`
	Messages     []Message     `json:"messages,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
}
