package hub

import "gameday/backend/internal/models"

// Client is the interface for one realtime session, whatever the transport.
// A session carries exactly two pieces of state: the room it last joined and
// the participant identity it joined as. Both are read and written only from
// the hub's Run goroutine.
type Client interface {
	// GetSessionID returns the connection-scoped session identifier.
	GetSessionID() string
	// GetUserID returns the participant id the session joined as, or ""
	// before the first join.
	GetUserID() string
	// GetUserName returns the display name the session joined as.
	GetUserName() string
	// SetIdentity records the identity resolved during a join.
	SetIdentity(id, name string)
	// GetRoomID returns the room the session last joined, or "".
	GetRoomID() string
	// SetRoomID assigns the session to a room.
	SetRoomID(string)

	// GetSendChannel returns the channel the hub delivers outbound events
	// on. It is a send-only channel.
	GetSendChannel() chan<- models.Event

	// Run starts the transport pumps handling incoming and outgoing events.
	Run()
	// Close shuts down the session's connection and channels.
	Close()
}
