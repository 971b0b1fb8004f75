package models

import "time"

// Room is a live, time-bounded chat channel. Messages and the participant
// maps are owned by the registry; handlers only ever see snapshots.
type Room struct {
	// ID is the unique identifier of the room. It is either derived from the
	// display name plus a random suffix, pinned to a well-known value (the
	// lobby), or derived from an external game id.
	ID string `json:"id"`
	// Name is the display name shown in the room list.
	Name string `json:"name"`
	// CreatedAt is the timestamp when the room was created.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is the timestamp after which the room is considered expired.
	ExpiresAt time.Time `json:"expires_at"`

	// Messages is the append-only chat log, bounded by the room's lifetime.
	Messages []Message `json:"-"`
	// Participants is the current occupancy, mutated on join and leave.
	Participants map[string]Participant `json:"-"`
	// EverJoined grows monotonically and never shrinks. It is snapshotted
	// into the archive when the room expires.
	EverJoined map[string]Participant `json:"-"`
}

// Expired reports whether the room's expiry has passed at the given instant.
func (r *Room) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// ArchivedRoom is the retained summary of an expired room. It is created
// exactly once, when the room leaves the live set, and never mutated.
type ArchivedRoom struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	// ExpiredAt is the archival timestamp, not the room's scheduled expiry.
	ExpiredAt time.Time `json:"expired_at"`
	// ParticipantsEverJoined is a snapshot of the room's EverJoined values
	// taken at archival time.
	ParticipantsEverJoined []Participant `json:"participants_ever_joined"`
}

// RoomSummary is the room-list view.
type RoomSummary struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	ParticipantCount int       `json:"participant_count"`
}

// RoomDetail is the by-id view: a live room with its current occupancy, or
// an archived room with its historical participants.
type RoomDetail struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CreatedAt    time.Time     `json:"created_at"`
	ExpiresAt    *time.Time    `json:"expires_at,omitempty"`
	Archived     bool          `json:"archived"`
	ExpiredAt    *time.Time    `json:"expired_at,omitempty"`
	Participants []Participant `json:"participants"`
}

// Message is a single chat message. Immutable once appended; ordering is
// append order.
type Message struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
