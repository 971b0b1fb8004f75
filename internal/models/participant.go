package models

import "time"

// Participant is an identity inside a room: a registered user id or a
// generated guest id, plus a display name. It has no lifecycle of its own.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JoinRecord is one entry in a user's cross-room ledger. At most one open
// record (nil ExpiredAt) exists per room per user; rejoining a still-live
// room refreshes the open record instead of appending a duplicate.
type JoinRecord struct {
	RoomID   string    `json:"room_id"`
	RoomName string    `json:"room_name"`
	JoinedAt time.Time `json:"joined_at"`
	// ExpiredAt is stamped when the room is archived.
	ExpiredAt *time.Time `json:"expired_at,omitempty"`
}

// LedgerEntry is an enriched, deduplicated ledger row as served to clients:
// participants resolved from the live room or the archive, expiry resolved
// against the current clock.
type LedgerEntry struct {
	RoomID       string        `json:"room_id"`
	RoomName     string        `json:"room_name"`
	JoinedAt     time.Time     `json:"joined_at"`
	ExpiredAt    *time.Time    `json:"expired_at,omitempty"`
	Participants []Participant `json:"participants"`
}
