package config

import "time"

const (
	// Room lifecycle
	RoomTTL       = 90 * time.Minute
	GameRoomGrace = 24 * time.Hour
	ReapInterval  = 60 * time.Second

	// The lobby is a singleton: fixed id, revived in place when expired,
	// protected from deletion.
	LobbyRoomID   = "global-lobby"
	LobbyRoomName = "Global Lobby"

	// Identity
	GuestName = "Guest"
	TokenTTL  = 72 * time.Hour
)
