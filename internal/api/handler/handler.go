package handler

import (
	"gameday/backend/internal/games"
	"gameday/backend/internal/hub"
	"gameday/backend/internal/registry"
	"gameday/backend/internal/storage"
)

// Handler carries the shared dependencies of every route.
type Handler struct {
	Hub      *hub.Hub
	Registry *registry.Registry
	Store    storage.Store
	Games    *games.Client
}

func NewHandler(h *hub.Hub, reg *registry.Registry, store storage.Store, gamesClient *games.Client) *Handler {
	return &Handler{
		Hub:      h,
		Registry: reg,
		Store:    store,
		Games:    gamesClient,
	}
}
