package handlers

import (
	"gala_server/internal/game"
	"gala_server/internal/repository"
	"gala_server/internal/ws"
)

type Handler struct {
	Manager       *game.Manager
	Hub           *ws.Hub
	Store         *repository.Store
	AdminPassword string
}

func NewHandler(manager *game.Manager, hub *ws.Hub, store *repository.Store, adminPassword string) *Handler {
	return &Handler{
		Manager:       manager,
		Hub:           hub,
		Store:         store,
		AdminPassword: adminPassword,
	}
}
