package handlers

import (
	"net/http"
	"os"

	"gala_server/internal/logger"
	"gala_server/internal/service"
	"gala_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WS upgrades a connection and binds it to an audience role. Players
// introduce themselves afterwards with a join message; screens and
// admins are attached to their groups immediately. Admin connections
// must present a valid admin JWT in the token query parameter.
func (h *Handler) WS() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := ws.Role(c.Query("role"))
		switch role {
		case ws.RoleScreen, ws.RoleAdmin:
		default:
			role = ws.RolePlayer
		}

		if role == ws.RoleAdmin {
			if err := service.ParseAdminJWT(c.Query("token")); err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
				return
			}
		}

		allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "err", err)
			return
		}

		client := ws.NewClient(uuid.NewString(), role, conn)
		h.Hub.Register(client)

		switch role {
		case ws.RoleScreen:
			h.Manager.ScreenConnected(client.ID)
		case ws.RoleAdmin:
			h.Manager.AdminConnected(client.ID)
		}

		go func() {
			client.Run(h.Manager)
			h.Hub.Unregister(client)
		}()
	}
}
