package handlers

import (
	"errors"
	"strconv"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	chatws "github.com/almas-cp/Saner-sub000/internal/websocket"
	"github.com/almas-cp/Saner-sub000/pkg/utils"
)

// WSHandler upgrades authenticated connections into the realtime hub.
type WSHandler struct {
	hub       *chatws.Hub
	gateway   *chatws.Gateway
	jwtSecret string
}

func NewWSHandler(hub *chatws.Hub, gateway *chatws.Gateway, jwtSecret string) *WSHandler {
	return &WSHandler{
		hub:       hub,
		gateway:   gateway,
		jwtSecret: jwtSecret,
	}
}

func (h *WSHandler) Auth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *WSHandler) Handle(conn *websocket.Conn) {
	userIDStr, _ := conn.Locals("user_id").(string)
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		_ = conn.Close()
		return
	}

	client := chatws.NewClient(h.hub, conn, userID)
	go client.WritePump(h.gateway)
	client.ReadPump(h.gateway)
}

func (h *WSHandler) parseClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}
