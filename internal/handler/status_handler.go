package handler

import (
	"doc-intelligence-be/internal/metrics"
	"doc-intelligence-be/internal/pkg/logger"
	internalWS "doc-intelligence-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StatusHandler upgrades /ws/:clientId requests into status subscriber
// sessions on the hub.
type StatusHandler struct {
	hub     *internalWS.Hub
	logger  logger.ILogger
	metrics *metrics.Metrics
}

func NewStatusHandler(hub *internalWS.Hub, log logger.ILogger, m *metrics.Metrics) *StatusHandler {
	return &StatusHandler{
		hub:     hub,
		logger:  log,
		metrics: m,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *StatusHandler) ServeWs(c *fiber.Ctx) error {
	clientID := c.Params("clientId")
	if clientID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing client ID"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StatusHandler", "Starting WebSocket session", map[string]interface{}{"client_id": clientID})
			h.metrics.WsConnected()
			internalWS.ServeWs(h.hub, conn, clientID)
			h.metrics.WsDisconnected()
			h.logger.Info("StatusHandler", "WebSocket session ended", map[string]interface{}{"client_id": clientID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes wires the websocket endpoint onto the app.
func (h *StatusHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/ws/:clientId", h.ServeWs)
}
