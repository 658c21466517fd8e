package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs handles a websocket subscriber connection for the given clientID.
func ServeWs(hub *Hub, c *websocket.Conn, clientID string) {
	client := &Client{Hub: hub, Conn: c, ClientID: clientID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
