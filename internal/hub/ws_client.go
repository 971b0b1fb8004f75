package hub

import (
	"encoding/json"
	"log"
	"time"

	"gameday/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements the hub.Client interface over a gorilla
// websocket connection.
type WebSocketClient struct {
	SessionID string
	UserID    string
	UserName  string
	RoomID    string
	Conn      *websocket.Conn
	Hub       *Hub
	Send      chan models.Event
}

func (c *WebSocketClient) GetSessionID() string { return c.SessionID }
func (c *WebSocketClient) GetUserID() string    { return c.UserID }
func (c *WebSocketClient) GetUserName() string  { return c.UserName }
func (c *WebSocketClient) SetIdentity(id, name string) {
	c.UserID = id
	c.UserName = name
}
func (c *WebSocketClient) GetRoomID() string                   { return c.RoomID }
func (c *WebSocketClient) SetRoomID(id string)                 { c.RoomID = id }
func (c *WebSocketClient) GetSendChannel() chan<- models.Event { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var evt models.Event
		if err := json.Unmarshal(message, &evt); err != nil {
			log.Printf("Error decoding JSON from session %s: %v", c.SessionID, err)
			continue
		}

		c.Hub.IncomingCh <- Request{Client: c, Event: evt}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the hub.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(evt)
			if err != nil {
				log.Printf("Error encoding JSON for session %s: %v", c.SessionID, err)
				continue
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
