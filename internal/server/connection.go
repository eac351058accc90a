package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBufferSize = 256
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection is one player's socket. It is the player's game.Sink: the room
// writes notifications through SendMessage and closes rejected sockets.
type Connection struct {
	conn      *websocket.Conn
	send      chan *protocol.Message
	room      *game.Room
	playerID  string
	closed    bool
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, room *game.Room, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *protocol.Message, sendBufferSize),
		room:   room,
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the socket is gone
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close flushes queued messages, sends a close frame and drops the socket
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
	return nil
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *protocol.Message) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}

	select {
	case c.send <- msg:
		c.mu.RUnlock()
		return nil
	default:
		c.mu.RUnlock()
		c.logger.Warn("Connection send buffer full, closing connection", "player", c.GetPlayer())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// shutdown tears down the socket without flushing
func (c *Connection) shutdown() {
	c.cancel()
	_ = c.conn.Close() // Ignore errors, the socket may already be gone
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		c.shutdown()
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("Ignoring undecodable frame", "player", c.GetPlayer(), "error", err)
			continue
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage routes an incoming envelope to the room. Malformed payloads,
// unknown types and actions from sockets that have not joined are dropped
// without a reply.
func (c *Connection) handleMessage(msg *protocol.Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case protocol.MessageTypeJoin:
		var data protocol.JoinData
		if err := msg.Decode(&data); err != nil {
			c.logger.Debug("Ignoring malformed join", "error", err)
			return
		}
		c.handleJoin(data)

	case protocol.MessageTypeEnterName:
		var data protocol.EnterNameData
		if err := msg.Decode(&data); err != nil {
			c.logger.Debug("Ignoring malformed name", "player", c.GetPlayer(), "error", err)
			return
		}
		if playerID, ok := c.requirePlayer(msg.Type); ok {
			c.room.EnterName(playerID, data.Name)
		}

	case protocol.MessageTypePlayCard:
		var data protocol.PlayCardData
		if err := msg.Decode(&data); err != nil {
			c.logger.Debug("Ignoring malformed play", "player", c.GetPlayer(), "error", err)
			return
		}
		if playerID, ok := c.requirePlayer(msg.Type); ok {
			c.room.PlayCards(playerID, data.SelectedCards)
		}

	case protocol.MessageTypeRevealPreviousCards:
		if playerID, ok := c.requirePlayer(msg.Type); ok {
			c.room.Reveal(playerID)
		}

	default:
		c.logger.Debug("Ignoring unknown message type", "type", msg.Type, "player", c.GetPlayer())
	}
}

// handleJoin asks the room for a seat and binds the socket to the id only once
// the room has seated this connection under it
func (c *Connection) handleJoin(data protocol.JoinData) {
	if data.PlayerID == "" {
		c.logger.Debug("Ignoring join without player id")
		return
	}
	if current := c.GetPlayer(); current != "" {
		c.logger.Debug("Connection already joined, ignoring join", "player", current, "requested", data.PlayerID)
		return
	}

	c.logger.Info("Join request", "player", data.PlayerID, "name", data.Name)
	seated, err := c.room.Join(c.ctx, data.PlayerID, data.Name, c)
	if err != nil {
		c.logger.Info("Join failed", "player", data.PlayerID, "error", err)
		return
	}
	if !seated {
		c.logger.Debug("Player id is seated on another connection, ignoring join", "player", data.PlayerID)
		return
	}
	c.SetPlayer(data.PlayerID)
}

// requirePlayer returns the id this socket joined as. Actions always apply to
// that id, whatever the payload says.
func (c *Connection) requirePlayer(messageType protocol.MessageType) (string, bool) {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.logger.Debug("Ignoring action before join", "type", messageType)
		return "", false
	}
	return playerID, true
}
