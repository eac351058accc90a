package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/liarsbar/internal/deck"
	"github.com/lox/liarsbar/internal/protocol"
)

// ErrDisconnected is returned when the connection is gone
var ErrDisconnected = errors.New("disconnected")

// Client represents a WebSocket client for a liar's bar room
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *protocol.Message
	receive   chan *protocol.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	playerID  string
	closeOnce sync.Once

	nextHandler int
	handlers    map[int]subscription
}

// EventHandler handles one incoming message. Handlers run one at a time in the
// order messages arrive and must not block.
type EventHandler func(*protocol.Message)

type subscription struct {
	messageType protocol.MessageType // empty matches everything
	handler     EventHandler
}

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		send:      make(chan *protocol.Message, 256),
		receive:   make(chan *protocol.Message, 256),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
		handlers:  make(map[int]subscription),
	}
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect() error {
	c.logger.Info("Connecting to server", "url", c.serverURL)

	wsURL, err := websocketURL(c.serverURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(c.ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()
	go c.eventProcessor()

	c.logger.Info("Connected to server")
	return nil
}

// websocketURL turns a server base URL into its /ws endpoint
func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme: %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	if !strings.HasSuffix(u.Path, "/ws") {
		u.Path += "/ws"
	}
	return u.String(), nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second)) // Best effort
			_ = c.conn.Close() // Ignore close errors during shutdown
			c.connected = false
		}

		c.logger.Info("Disconnected from server")
	})
	return nil
}

// Done is closed when the client disconnects
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage sends a message to the server
func (c *Client) SendMessage(msg *protocol.Message) error {
	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		return fmt.Errorf("send buffer full")
	}
}

// readPump handles incoming messages from the server. It owns the receive
// channel and closes it on exit so queued messages are still dispatched.
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.cancel()
		close(c.receive)
	}()

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)

		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second) // Ping interval
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				c.cancel()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// eventProcessor dispatches incoming messages in arrival order
func (c *Client) eventProcessor() {
	for msg := range c.receive {
		c.handleMessage(msg)
	}
}

// handleMessage runs the handlers registered for msg, in registration order
func (c *Client) handleMessage(msg *protocol.Message) {
	c.mu.RLock()
	var matched []subscriptionEntry
	for id, sub := range c.handlers {
		if sub.messageType == "" || sub.messageType == msg.Type {
			matched = append(matched, subscriptionEntry{id: id, handler: sub.handler})
		}
	}
	c.mu.RUnlock()

	if len(matched) == 0 {
		c.logger.Debug("No handler for message type", "type", msg.Type)
		return
	}

	slices.SortFunc(matched, func(a, b subscriptionEntry) int { return a.id - b.id })
	for _, entry := range matched {
		entry.handler(msg)
	}
}

type subscriptionEntry struct {
	id      int
	handler EventHandler
}

// AddEventHandler adds a handler for one message type, or every type when
// messageType is empty. The returned function removes it.
func (c *Client) AddEventHandler(messageType protocol.MessageType, handler EventHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextHandler
	c.nextHandler++
	c.handlers[id] = subscription{messageType: messageType, handler: handler}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers, id)
	}
}

// Join asks for a seat
func (c *Client) Join(playerID, name string) error {
	c.mu.Lock()
	c.playerID = playerID
	c.mu.Unlock()

	return c.sendData(protocol.MessageTypeJoin, protocol.JoinData{PlayerID: playerID, Name: name})
}

// EnterName sets the display name and marks the player ready
func (c *Client) EnterName(name string) error {
	return c.sendData(protocol.MessageTypeEnterName, protocol.EnterNameData{PlayerID: c.PlayerID(), Name: name})
}

// PlayCards puts cards down as the claimed rank
func (c *Client) PlayCards(cards []deck.Card) error {
	return c.sendData(protocol.MessageTypePlayCard, protocol.PlayCardData{PlayerID: c.PlayerID(), SelectedCards: cards})
}

// Reveal challenges the previous play
func (c *Client) Reveal() error {
	return c.sendData(protocol.MessageTypeRevealPreviousCards, protocol.RevealData{PlayerID: c.PlayerID()})
}

func (c *Client) sendData(messageType protocol.MessageType, data any) error {
	msg, err := protocol.NewMessage(messageType, data)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// PlayerID returns the id passed to Join
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// WaitForMessage waits for the next message of messageType that satisfies match
// (nil matches any)
func (c *Client) WaitForMessage(ctx context.Context, messageType protocol.MessageType, match func(*protocol.Message) bool) (*protocol.Message, error) {
	responseChan := make(chan *protocol.Message, 1)

	remove := c.AddEventHandler(messageType, func(msg *protocol.Message) {
		if match != nil && !match(msg) {
			return
		}
		select {
		case responseChan <- msg:
		default:
		}
	})
	defer remove()

	select {
	case msg := <-responseChan:
		return msg, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s: %w", messageType, ctx.Err())
	case <-c.ctx.Done():
		return nil, fmt.Errorf("waiting for %s: %w", messageType, ErrDisconnected)
	}
}
