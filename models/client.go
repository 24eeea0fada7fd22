package models

import (
	"sync"
	"time"
)

type PlayerStatus struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Ready    bool   `json:"ready"`
}

// Client is a connected user. Outbound frames are queued on Send and
// written by the transport's write pump.
type Client struct {
	ID       string      `json:"id"`
	Send     chan []byte `json:"-"`
	Username string      `json:"username"`
	JoinedAt time.Time   `json:"joined_at"`
	// Encoding selects the wire codec for frames sent to this client.
	Encoding string `json:"-"`

	mu     sync.Mutex
	closed bool
}

func NewClient(id, username string, buffer int) *Client {
	return &Client{
		ID:       id,
		Username: username,
		Send:     make(chan []byte, buffer),
		JoinedAt: time.Now(),
	}
}

// Enqueue queues a frame without blocking. A client whose buffer is full is
// closed, the write pump then tears the connection down.
func (c *Client) Enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- frame:
		return true
	default:
		c.closed = true
		close(c.Send)
		return false
	}
}

// Close closes Send once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Status is the public view of c. Ready is only meaningful inside a match.
func (c *Client) Status() PlayerStatus {
	return PlayerStatus{ID: c.ID, Username: c.Username}
}
