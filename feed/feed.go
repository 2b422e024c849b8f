// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package feed bridges an external data producer into a project's
// pending-change queue. A [Client] holds a websocket connection to the
// producer and enqueues the entity UUIDs its messages name; the owner
// of the project drains them with [project.Project.DrainChanges] on its
// own schedule.
package feed

import (
	"encoding/json"

	"cogentcore.org/loom/base/errors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message is one change notification from the producer.
type Message struct {

	// UUID identifies the entity the event concerns,
	// typically a data item whose data was rewritten.
	UUID uuid.UUID `json:"uuid"`

	// Event tags what happened, such as "data" or "insert".
	Event string `json:"event"`
}

// Queuer accepts queued change notifications. [project.Project] is the
// usual implementation.
type Queuer interface {

	// QueueChange records that the entity with the given UUID changed.
	// Safe to call from any goroutine.
	QueueChange(u uuid.UUID)
}

// Client represents a websocket connection to a change producer.
// You can use [Connect] to create a new Client.
type Client struct {

	// conn is the underlying websocket connection.
	conn *websocket.Conn

	// done is a channel that is closed when the connection is closed.
	done chan struct{}
}

// Connect connects to a producer endpoint and starts delivering its
// messages into the queue. Messages that do not parse or carry no UUID
// are dropped.
func Connect(url string, q Queuer) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	c := &Client{conn: conn, done: make(chan struct{})}
	go c.run(q)
	return c, nil
}

func (c *Client) run(q Queuer) {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				errors.Log(err)
			}
			close(c.done)
			return
		}
		var m Message
		if errors.Log(json.Unmarshal(msg, &m)) != nil {
			continue
		}
		if m.UUID == uuid.Nil {
			continue
		}
		q.QueueChange(m.UUID)
	}
}

// OnClose sets a callback function to be called when the connection is
// closed, from either side. This function can only be called once.
func (c *Client) OnClose(f func()) {
	go func() {
		<-c.done
		f()
	}()
}

// Close cleanly closes the connection. The server's close response ends
// the delivery loop, which then triggers [Client.OnClose].
func (c *Client) Close() error {
	return c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
