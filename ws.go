package main

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client is one websocket connection, player or spectator. The id is minted
// per connection; closing the socket retires the identity for good.
type client struct {
	conn *websocket.Conn
	send chan any
	id   string
	log  zerolog.Logger
}

func serveWS(log zerolog.Logger, sess *session) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug().Err(err).Str("remote", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		c := &client{
			conn: conn,
			send: make(chan any, 16),
			id:   uuid.NewString(),
			log:  log,
		}

		sess.register <- c

		go c.writePump()
		c.readPump(sess)
	}
}

// readPump decodes inbound envelopes and forwards them to the session.
// Unparseable payloads are dropped without closing the connection.
func (c *client) readPump(sess *session) {
	defer func() {
		sess.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Debug().Err(err).Str("conn", c.id).Msg("dropping malformed message")
			continue
		}

		sess.inbound <- inboundRequest{
			client: c,
			msg:    msg,
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
