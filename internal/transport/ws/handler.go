// Package ws exposes the quiz protocol to browser clients over WebSocket.
// Frames carry the same JSON messages as the TCP transport, one per frame.
package ws

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"flashquiz/internal/game"
	"flashquiz/internal/protocol"
	"flashquiz/internal/transport"
)

type Handler struct {
	svc      *game.Service
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewHandler(svc *game.Service, log logrus.FieldLogger) *Handler {
	return &Handler{
		svc: svc,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and runs the shared protocol state machine
// over the socket.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}

	id := uuid.New()
	handler := transport.NewHandler(h.svc, &wsConn{conn: raw}, h.log.WithField("conn", id.String()))
	handler.Run(r.Context())
}

// wsConn adapts a websocket connection to the transport.Conn framing.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() (protocol.ClientMessage, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return protocol.ClientMessage{}, err
	}
	var msg protocol.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return protocol.ClientMessage{}, fmt.Errorf("%w: %v", transport.ErrMalformed, err)
	}
	return msg, nil
}

func (c *wsConn) WriteMessage(v any) error {
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
