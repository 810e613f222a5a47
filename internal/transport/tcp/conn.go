package tcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"

	"flashquiz/internal/protocol"
	"flashquiz/internal/transport"
)

// maxFrameSize bounds a single newline-delimited JSON frame. The scanner
// cannot resync mid-line after an oversize frame, so exceeding the cap
// surfaces as a read error that ends the connection rather than a
// recoverable decode error.
const maxFrameSize = 64 * 1024

// conn frames newline-delimited JSON over a net.Conn.
type conn struct {
	raw     net.Conn
	scanner *bufio.Scanner
}

func newConn(raw net.Conn) *conn {
	scanner := bufio.NewScanner(raw)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameSize)
	return &conn{raw: raw, scanner: scanner}
}

func (c *conn) ReadMessage() (protocol.ClientMessage, error) {
	for c.scanner.Scan() {
		line := bytes.TrimSpace(c.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var msg protocol.ClientMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return protocol.ClientMessage{}, fmt.Errorf("%w: %v", transport.ErrMalformed, err)
		}
		return msg, nil
	}
	if err := c.scanner.Err(); err != nil {
		return protocol.ClientMessage{}, err
	}
	return protocol.ClientMessage{}, io.EOF
}

func (c *conn) WriteMessage(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = c.raw.Write(append(data, '\n'))
	return err
}

func (c *conn) Close() error {
	return c.raw.Close()
}
