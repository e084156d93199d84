// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/packets"
	"github.com/gorilla/websocket"
)

// WebSocketConnection is a ConnectionProvider that connects to an MQTT server
// over a WebSocket, speaking the "mqtt" subprotocol. The path is the server's
// WebSocket endpoint, typically "/mqtt".
func WebSocketConnection(
	hostname string,
	port uint16,
	path string,
) ConnectionProvider {
	return func(ctx context.Context) (net.Conn, error) {
		u := url.URL{
			Scheme: "ws",
			Host:   fmt.Sprintf("%s:%d", hostname, port),
			Path:   path,
		}

		d := websocket.Dialer{
			Subprotocols: []string{"mqtt"},
		}
		ws, _, err := d.DialContext(ctx, u.String(), nil)
		if err != nil {
			return nil, &ConnectionError{
				message: "error opening WebSocket connection",
				wrapped: err,
			}
		}
		return packets.NewThreadSafeConn(&wsConn{ws: ws}), nil
	}
}

// wsConn adapts a websocket connection to net.Conn, framing writes as binary
// messages and concatenating received messages into a byte stream.
type wsConn struct {
	ws     *websocket.Conn
	reader io.Reader
}

func (c *wsConn) Read(p []byte) (int, error) {
	for {
		if c.reader == nil {
			_, r, err := c.ws.NextReader()
			if err != nil {
				return 0, err
			}
			c.reader = r
		}

		n, err := c.reader.Read(p)
		if err == io.EOF {
			// Message exhausted; continue with the next one.
			c.reader = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

func (c *wsConn) LocalAddr() net.Addr {
	return c.ws.LocalAddr()
}

func (c *wsConn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}

func (c *wsConn) SetDeadline(t time.Time) error {
	if err := c.ws.SetReadDeadline(t); err != nil {
		return err
	}
	return c.ws.SetWriteDeadline(t)
}

func (c *wsConn) SetReadDeadline(t time.Time) error {
	return c.ws.SetReadDeadline(t)
}

func (c *wsConn) SetWriteDeadline(t time.Time) error {
	return c.ws.SetWriteDeadline(t)
}
