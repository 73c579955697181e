package network

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeWriteWait = 5 * time.Second

type Connection interface {
	Send(msgType string, payload any) error
	ReadEnvelope() (*Envelope, error)
	CloseWithCode(code int, reason string) error
	Close() error
	RemoteAddr() net.Addr
}

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

func (c *WSConnection) Send(msgType string, payload any) error {
	frame, err := EncodeFrame(msgType, payload)
	if err != nil {
		return err
	}

	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *WSConnection) ReadEnvelope() (*Envelope, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return ParseEnvelope(data)
}

// CloseWithCode performs a closing handshake with an explicit close code, so
// the peer can distinguish join conflicts from ordinary disconnects.
func (c *WSConnection) CloseWithCode(code int, reason string) error {
	c.sendMutex.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
	c.sendMutex.Unlock()
	if err != nil {
		return c.conn.Close()
	}
	return c.conn.Close()
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
