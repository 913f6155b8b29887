package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/eonjenawa/eonjenawa-cli/internal/api/middleware"
	"github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/pkg/id"
	"github.com/eonjenawa/eonjenawa-cli/internal/stomp"
	"github.com/eonjenawa/eonjenawa-cli/internal/utils"
)

const (
	maxFrameSize = 64 << 10
	writeWait    = 10 * time.Second
	recordWait   = 5 * time.Second
)

// Client is one STOMP session over a websocket connection.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	session string
	log     *zap.Logger
	limiter *rate.Limiter

	handshakeToken string
	connected      bool
	nickname       string
	subs           map[string]*Room // subscription id -> room
}

func newClient(h *Hub, conn *websocket.Conn, handshakeToken string) *Client {
	session := id.New()
	return &Client{
		hub:            h,
		conn:           conn,
		send:           make(chan []byte, 256),
		done:           make(chan struct{}),
		session:        session,
		log:            h.log.With(zap.String("session", session)),
		limiter:        rate.NewLimiter(h.sendLimit, h.sendBurst),
		handshakeToken: handshakeToken,
		subs:           make(map[string]*Room),
	}
}

// errFatal ends the session after an ERROR frame has been queued.
var errFatal = errors.New("stomp session ended with error")

func (c *Client) readPump() {
	defer func() {
		for _, room := range c.subs {
			room.unsubscribe(c, "")
		}
		close(c.done)
	}()
	c.conn.SetReadLimit(maxFrameSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		f, err := stomp.Decode(data)
		if errors.Is(err, stomp.ErrEmptyFrame) {
			continue
		}
		if err != nil {
			c.sendError("malformed frame", err.Error())
			return
		}
		if err := c.handle(f); err != nil {
			return
		}
	}
}

// handle processes one inbound frame. A non-nil error closes the session.
func (c *Client) handle(f *frame.Frame) error {
	if !c.connected && f.Command != frame.CONNECT && f.Command != frame.STOMP {
		c.sendError("not connected", "send CONNECT first")
		return errFatal
	}

	switch f.Command {
	case frame.CONNECT, frame.STOMP:
		return c.handleConnect(f)
	case frame.SUBSCRIBE:
		return c.handleSubscribe(f)
	case frame.UNSUBSCRIBE:
		subID := f.Header.Get(frame.Id)
		if room, ok := c.subs[subID]; ok {
			room.unsubscribe(c, subID)
			delete(c.subs, subID)
		}
		return nil
	case frame.SEND:
		return c.handleSend(f)
	case frame.DISCONNECT:
		if receipt, ok := f.Header.Contains(frame.Receipt); ok {
			c.sendFrame(frame.New(frame.RECEIPT, frame.ReceiptId, receipt))
		}
		return errFatal
	default:
		c.sendError("unsupported command", f.Command)
		return errFatal
	}
}

func (c *Client) handleConnect(f *frame.Frame) error {
	token, _ := middleware.BearerToken(f.Header.Get("Authorization"))
	if token == "" {
		token = c.handshakeToken
	}
	if token != "" {
		claims, err := utils.CachedAccessClaims(c.hub.secret, token)
		if err != nil {
			c.sendError("invalid token", "the access token is invalid or expired")
			return errFatal
		}
		c.nickname = claims.Nickname
	}

	c.connected = true
	c.sendFrame(frame.New(frame.CONNECTED,
		frame.Version, stomp.Version,
		frame.HeartBeat, "0,0",
		frame.Session, c.session,
		frame.Server, "eonjenawa-mock/1.0",
	))
	c.log.Debug("stomp session connected", zap.Bool("authenticated", c.nickname != ""))
	return nil
}

func (c *Client) handleSubscribe(f *frame.Frame) error {
	subID := f.Header.Get(frame.Id)
	dest := f.Header.Get(frame.Destination)
	if subID == "" || !strings.HasPrefix(dest, models.RoomTopicPrefix) {
		c.sendError("invalid subscription", "id and a "+models.RoomTopicPrefix+"{companyId} destination are required")
		return errFatal
	}
	if old, ok := c.subs[subID]; ok {
		old.unsubscribe(c, subID)
	}
	c.subs[subID] = c.hub.subscribe(dest, c, subID)
	return nil
}

func (c *Client) handleSend(f *frame.Frame) error {
	if dest := f.Header.Get(frame.Destination); dest != models.ChatPublishDestination {
		c.sendError("unknown destination", dest)
		return errFatal
	}
	if c.nickname == "" {
		c.sendError("login required", "anonymous sessions cannot send")
		return errFatal
	}
	if !c.limiter.Allow() {
		c.log.Debug("send rate exceeded, message dropped")
		return nil
	}

	var in models.ChatPublish
	if err := json.Unmarshal(f.Body, &in); err != nil {
		c.log.Debug("malformed chat publish dropped", zap.Error(err))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordWait)
	defer cancel()
	msg, err := c.hub.recorder.Record(ctx, c.nickname, in)
	if err != nil {
		c.log.Debug("chat publish rejected", zap.Error(err))
		return nil
	}
	c.hub.Broadcast(msg)
	return nil
}

func (c *Client) sendFrame(f *frame.Frame) {
	data, err := stomp.Encode(f)
	if err != nil {
		c.log.Error("stomp encode error", zap.Error(err))
		return
	}
	c.trySend(data)
}

func (c *Client) sendError(message, detail string) {
	f := frame.New(frame.ERROR, frame.Message, message, frame.ContentType, "text/plain")
	f.Body = []byte(detail)
	c.sendFrame(f)
}

// trySend queues data without blocking. It reports false when the buffer is full
// or the session is over.
func (c *Client) trySend(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// writePump owns all writes and the final close. After readPump ends it flushes
// what is queued, such as a last ERROR frame.
func (c *Client) writePump() {
	defer func() { _ = c.conn.Close() }()
	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				return
			}
		case <-c.done:
			for {
				select {
				case msg := <-c.send:
					if err := c.write(msg); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (c *Client) write(msg []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}
