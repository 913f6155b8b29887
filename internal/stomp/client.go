package stomp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultReconnectDelay is the fixed pause between connection attempts.
// There is no backoff and no attempt cap.
const DefaultReconnectDelay = 3 * time.Second

// ErrNotConnected is returned by Publish while no session is established.
var ErrNotConnected = errors.New("stomp: not connected")

// Options configures a Client.
type Options struct {
	// URL is the ws:// or wss:// broker endpoint.
	URL string
	// Token is called before every connection attempt. A non-empty result is sent
	// as a bearer token in the handshake and in CONNECT.
	Token          func() string
	ReconnectDelay time.Duration
	Dialer         *websocket.Dialer
	Logger         *zap.Logger
	// OnConnect is called after every successful CONNECTED, on the connection goroutine.
	OnConnect func()
}

// Handler receives the MESSAGE frames of one subscription, in broker order.
type Handler func(f *frame.Frame)

// Subscription is a live subscription that survives reconnects.
type Subscription struct {
	id          string
	destination string
	handler     Handler
	client      *Client
}

func (s *Subscription) ID() string          { return s.id }
func (s *Subscription) Destination() string { return s.destination }

// Unsubscribe removes the subscription and sends UNSUBSCRIBE when connected.
func (s *Subscription) Unsubscribe() {
	s.client.unsubscribe(s)
}

// Client is a STOMP-over-WebSocket client that keeps one connection alive until
// Deactivate. Connection failures are logged and retried, never returned.
type Client struct {
	opts Options
	log  *zap.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	subs    map[string]*Subscription
	nextSub int
	cancel  context.CancelFunc
	done    chan struct{}

	writeMu sync.Mutex
}

// NewClient creates an inactive client.
func NewClient(opts Options) *Client {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		opts: opts,
		log:  log.With(zap.String("broker", opts.URL)),
		subs: make(map[string]*Subscription),
	}
}

// Activate starts the connection loop. Calling it on an active client is a no-op.
func (c *Client) Activate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx, c.done)
}

// Deactivate sends DISCONNECT when connected, stops reconnecting and waits for the
// connection goroutine to exit.
func (c *Client) Deactivate() {
	c.mu.Lock()
	cancel, done, conn := c.cancel, c.done, c.conn
	c.cancel, c.done = nil, nil
	if conn != nil {
		if err := c.write(conn, frame.New(frame.DISCONNECT)); err != nil {
			c.log.Debug("stomp disconnect frame not sent", zap.Error(err))
		}
	}
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Connected reports whether a STOMP session is currently established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Subscribe registers handler for destination. The SUBSCRIBE frame is sent now if
// connected, and again after every reconnect.
func (c *Client) Subscribe(destination string, handler Handler) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := &Subscription{
		id:          "sub-" + strconv.Itoa(c.nextSub),
		destination: destination,
		handler:     handler,
		client:      c,
	}
	c.nextSub++
	c.subs[sub.id] = sub

	if c.conn != nil {
		if err := c.write(c.conn, subscribeFrame(sub)); err != nil {
			c.log.Debug("stomp subscribe failed", zap.String("destination", destination), zap.Error(err))
		}
	}
	return sub
}

func (c *Client) unsubscribe(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.subs[sub.id]; !ok {
		return
	}
	delete(c.subs, sub.id)
	if c.conn != nil {
		if err := c.write(c.conn, frame.New(frame.UNSUBSCRIBE, frame.Id, sub.id)); err != nil {
			c.log.Debug("stomp unsubscribe failed", zap.String("destination", sub.destination), zap.Error(err))
		}
	}
}

// Publish sends body to destination without waiting for any acknowledgment.
func (c *Client) Publish(destination, contentType string, body []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	f := frame.New(frame.SEND,
		frame.Destination, destination,
		frame.ContentType, contentType,
	)
	f.Body = body
	return c.write(conn, f)
}

func (c *Client) write(conn *websocket.Conn, f *frame.Frame) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

// run keeps a session open until ctx is cancelled, waiting ReconnectDelay between
// attempts.
func (c *Client) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return
		}
		c.log.Debug("stomp connection lost, reconnecting",
			zap.Error(err), zap.Duration("delay", c.opts.ReconnectDelay))

		timer := time.NewTimer(c.opts.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (c *Client) session(ctx context.Context) error {
	var token string
	if c.opts.Token != nil {
		token = c.opts.Token()
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("ws dial failed: %s", resp.Status)
		}
		return fmt.Errorf("ws dial error: %w", err)
	}
	defer conn.Close()

	// Closing the socket is the only way to unblock ReadMessage on cancel.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	if err := c.write(conn, NewConnect(hostOf(c.opts.URL), token)); err != nil {
		return fmt.Errorf("send connect: %w", err)
	}
	if err := awaitConnected(conn); err != nil {
		return err
	}

	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		return ctx.Err()
	}
	c.conn = conn
	for _, sub := range c.subs {
		if err := c.write(conn, subscribeFrame(sub)); err != nil {
			c.conn = nil
			c.mu.Unlock()
			return fmt.Errorf("resubscribe %s: %w", sub.destination, err)
		}
	}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
	}()

	c.log.Debug("stomp connected")
	if c.opts.OnConnect != nil {
		c.opts.OnConnect()
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		f, err := Decode(data)
		if err != nil {
			if !errors.Is(err, ErrEmptyFrame) {
				c.log.Debug("stomp frame dropped", zap.Error(err))
			}
			continue
		}
		switch f.Command {
		case frame.MESSAGE:
			c.dispatch(f)
		case frame.ERROR:
			return fmt.Errorf("broker error: %s", f.Header.Get(frame.Message))
		}
	}
}

func (c *Client) dispatch(f *frame.Frame) {
	c.mu.Lock()
	sub := c.subs[f.Header.Get(frame.Subscription)]
	c.mu.Unlock()
	if sub == nil {
		return
	}
	sub.handler(f)
}

func awaitConnected(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("await connected: %w", err)
		}
		f, err := Decode(data)
		if errors.Is(err, ErrEmptyFrame) {
			continue
		}
		if err != nil {
			return fmt.Errorf("await connected: %w", err)
		}
		switch f.Command {
		case frame.CONNECTED:
			return nil
		case frame.ERROR:
			return fmt.Errorf("connect rejected: %s", f.Header.Get(frame.Message))
		default:
			return fmt.Errorf("await connected: unexpected %s frame", f.Command)
		}
	}
}

func subscribeFrame(sub *Subscription) *frame.Frame {
	return frame.New(frame.SUBSCRIBE,
		frame.Id, sub.id,
		frame.Destination, sub.destination,
		frame.Ack, "auto",
	)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
