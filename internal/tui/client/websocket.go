package client

import (
	"encoding/json"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/chat"
	"github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/stomp"
)

// RoomConnector opens one STOMP connection per joined room.
type RoomConnector struct {
	brokerURL      string
	token          func() string
	reconnectDelay time.Duration
	log            *zap.Logger
}

// NewRoomConnector connects to brokerURL, authenticating with whatever token
// returns on each connection attempt, reconnects included.
func NewRoomConnector(brokerURL string, token func() string, reconnectDelay time.Duration, log *zap.Logger) *RoomConnector {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomConnector{
		brokerURL:      brokerURL,
		token:          token,
		reconnectDelay: reconnectDelay,
		log:            log,
	}
}

// Connect subscribes to the company's room topic and starts the connection loop.
// It never fails on network errors; those are retried in the background.
func (r *RoomConnector) Connect(companyID int64, onMessage func(models.ChatMessage)) (chat.Conn, error) {
	log := r.log.With(zap.Int64("company_id", companyID))

	c := stomp.NewClient(stomp.Options{
		URL:            r.brokerURL,
		Token:          r.token,
		ReconnectDelay: r.reconnectDelay,
		Logger:         log,
	})
	sub := c.Subscribe(models.RoomTopic(companyID), func(f *frame.Frame) {
		var msg models.ChatMessage
		if err := json.Unmarshal(f.Body, &msg); err != nil {
			log.Debug("chat frame dropped", zap.Error(err))
			return
		}
		onMessage(msg)
	})
	c.Activate()

	return &roomConn{client: c, sub: sub}, nil
}

type roomConn struct {
	client *stomp.Client
	sub    *stomp.Subscription
}

func (rc *roomConn) Publish(msg models.ChatPublish) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return rc.client.Publish(models.ChatPublishDestination, "application/json", body)
}

// Connected reports whether the STOMP session is currently up.
func (rc *roomConn) Connected() bool {
	return rc.client.Connected()
}

// Disconnect unsubscribes, then deactivates and waits for the connection loop.
func (rc *roomConn) Disconnect() {
	rc.sub.Unsubscribe()
	rc.client.Deactivate()
}
