// Package chat manages the client side of one company chat room: the recent history,
// the join/leave lifecycle and the live message log.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/auth"
	"github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/pkg/validate"
)

// HistoryLimit is how many recent messages are fetched before joining.
const HistoryLimit = 30

type State int

const (
	NotJoined State = iota
	Joining
	Joined
)

func (s State) String() string {
	switch s {
	case NotJoined:
		return "not joined"
	case Joining:
		return "joining"
	case Joined:
		return "joined"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrEmptyMessage   = errors.New("chat: message is empty")
	ErrMessageTooLong = fmt.Errorf("chat: message is longer than %d characters", models.MaxMessageLength)
	ErrNotJoined      = errors.New("chat: not joined")
	ErrLoginRequired  = errors.New("chat: login required")
	ErrLeft           = errors.New("chat: left before the join completed")
)

// LoginRequiredError is returned by Join for anonymous visitors. RedirectPath is the
// login route with a return path back to the room.
type LoginRequiredError struct {
	RedirectPath string
}

func (e *LoginRequiredError) Error() string {
	return "chat: login required, redirect to " + e.RedirectPath
}

func (e *LoginRequiredError) Is(target error) bool {
	return target == ErrLoginRequired
}

// LoginPath is the login route that returns to the company's room.
func LoginPath(companyID int64) string {
	return "/login?next=" + url.QueryEscape(fmt.Sprintf("/company/%d", companyID))
}

type HistorySource interface {
	RoomMessages(ctx context.Context, companyID int64, limit int) ([]models.ChatMessage, error)
}

type IdentitySource interface {
	Current() auth.Identity
}

// Connector opens the live connection for a room. onMessage is called in broker
// order until Disconnect returns.
type Connector interface {
	Connect(companyID int64, onMessage func(models.ChatMessage)) (Conn, error)
}

type Conn interface {
	Publish(msg models.ChatPublish) error
	Disconnect()
}

// Session is one room view. It owns at most one connection at a time.
type Session struct {
	companyID int64
	history   HistorySource
	identity  IdentitySource
	connector Connector
	log       *zap.Logger

	mu       sync.Mutex
	state    State
	nickname string
	recent   []models.ChatMessage
	live     []models.ChatMessage
	conn     Conn
	// epoch changes on every Leave so an in-flight Join can tell it was abandoned.
	epoch uint64

	events chan struct{}
}

func NewSession(companyID int64, history HistorySource, identity IdentitySource, connector Connector, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		companyID: companyID,
		history:   history,
		identity:  identity,
		connector: connector,
		log:       log.With(zap.Int64("company_id", companyID)),
		events:    make(chan struct{}, 1),
	}
}

func (s *Session) CompanyID() int64 { return s.companyID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Nickname is the bound sender name while joined.
func (s *Session) Nickname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nickname
}

// Events receives a value whenever history loads or a message is appended. Sends
// are coalesced, so readers should re-read Messages.
func (s *Session) Events() <-chan struct{} {
	return s.events
}

// Messages returns the loaded history followed by the live log, in arrival order.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, 0, len(s.recent)+len(s.live))
	out = append(out, s.recent...)
	return append(out, s.live...)
}

// LoadHistory fetches the most recent messages. It does not require a join. The
// result is dropped if ctx was cancelled while the request was in flight.
func (s *Session) LoadHistory(ctx context.Context) error {
	msgs, err := s.history.RoomMessages(ctx, s.companyID, HistoryLimit)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return fmt.Errorf("load chat history: %w", err)
	}

	s.mu.Lock()
	s.recent = msgs
	s.mu.Unlock()
	s.notify()
	return nil
}

// Join binds the current identity and connects. Joining an already joined room is
// a no-op.
func (s *Session) Join() error {
	s.mu.Lock()
	if s.state != NotJoined {
		s.mu.Unlock()
		return nil
	}
	s.state = Joining
	epoch := s.epoch
	s.mu.Unlock()

	id := s.identity.Current()
	if !id.Authenticated() {
		s.resetJoin(epoch)
		return &LoginRequiredError{RedirectPath: LoginPath(s.companyID)}
	}

	conn, err := s.connector.Connect(s.companyID, s.appendMessage)
	if err != nil {
		s.resetJoin(epoch)
		return fmt.Errorf("connect room %d: %w", s.companyID, err)
	}

	s.mu.Lock()
	if s.epoch != epoch || s.state != Joining {
		s.mu.Unlock()
		conn.Disconnect()
		s.log.Debug("join abandoned, connection released")
		return ErrLeft
	}
	s.conn = conn
	s.nickname = id.Nickname
	s.state = Joined
	s.mu.Unlock()
	s.log.Debug("joined chat room", zap.String("nickname", id.Nickname))
	return nil
}

// Send validates text and publishes it. The message shows up in Messages only once
// the broker echoes it. Publish failures are logged, not returned.
func (s *Session) Send(text string) error {
	msg := models.ChatPublish{CompanyID: s.companyID, Message: strings.TrimSpace(text)}
	if err := validate.Struct(msg); err != nil {
		var ve validate.Errors
		switch {
		case errors.As(err, &ve) && ve.Has("Message", "required"):
			return ErrEmptyMessage
		case errors.As(err, &ve) && ve.Has("Message", "max"):
			return ErrMessageTooLong
		default:
			return err
		}
	}

	s.mu.Lock()
	conn := s.conn
	joined := s.state == Joined
	s.mu.Unlock()
	if !joined || conn == nil {
		return ErrNotJoined
	}

	if err := conn.Publish(msg); err != nil {
		s.log.Debug("chat publish dropped", zap.Error(err))
	}
	return nil
}

// Leave disconnects and returns to NotJoined. The log is kept.
func (s *Session) Leave() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.nickname = ""
	s.state = NotJoined
	s.epoch++
	s.mu.Unlock()

	// Disconnect waits for the read goroutine, which takes s.mu in appendMessage.
	if conn != nil {
		conn.Disconnect()
		s.log.Debug("left chat room")
	}
}

func (s *Session) appendMessage(msg models.ChatMessage) {
	s.mu.Lock()
	s.live = append(s.live, msg)
	s.mu.Unlock()
	s.notify()
}

// resetJoin returns a failed join to NotJoined unless a Leave already did.
func (s *Session) resetJoin(epoch uint64) {
	s.mu.Lock()
	if s.epoch == epoch {
		s.state = NotJoined
	}
	s.mu.Unlock()
}

func (s *Session) notify() {
	select {
	case s.events <- struct{}{}:
	default:
	}
}
