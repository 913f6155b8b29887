package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eonjenawa/eonjenawa-cli/internal/auth"
	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

type mockHistory struct{ mock.Mock }

func (m *mockHistory) RoomMessages(ctx context.Context, companyID int64, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, companyID, limit)
	msgs, _ := args.Get(0).([]models.ChatMessage)
	return msgs, args.Error(1)
}

type mockConnector struct {
	mock.Mock
	onMessage func(models.ChatMessage)
}

func (m *mockConnector) Connect(companyID int64, onMessage func(models.ChatMessage)) (Conn, error) {
	m.onMessage = onMessage
	args := m.Called(companyID)
	conn, _ := args.Get(0).(Conn)
	return conn, args.Error(1)
}

type mockConn struct{ mock.Mock }

func (m *mockConn) Publish(msg models.ChatPublish) error {
	return m.Called(msg).Error(0)
}

func (m *mockConn) Disconnect() {
	m.Called()
}

func loggedIn(nickname string) *auth.Provider {
	p := auth.NewProvider()
	p.Set(auth.Identity{UserID: 1, Nickname: nickname})
	return p
}

func TestJoin_Unauthenticated(t *testing.T) {
	connector := &mockConnector{}
	s := NewSession(42, &mockHistory{}, auth.NewProvider(), connector, nil)

	err := s.Join()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginRequired)

	var lre *LoginRequiredError
	require.True(t, errors.As(err, &lre))
	assert.Equal(t, "/login?next=%2Fcompany%2F42", lre.RedirectPath)
	assert.Equal(t, NotJoined, s.State())
	connector.AssertNotCalled(t, "Connect", mock.Anything)
}

func TestJoin_BindsNickname(t *testing.T) {
	conn := &mockConn{}
	connector := &mockConnector{}
	connector.On("Connect", int64(7)).Return(conn, nil).Once()

	s := NewSession(7, &mockHistory{}, loggedIn("취준생"), connector, nil)
	require.NoError(t, s.Join())
	require.NoError(t, s.Join())

	assert.Equal(t, Joined, s.State())
	assert.Equal(t, "취준생", s.Nickname())
	connector.AssertExpectations(t)
}

func TestJoin_ConnectFailure(t *testing.T) {
	connector := &mockConnector{}
	connector.On("Connect", int64(7)).Return(nil, errors.New("bad url"))

	s := NewSession(7, &mockHistory{}, loggedIn("a"), connector, nil)
	assert.Error(t, s.Join())
	assert.Equal(t, NotJoined, s.State())
}

func TestSend_ValidationNeverPublishes(t *testing.T) {
	conn := &mockConn{}
	connector := &mockConnector{}
	connector.On("Connect", int64(1)).Return(conn, nil)

	s := NewSession(1, &mockHistory{}, loggedIn("a"), connector, nil)
	require.NoError(t, s.Join())

	assert.ErrorIs(t, s.Send(""), ErrEmptyMessage)
	assert.ErrorIs(t, s.Send(" \t\n "), ErrEmptyMessage)
	assert.ErrorIs(t, s.Send(strings.Repeat("가", models.MaxMessageLength+1)), ErrMessageTooLong)
	conn.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestSend_NotJoined(t *testing.T) {
	s := NewSession(1, &mockHistory{}, loggedIn("a"), &mockConnector{}, nil)
	assert.ErrorIs(t, s.Send("hello"), ErrNotJoined)
}

func TestSend_PublishesTrimmed(t *testing.T) {
	conn := &mockConn{}
	conn.On("Publish", models.ChatPublish{CompanyID: 3, Message: strings.Repeat("가", 300)}).Return(nil).Once()
	conn.On("Publish", models.ChatPublish{CompanyID: 3, Message: "안녕하세요"}).Return(errors.New("not connected")).Once()
	connector := &mockConnector{}
	connector.On("Connect", int64(3)).Return(conn, nil)

	s := NewSession(3, &mockHistory{}, loggedIn("a"), connector, nil)
	require.NoError(t, s.Join())

	assert.NoError(t, s.Send(strings.Repeat("가", 300)))
	assert.NoError(t, s.Send("  안녕하세요  "))
	conn.AssertExpectations(t)
	assert.Empty(t, s.Messages())
}

func TestMessages_ArrivalOrderWithoutDedup(t *testing.T) {
	conn := &mockConn{}
	connector := &mockConnector{}
	connector.On("Connect", int64(5)).Return(conn, nil)

	s := NewSession(5, &mockHistory{}, loggedIn("a"), connector, nil)
	require.NoError(t, s.Join())

	frames := []models.ChatMessage{
		{CompanyID: 5, SenderNickname: "b", Message: "3"},
		{CompanyID: 5, SenderNickname: "b", Message: "1"},
		{CompanyID: 5, SenderNickname: "b", Message: "1"},
		{CompanyID: 5, SenderNickname: "c", Message: "2"},
	}
	for i, f := range frames {
		connector.onMessage(f)
		assert.Len(t, s.Messages(), i+1)
	}
	assert.Equal(t, frames, s.Messages())

	select {
	case <-s.Events():
	default:
		t.Fatal("append was not signalled")
	}
}

func TestLeave_Disconnects(t *testing.T) {
	conn := &mockConn{}
	conn.On("Disconnect").Return().Once()
	connector := &mockConnector{}
	connector.On("Connect", int64(9)).Return(conn, nil)

	s := NewSession(9, &mockHistory{}, loggedIn("a"), connector, nil)
	require.NoError(t, s.Join())
	s.Leave()
	s.Leave()

	assert.Equal(t, NotJoined, s.State())
	assert.Empty(t, s.Nickname())
	assert.ErrorIs(t, s.Send("hi"), ErrNotJoined)
	conn.AssertExpectations(t)
}

// blockingConnector holds Connect open until release is closed.
type blockingConnector struct {
	entered chan struct{}
	release chan struct{}
	conn    Conn
}

func (b *blockingConnector) Connect(int64, func(models.ChatMessage)) (Conn, error) {
	close(b.entered)
	<-b.release
	return b.conn, nil
}

func TestLeave_DuringJoinReleasesConnection(t *testing.T) {
	conn := &mockConn{}
	conn.On("Disconnect").Return().Once()
	connector := &blockingConnector{entered: make(chan struct{}), release: make(chan struct{}), conn: conn}
	s := NewSession(5, &mockHistory{}, loggedIn("bora"), connector, nil)

	joined := make(chan error, 1)
	go func() { joined <- s.Join() }()
	<-connector.entered
	assert.Equal(t, Joining, s.State())

	s.Leave()
	close(connector.release)

	select {
	case err := <-joined:
		assert.ErrorIs(t, err, ErrLeft)
	case <-time.After(time.Second):
		t.Fatal("join did not return")
	}
	assert.Equal(t, NotJoined, s.State())
	assert.Empty(t, s.Nickname())
	assert.ErrorIs(t, s.Send("hi"), ErrNotJoined)
	conn.AssertExpectations(t)
}

func TestJoin_AfterAbandonedJoinKeepsNewConnection(t *testing.T) {
	stale := &mockConn{}
	stale.On("Disconnect").Return().Once()
	first := &blockingConnector{entered: make(chan struct{}), release: make(chan struct{}), conn: stale}
	s := NewSession(5, &mockHistory{}, loggedIn("bora"), first, nil)

	joined := make(chan error, 1)
	go func() { joined <- s.Join() }()
	<-first.entered
	s.Leave()

	fresh := &mockConn{}
	second := &mockConnector{}
	second.On("Connect", int64(5)).Return(fresh, nil)
	s.connector = second
	require.NoError(t, s.Join())

	close(first.release)
	assert.ErrorIs(t, <-joined, ErrLeft)
	assert.Equal(t, Joined, s.State())
	stale.AssertExpectations(t)
	fresh.AssertNotCalled(t, "Disconnect")
}

func TestLoadHistory(t *testing.T) {
	now := time.Now()
	history := &mockHistory{}
	history.On("RoomMessages", mock.Anything, int64(2), HistoryLimit).Return([]models.ChatMessage{
		{CompanyID: 2, SenderNickname: "x", Message: "old", Timestamp: now},
	}, nil)

	s := NewSession(2, history, auth.NewProvider(), &mockConnector{}, nil)
	require.NoError(t, s.LoadHistory(context.Background()))

	require.Len(t, s.Messages(), 1)
	assert.Equal(t, "old", s.Messages()[0].Message)
	assert.Equal(t, NotJoined, s.State())
}

func TestLoadHistory_CancelledDiscards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	history := &mockHistory{}
	history.On("RoomMessages", mock.Anything, int64(2), HistoryLimit).
		Run(func(mock.Arguments) { cancel() }).
		Return([]models.ChatMessage{{Message: "stale"}}, nil)

	s := NewSession(2, history, auth.NewProvider(), &mockConnector{}, nil)
	assert.ErrorIs(t, s.LoadHistory(ctx), context.Canceled)
	assert.Empty(t, s.Messages())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "joining", Joining.String())
}
