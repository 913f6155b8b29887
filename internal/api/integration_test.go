package api_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/api"
	"github.com/eonjenawa/eonjenawa-cli/internal/auth"
	"github.com/eonjenawa/eonjenawa-cli/internal/chat"
	"github.com/eonjenawa/eonjenawa-cli/internal/config"
	"github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/notifications"
	"github.com/eonjenawa/eonjenawa-cli/internal/tui/client"
)

func startBackend(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		WSPath:         "/ws-stomp",
		JWTSecret:      "integration-test-secret-01",
		AllowedOrigins: []string{"*"},
		ReconnectDelay: 100 * time.Millisecond,
	}
	srv, err := api.NewServer(cfg, zap.NewNop())
	require.NoError(t, err)
	base, err := srv.StartLocal()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	cfg.APIBaseURL = base
	return cfg
}

type user struct {
	api       *client.APIClient
	identity  *auth.Provider
	connector *client.RoomConnector
}

func login(t *testing.T, cfg *config.Config, nickname string) *user {
	t.Helper()
	ucfg := *cfg
	ucfg.TokenPath = filepath.Join(t.TempDir(), "tokens.json")
	c, err := client.NewAPIClient(context.Background(), &ucfg, nil)
	require.NoError(t, err)

	res, err := c.LoginOrRegister(context.Background(), nickname, "secret12!")
	require.NoError(t, err)
	p := auth.NewProvider()
	require.NoError(t, p.SetToken(res.AccessToken))

	brokerURL, err := ucfg.BrokerURL()
	require.NoError(t, err)
	return &user{
		api:       c,
		identity:  p,
		connector: client.NewRoomConnector(brokerURL, c.ConnectToken, cfg.ReconnectDelay, nil),
	}
}

// joinedSession joins a room and waits until the broker session is up.
func (u *user) joinedSession(t *testing.T, companyID int64) *chat.Session {
	t.Helper()
	var conn chat.Conn
	connector := connectorFunc(func(id int64, onMessage func(models.ChatMessage)) (chat.Conn, error) {
		c, err := u.connector.Connect(id, onMessage)
		conn = c
		return c, err
	})
	s := chat.NewSession(companyID, u.api, u.identity, connector, nil)
	require.NoError(t, s.Join())
	t.Cleanup(s.Leave)

	require.Eventually(t, func() bool {
		return conn.(interface{ Connected() bool }).Connected()
	}, 5*time.Second, 10*time.Millisecond)
	return s
}

type connectorFunc func(int64, func(models.ChatMessage)) (chat.Conn, error)

func (f connectorFunc) Connect(id int64, onMessage func(models.ChatMessage)) (chat.Conn, error) {
	return f(id, onMessage)
}

func TestChat_EchoWithNicknameAndTimestamp(t *testing.T) {
	cfg := startBackend(t)
	u := login(t, cfg, "취준생")
	s := u.joinedSession(t, 1)

	start := time.Now()
	require.NoError(t, s.Send("안녕하세요"))

	require.Eventually(t, func() bool { return len(s.Messages()) == 1 }, 5*time.Second, 10*time.Millisecond)
	end := time.Now()

	msg := s.Messages()[0]
	assert.Equal(t, "안녕하세요", msg.Message)
	assert.Equal(t, "취준생", msg.SenderNickname)
	assert.Equal(t, int64(1), msg.CompanyID)
	assert.False(t, msg.Timestamp.Before(start.Add(-time.Second)))
	assert.False(t, msg.Timestamp.After(end.Add(time.Second)))

	// A visitor sees it in the history without joining.
	visitor := chat.NewSession(1, u.api, auth.NewProvider(), u.connector, nil)
	require.NoError(t, visitor.LoadHistory(context.Background()))
	require.Len(t, visitor.Messages(), 1)
	assert.ErrorIs(t, visitor.Join(), chat.ErrLoginRequired)
}

func TestChat_RoomIsolation(t *testing.T) {
	cfg := startBackend(t)
	u := login(t, cfg, "하나")
	room1 := u.joinedSession(t, 1)
	room2 := u.joinedSession(t, 2)

	require.NoError(t, room1.Send("room one only"))
	require.NoError(t, room2.Send("room two only"))

	require.Eventually(t, func() bool {
		return len(room1.Messages()) == 1 && len(room2.Messages()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	require.Len(t, room1.Messages(), 1)
	require.Len(t, room2.Messages(), 1)
	assert.Equal(t, "room one only", room1.Messages()[0].Message)
	assert.Equal(t, "room two only", room2.Messages()[0].Message)
}

func TestChat_ArrivalOrderAcrossUsers(t *testing.T) {
	cfg := startBackend(t)
	alice := login(t, cfg, "alice")
	bob := login(t, cfg, "bob")
	a := alice.joinedSession(t, 3)
	b := bob.joinedSession(t, 3)

	for i := 0; i < 5; i++ {
		require.NoError(t, a.Send(fmt.Sprintf("msg %d", i)))
	}
	require.Eventually(t, func() bool { return len(b.Messages()) == 5 }, 5*time.Second, 10*time.Millisecond)
	for i, m := range b.Messages() {
		assert.Equal(t, fmt.Sprintf("msg %d", i), m.Message)
		assert.Equal(t, "alice", m.SenderNickname)
	}
}

func TestNotifications_PaginationAndDismissal(t *testing.T) {
	cfg := startBackend(t)
	ctx := context.Background()
	subscriber := login(t, cfg, "구독자")
	reporter := login(t, cfg, "제보자")

	agg := notifications.New(subscriber.api, 0, nil)
	require.NoError(t, agg.Subscribe(ctx, 1))
	require.NoError(t, agg.Subscribe(ctx, 2))

	for day := 1; day <= 10; day++ {
		require.NoError(t, reporter.api.Report(ctx, models.Report{CompanyID: 1, EventDate: fmt.Sprintf("2026-04-%02d", day)}))
	}
	for day := 1; day <= 3; day++ {
		require.NoError(t, reporter.api.Report(ctx, models.Report{CompanyID: 2, EventDate: fmt.Sprintf("2026-05-%02d", day)}))
	}

	page0, err := subscriber.api.Notifications(ctx, 0, 12)
	require.NoError(t, err)
	assert.Len(t, page0.Content, 12)
	assert.True(t, page0.HasNext)
	assert.Equal(t, 13, page0.TotalElements)

	page1, err := subscriber.api.Notifications(ctx, 1, 12)
	require.NoError(t, err)
	assert.Len(t, page1.Content, 1)
	assert.False(t, page1.HasNext)

	require.NoError(t, agg.Refresh(ctx))
	require.NoError(t, agg.LoadMoreNotifications(ctx))
	assert.Len(t, agg.Notifications(), 13)
	assert.True(t, agg.HasUnread(1))

	require.NoError(t, agg.LoadNotifications(ctx, 0, false))
	require.NoError(t, agg.LoadMoreNotifications(ctx))
	require.NoError(t, agg.DismissCompany(ctx, 2))
	assert.Empty(t, agg.Grouped()[2])
	assert.Len(t, agg.Grouped()[1], 10)

	require.NoError(t, agg.DismissAll(ctx))
	assert.Empty(t, agg.Notifications())

	err = subscriber.api.DeleteNotification(ctx, page0.Content[0].NotificationID)
	require.Error(t, err)
}
