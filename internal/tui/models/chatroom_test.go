package models

import (
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eonjenawa/eonjenawa-cli/internal/auth"
	"github.com/eonjenawa/eonjenawa-cli/internal/chat"
	appmodels "github.com/eonjenawa/eonjenawa-cli/internal/models"
)

type fakeRoomConn struct {
	disconnects atomic.Int32
}

func (c *fakeRoomConn) Publish(appmodels.ChatPublish) error { return nil }
func (c *fakeRoomConn) Disconnect()                         { c.disconnects.Add(1) }

// fakeRooms hands out conn. When release is set, Connect blocks until it is closed.
type fakeRooms struct {
	conn    *fakeRoomConn
	entered chan struct{}
	release chan struct{}
}

func (r *fakeRooms) Connect(int64, func(appmodels.ChatMessage)) (chat.Conn, error) {
	if r.release != nil {
		close(r.entered)
		<-r.release
	}
	return r.conn, nil
}

func joinedRoom(t *testing.T) (*Env, ChatroomModel, *fakeRoomConn) {
	t.Helper()
	env := testEnv()
	env.Identity.Set(auth.Identity{UserID: 1, Nickname: "취준생"})
	conn := &fakeRoomConn{}
	env.Rooms = &fakeRooms{conn: conn}

	m := NewChatroomModel(*env, 4, NewServerDownModel(nil))
	model, _ := m.Update(m.join()())
	room, ok := model.(ChatroomModel)
	require.True(t, ok)
	require.Equal(t, chat.Joined, room.session.State())
	return env, room, conn
}

func TestChatroom_EscLeavesRoom(t *testing.T) {
	_, room, conn := joinedRoom(t)

	_, cmd := room.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	nav, ok := cmd().(navigateMsg)
	require.True(t, ok)
	assert.IsType(t, ServerDownModel{}, nav.next)
	assert.Equal(t, int32(1), conn.disconnects.Load())
	assert.Equal(t, chat.NotJoined, room.session.State())
}

func TestChatroom_CtrlCLeavesRoom(t *testing.T) {
	_, room, conn := joinedRoom(t)

	room.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, int32(1), conn.disconnects.Load())
}

func TestChatroom_LogoutLeavesRoom(t *testing.T) {
	env, room, conn := joinedRoom(t)
	app := NewApp(env, room)

	env.Identity.Clear()
	model, _ := app.Update(waitForIdentity(app.identities)())

	_, onLogin := model.(App).current.(LoginModel)
	assert.True(t, onLogin)
	assert.Equal(t, int32(1), conn.disconnects.Load())
}

func TestChatroom_CloseTwice(t *testing.T) {
	_, room, conn := joinedRoom(t)
	room.Close()
	room.Close()
	assert.Equal(t, int32(1), conn.disconnects.Load())
}

func TestChatroom_EscDuringJoinReleasesConnection(t *testing.T) {
	env := testEnv()
	env.Identity.Set(auth.Identity{UserID: 1, Nickname: "취준생"})
	conn := &fakeRoomConn{}
	rooms := &fakeRooms{conn: conn, entered: make(chan struct{}), release: make(chan struct{})}
	env.Rooms = rooms

	room := NewChatroomModel(*env, 4, NewServerDownModel(nil))
	results := make(chan tea.Msg, 1)
	join := room.join()
	go func() { results <- join() }()
	<-rooms.entered

	room.Update(tea.KeyMsg{Type: tea.KeyEsc})
	close(rooms.release)

	select {
	case msg := <-results:
		res, ok := msg.(joinResultMsg)
		require.True(t, ok)
		assert.ErrorIs(t, res.err, chat.ErrLeft)
	case <-time.After(time.Second):
		t.Fatal("join did not return")
	}
	assert.Equal(t, int32(1), conn.disconnects.Load())
	assert.Equal(t, chat.NotJoined, room.session.State())
}
