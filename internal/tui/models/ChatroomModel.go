package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eonjenawa/eonjenawa-cli/internal/chat"
	appmodels "github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/tui/styles"
)

const historyTimeout = 10 * time.Second

// ChatroomModel shows one company's room: the recent history, then the live log
// once joined.
type ChatroomModel struct {
	env       Env
	companyID int64
	back      tea.Model

	session  *chat.Session
	done     chan struct{}
	cancel   context.CancelFunc
	input    textarea.Model
	viewport viewport.Model
	width    int
	height   int

	status      string
	statusStyle lipgloss.Style
}

type (
	chatEventMsg      struct{}
	historyLoadedMsg  struct{ err error }
	joinResultMsg     struct{ err error }
	chatroomClosedMsg struct{}
)

// NewChatroomModel opens the room of companyID. Esc returns to back, or to the
// subscriptions screen when back is nil.
func NewChatroomModel(env Env, companyID int64, back tea.Model) ChatroomModel {
	input := textarea.New()
	input.Placeholder = "Type a message..."
	input.Focus()
	input.SetWidth(80)
	input.SetHeight(3)
	input.CharLimit = appmodels.MaxMessageLength
	input.ShowLineNumbers = false
	input.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(80, 16)

	return ChatroomModel{
		env:         env,
		companyID:   companyID,
		back:        back,
		session:     chat.NewSession(companyID, env.API, env.Identity, env.Rooms, env.Log),
		done:        make(chan struct{}),
		input:       input,
		viewport:    vp,
		status:      "Loading recent messages...",
		statusStyle: styles.StatusInfoStyle,
	}
}

func (m ChatroomModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.loadHistory(), waitForChatEvent(m.session.Events(), m.done)}
	if m.env.Identity.Current().Authenticated() {
		cmds = append(cmds, m.join())
	}
	return tea.Batch(cmds...)
}

func (m ChatroomModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w := msg.Width - 8
		if w < 20 {
			w = 20
		}
		h := msg.Height - 14
		if h < 5 {
			h = 5
		}
		m.input.SetWidth(w)
		m.viewport.Width = w
		m.viewport.Height = h
		m.refreshViewport()
		return m, nil

	case chatEventMsg:
		m.refreshViewport()
		return m, waitForChatEvent(m.session.Events(), m.done)

	case chatroomClosedMsg:
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), styles.StatusErrorStyle)
			return m, nil
		}
		if m.session.State() == chat.NotJoined {
			m.setStatus("Press Enter to join the conversation.", styles.StatusMessageStyle)
		}
		m.refreshViewport()
		return m, nil

	case joinResultMsg:
		var loginErr *chat.LoginRequiredError
		switch {
		case errors.Is(msg.err, chat.ErrLeft):
			return m, nil
		case errors.As(msg.err, &loginErr):
			m.Close()
			return m, Navigate(NewLoginModel(m.env, m.companyID))
		case msg.err != nil:
			m.setStatus(msg.err.Error(), styles.StatusErrorStyle)
		default:
			m.setStatus(fmt.Sprintf("Joined as %s", m.session.Nickname()), styles.StatusSuccessStyle)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.Close()
			return m, tea.Quit
		case "esc":
			m.Close()
			return m, Navigate(m.backModel())
		case "enter":
			if m.session.State() != chat.Joined {
				m.setStatus("Joining...", styles.StatusInfoStyle)
				return m, m.join()
			}
			switch err := m.session.Send(m.input.Value()); {
			case errors.Is(err, chat.ErrEmptyMessage):
				m.setStatus("Message is empty.", styles.StatusErrorStyle)
			case errors.Is(err, chat.ErrMessageTooLong):
				m.setStatus(fmt.Sprintf("Messages are limited to %d characters.", appmodels.MaxMessageLength), styles.StatusErrorStyle)
			case err != nil:
				m.setStatus(err.Error(), styles.StatusErrorStyle)
			default:
				m.input.Reset()
				m.setStatus("", styles.StatusMessageStyle)
			}
			return m, nil
		case "pgup", "pgdown", "up", "down":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Close leaves the room and stops listening for its events.
func (m ChatroomModel) Close() {
	select {
	case <-m.done:
		return
	default:
	}
	close(m.done)
	m.session.Leave()
}

func (m ChatroomModel) backModel() tea.Model {
	if m.back != nil {
		return m.back
	}
	if m.env.Identity.Current().Authenticated() {
		return NewSubscriptionsModel(m.env)
	}
	return NewLoginModel(m.env, 0)
}

func (m *ChatroomModel) setStatus(text string, style lipgloss.Style) {
	m.status = text
	m.statusStyle = style
}

func (m *ChatroomModel) refreshViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(renderMessages(m.session.Messages(), m.session.Nickname(), m.viewport.Width))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m ChatroomModel) loadHistory() tea.Cmd {
	session, done := m.session, m.done
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		go func() {
			select {
			case <-done:
				cancel()
			case <-ctx.Done():
			}
		}()
		return historyLoadedMsg{err: session.LoadHistory(ctx)}
	}
}

func (m ChatroomModel) join() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return joinResultMsg{err: session.Join()}
	}
}

func waitForChatEvent(events <-chan struct{}, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-events:
			return chatEventMsg{}
		case <-done:
			return chatroomClosedMsg{}
		}
	}
}

func (m ChatroomModel) View() string {
	title := styles.TitleStyle.Render(fmt.Sprintf("Company #%d chat", m.companyID))
	state := styles.MutedTextStyle.Render(m.session.State().String())

	var sb strings.Builder
	sb.WriteString(title + "  " + state + "\n\n")
	sb.WriteString(styles.PaneStyle.Render(m.viewport.View()) + "\n")
	sb.WriteString(styles.InputFieldFocusedStyle.Render(m.input.View()) + "\n")
	if m.status != "" {
		sb.WriteString(m.statusStyle.Render(m.status) + "\n")
	}

	help := strings.Join([]string{
		styles.RenderKeyBinding("Enter", "Send / Join"),
		styles.RenderKeyBinding("PgUp/PgDn", "Scroll"),
		styles.RenderKeyBinding("Esc", "Leave room"),
	}, styles.HelpStyle.Render("  "))
	sb.WriteString(styles.HelpStyle.Render(help))

	if m.width > 0 && m.height > 0 {
		return styles.AppStyle.Width(m.width).Height(m.height).Render(sb.String())
	}
	return styles.AppStyle.Render(sb.String())
}

// renderMessages lays out messages with a separator line whenever the local date
// changes. The user's own messages use a different nickname style.
func renderMessages(msgs []appmodels.ChatMessage, self string, width int) string {
	if len(msgs) == 0 {
		return styles.MutedTextStyle.Render("No messages yet. Say 안녕하세요!")
	}

	var sb strings.Builder
	var lastDay string
	for _, msg := range msgs {
		ts := msg.Timestamp.Local()
		if day := ts.Format("2006-01-02"); day != lastDay {
			lastDay = day
			sb.WriteString(styles.DateSeparatorStyle.Width(width).Render("── "+day+" ──") + "\n")
		}

		nameStyle := styles.NicknameStyle
		if self != "" && msg.SenderNickname == self {
			nameStyle = styles.OwnNicknameStyle
		}
		header := nameStyle.Render(msg.SenderNickname) + " " + styles.TimestampStyle.Render(ts.Format("15:04"))
		sb.WriteString(header + "\n")
		sb.WriteString(styles.MessageStyle.Render(msg.Message) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
