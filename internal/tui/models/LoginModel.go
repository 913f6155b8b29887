package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/chat"
	"github.com/eonjenawa/eonjenawa-cli/internal/tui/styles"
	"github.com/eonjenawa/eonjenawa-cli/internal/utils"
)

const loginTimeout = 15 * time.Second

// Focus stops on the login form.
const (
	focusNickname = iota
	focusPassword
	focusSubmit
	focusStops
)

// LoginModel logs in, registering unknown nicknames. With next set, a successful
// login goes to that company's chat room instead of the subscriptions screen.
type LoginModel struct {
	env  Env
	next int64

	nickname textinput.Model
	password textinput.Model
	focus    int

	width, height int
	submitting    bool
	status        string
	statusStyle   lipgloss.Style
}

type loginResultMsg struct {
	nickname string
	err      error
}

func newFormInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = "> "
	in.Width = 36
	in.PromptStyle = styles.InputPromptStyle
	in.TextStyle = styles.InputTextStyle
	in.PlaceholderStyle = styles.InputPlaceholderStyle
	in.Cursor.Style = styles.KeyStyle
	return in
}

func NewLoginModel(env Env, next int64) LoginModel {
	password := newFormInput("Password", 64)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	m := LoginModel{
		env:         env,
		next:        next,
		nickname:    newFormInput("Nickname (2-20 characters)", 20),
		password:    password,
		status:      "Log in, or pick a new nickname to register.",
		statusStyle: styles.StatusMessageStyle,
	}
	if next > 0 {
		m.status = fmt.Sprintf("Log in to continue to %s", chat.LoginPath(next))
	}
	m.setFocus(focusNickname)
	return m
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w := min(max(msg.Width-20, 28), 48)
		m.nickname.Width, m.password.Width = w, w
		return m, nil

	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.status = msg.err.Error()
			m.statusStyle = styles.StatusErrorStyle
			m.password.Reset()
			return m, m.setFocus(focusPassword)
		}
		m.env.Log.Info("logged in", zap.String("nickname", msg.nickname))
		if m.next > 0 {
			return m, Navigate(NewChatroomModel(m.env, m.next, nil))
		}
		return m, Navigate(NewSubscriptionsModel(m.env))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			if m.next > 0 {
				return m, Navigate(NewChatroomModel(m.env, m.next, nil))
			}
			return m, tea.Quit
		case "tab", "down":
			return m, m.setFocus((m.focus + 1) % focusStops)
		case "shift+tab", "up":
			return m, m.setFocus((m.focus + focusStops - 1) % focusStops)
		case "enter":
			if m.focus != focusSubmit {
				return m, m.setFocus(m.focus + 1)
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusNickname:
		m.nickname, cmd = m.nickname.Update(msg)
	case focusPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m LoginModel) submit() (tea.Model, tea.Cmd) {
	nickname := strings.TrimSpace(m.nickname.Value())
	password := m.password.Value()
	if nickname == "" || password == "" {
		m.status = "Nickname and password are required."
		m.statusStyle = styles.StatusErrorStyle
		return m, nil
	}
	m.submitting = true
	m.status = "Authenticating..."
	m.statusStyle = styles.StatusInfoStyle
	return m, login(m.env, nickname, password)
}

// setFocus moves focus to stop and restyles both inputs.
func (m *LoginModel) setFocus(stop int) tea.Cmd {
	m.focus = stop
	var cmd tea.Cmd
	for i, in := range []*textinput.Model{&m.nickname, &m.password} {
		if i != stop {
			in.Blur()
			in.PromptStyle, in.TextStyle = styles.InputPromptStyle, styles.InputTextStyle
			continue
		}
		in.PromptStyle, in.TextStyle = styles.InputPromptFocusedStyle, styles.InputTextFocusedStyle
		cmd = in.Focus()
	}
	return cmd
}

func (m LoginModel) View() string {
	field := func(in textinput.Model, stop int) string {
		if m.focus == stop {
			return styles.InputFieldFocusedStyle.Render(in.View())
		}
		return styles.InputFieldStyle.Render(in.View())
	}

	escLabel := "Quit"
	if m.next > 0 {
		escLabel = "Back to room"
	}
	help := strings.Join([]string{
		styles.RenderKeyBinding("Tab", "Next"),
		styles.RenderKeyBinding("Shift+Tab", "Previous"),
		styles.RenderKeyBinding("Enter", "Submit"),
		styles.RenderKeyBinding("Esc", escLabel),
	}, "  ")

	card := styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("언제나와"),
		styles.CardSubtitleStyle.Render("Company chat rooms and hiring alerts, in your terminal."),
		"",
		field(m.nickname, focusNickname),
		field(m.password, focusPassword),
		"",
		styles.RenderButton("Log in / Register", m.focus == focusSubmit),
		"",
		m.statusStyle.Render(m.status),
		"",
		styles.HelpStyle.Render(help),
	))

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
	}
	return styles.AppStyle.Render(card)
}

// login validates locally, then logs in or registers and publishes the identity.
func login(env Env, nickname, password string) tea.Cmd {
	return func() tea.Msg {
		if err := utils.ValidateNickname(nickname); err != nil {
			return loginResultMsg{err: err}
		}
		if err := utils.ValidatePassword(password); err != nil {
			return loginResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
		defer cancel()
		res, err := env.API.LoginOrRegister(ctx, nickname, password)
		if err != nil {
			return loginResultMsg{err: err}
		}
		if err := env.Identity.SetToken(res.AccessToken); err != nil {
			return loginResultMsg{err: fmt.Errorf("authentication failed: %w", err)}
		}
		return loginResultMsg{nickname: res.Nickname}
	}
}
