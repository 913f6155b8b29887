package models

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eonjenawa/eonjenawa-cli/internal/tui/styles"
)

// PromptAction is what CompanyPrompt does with the entered id.
type PromptAction int

const (
	PromptOpenRoom PromptAction = iota
	PromptSubscribe
)

// CompanyPrompt asks for a company id, then opens its room or subscribes to it.
type CompanyPrompt struct {
	env      Env
	action   PromptAction
	returnTo tea.Model

	input      textinput.Model
	submitting bool
	width      int
	height     int
	status     string
	statusOkay bool
}

type subscribeDoneMsg struct{ err error }

func NewCompanyPrompt(env Env, action PromptAction, returnTo tea.Model) CompanyPrompt {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "company id (e.g., 3)"
	in.CharLimit = 19
	in.PromptStyle = styles.InputPromptFocusedStyle
	in.TextStyle = styles.InputTextFocusedStyle
	in.PlaceholderStyle = styles.InputPlaceholderStyle
	in.Cursor.Style = styles.KeyStyle
	in.Focus()

	return CompanyPrompt{
		env:      env,
		action:   action,
		returnTo: returnTo,
		input:    in,
	}
}

func (m CompanyPrompt) Init() tea.Cmd { return textinput.Blink }

func (m CompanyPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		fieldWidth := m.width - 20
		if fieldWidth > 48 {
			fieldWidth = 48
		}
		if fieldWidth < 28 {
			fieldWidth = 28
		}
		m.input.Width = fieldWidth
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.submitting {
				return m, nil
			}
			return m, Navigate(m.returnTo)
		case "enter":
			if m.submitting {
				return m, nil
			}
			companyID, ok := m.parse()
			if !ok {
				return m, nil
			}
			if m.action == PromptOpenRoom {
				return m, Navigate(NewChatroomModel(m.env, companyID, m.returnTo))
			}
			m.submitting = true
			m.status = "Subscribing..."
			m.statusOkay = true
			return m, subscribeCmd(m.env, companyID)
		}
	case subscribeDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.status = msg.err.Error()
			m.statusOkay = false
			return m, nil
		}
		// The returning screen reloads in Init.
		return m, Navigate(m.returnTo)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *CompanyPrompt) parse() (int64, bool) {
	ident := strings.TrimSpace(m.input.Value())
	if ident == "" {
		m.status = "Enter a company id"
		m.statusOkay = false
		return 0, false
	}
	id, err := strconv.ParseInt(ident, 10, 64)
	if err != nil || id <= 0 {
		m.status = "Company id must be a positive number"
		m.statusOkay = false
		return 0, false
	}
	return id, true
}

func (m CompanyPrompt) View() string {
	title, subtitle, action := "Open Chat Room", "Enter a company id to open its room", "Open"
	if m.action == PromptSubscribe {
		title, subtitle, action = "Subscribe", "Enter a company id to get its notifications", "Subscribe"
	}
	field := styles.InputFieldFocusedStyle.Render(m.input.View())

	statusView := ""
	if m.status != "" {
		if m.statusOkay {
			statusView = styles.StatusSuccessStyle.Render(m.status)
		} else {
			statusView = styles.StatusErrorStyle.Render(m.status)
		}
	}

	help := styles.HelpStyle.Render(strings.Join([]string{
		styles.RenderKeyBinding("Enter", action),
		styles.RenderKeyBinding("Esc", "Cancel"),
	}, styles.HelpStyle.Render("  ")))

	content := strings.Join([]string{
		styles.CardTitleStyle.Render(title),
		styles.CardSubtitleStyle.Render(subtitle),
		field, statusView, help,
	}, "\n\n")
	card := styles.CardStyle.Render(content)
	if m.width > 0 && m.height > 0 {
		centered := lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
		return styles.AppStyle.Width(m.width).Height(m.height).Render(centered)
	}
	return styles.AppStyle.Render(card)
}

func subscribeCmd(env Env, companyID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_, err := env.API.CreateSubscription(ctx, companyID)
		return subscribeDoneMsg{err: err}
	}
}
