package models

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eonjenawa/eonjenawa-cli/internal/tui/styles"
)

// ServerDownModel is shown when the API is unreachable at startup. Retry rebuilds
// the first real screen.
type ServerDownModel struct {
	retry    func() (tea.Model, error)
	retrying bool
	lastErr  string
	width    int
	height   int
}

type retryResultMsg struct {
	next tea.Model
	err  error
}

func NewServerDownModel(retry func() (tea.Model, error)) ServerDownModel {
	return ServerDownModel{retry: retry}
}

func (m ServerDownModel) Init() tea.Cmd { return nil }

func (m ServerDownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case retryResultMsg:
		m.retrying = false
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			return m, nil
		}
		return m, Navigate(msg.next)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.retrying || m.retry == nil {
				return m, nil
			}
			m.retrying = true
			retry := m.retry
			return m, func() tea.Msg {
				next, err := retry()
				return retryResultMsg{next: next, err: err}
			}
		}
	}
	return m, nil
}

func (m ServerDownModel) View() string {
	cw := min(max(m.width-8, 32), 64)
	if m.width > 0 && m.width < cw {
		cw = m.width
	}
	center := func(line string) string {
		return lipgloss.PlaceHorizontal(cw, lipgloss.Center, line)
	}

	body := "We can’t reach the server right now. Please try again later."
	if m.retrying {
		body = "Retrying..."
	}
	lines := []string{
		center(styles.TitleStyle.Render("언제나와")),
		"",
		center(styles.MutedTextStyle.Render(body)),
	}
	if m.lastErr != "" {
		lines = append(lines, "", center(styles.StatusErrorStyle.Render(m.lastErr)))
	}
	help := styles.RenderKeyBinding("r", "Retry") + "  " + styles.RenderKeyBinding("q", "Quit")
	lines = append(lines, "", center(styles.HelpStyle.Render(help)))

	card := styles.CardStyle.Width(cw).Render(strings.Join(lines, "\n"))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
	}
	return styles.AppStyle.Render(card)
}
