package models

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	appmodels "github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/pkg/validate"
	"github.com/eonjenawa/eonjenawa-cli/internal/tui/styles"
)

// ReportModel submits a crowd report about a company's hiring event. Subscribers
// of the company are notified.
type ReportModel struct {
	env      Env
	returnTo tea.Model

	inputs     []textinput.Model
	focusIndex int
	submitting bool
	status     string
	statusOkay bool
}

type reportDoneMsg struct{ err error }

func NewReportModel(env Env, returnTo tea.Model) ReportModel {
	company := textinput.New()
	company.Prompt = "Company id: "
	company.PromptStyle = styles.InputPromptFocusedStyle
	company.TextStyle = styles.InputTextFocusedStyle
	company.CharLimit = 19
	company.Focus()

	date := textinput.New()
	date.Prompt = "Event date: "
	date.PromptStyle = styles.InputPromptStyle
	date.TextStyle = styles.InputTextStyle
	date.Placeholder = time.Now().Format("2006-01-02")
	date.CharLimit = 10

	message := textinput.New()
	message.Prompt = "Message: "
	message.PromptStyle = styles.InputPromptStyle
	message.TextStyle = styles.InputTextStyle
	message.Placeholder = "optional"
	message.CharLimit = 300

	return ReportModel{
		env:      env,
		returnTo: returnTo,
		inputs:   []textinput.Model{company, date, message},
	}
}

func (m ReportModel) Init() tea.Cmd { return textinput.Blink }

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.status = msg.err.Error()
			m.statusOkay = false
			return m, nil
		}
		return m, Navigate(m.returnTo)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.submitting {
				return m, nil
			}
			return m, Navigate(m.returnTo)
		case "tab", "shift+tab":
			m.inputs[m.focusIndex].Blur()
			m.inputs[m.focusIndex].PromptStyle = styles.InputPromptStyle
			if msg.String() == "tab" {
				m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
			} else {
				m.focusIndex = (m.focusIndex + len(m.inputs) - 1) % len(m.inputs)
			}
			m.inputs[m.focusIndex].PromptStyle = styles.InputPromptFocusedStyle
			return m, m.inputs[m.focusIndex].Focus()
		case "enter":
			if m.submitting {
				return m, nil
			}
			report, ok := m.build()
			if !ok {
				return m, nil
			}
			m.submitting = true
			m.status = "Sending report..."
			m.statusOkay = true
			return m, reportCmd(m.env, report)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *ReportModel) build() (appmodels.Report, bool) {
	companyID, err := strconv.ParseInt(strings.TrimSpace(m.inputs[0].Value()), 10, 64)
	if err != nil {
		m.status = "Company id must be a number"
		m.statusOkay = false
		return appmodels.Report{}, false
	}
	date := strings.TrimSpace(m.inputs[1].Value())
	if date == "" {
		date = m.inputs[1].Placeholder
	}
	report := appmodels.Report{
		CompanyID: companyID,
		EventDate: date,
		Message:   strings.TrimSpace(m.inputs[2].Value()),
	}
	if err := validate.Struct(report); err != nil {
		m.status = err.Error()
		m.statusOkay = false
		return appmodels.Report{}, false
	}
	return report, true
}

func (m ReportModel) View() string {
	fields := make([]string, len(m.inputs))
	for i := range m.inputs {
		if i == m.focusIndex {
			fields[i] = styles.InputFieldFocusedStyle.Render(m.inputs[i].View())
		} else {
			fields[i] = styles.InputFieldStyle.Render(m.inputs[i].View())
		}
	}

	status := ""
	if m.status != "" {
		if m.statusOkay {
			status = styles.StatusSuccessStyle.Render(m.status)
		} else {
			status = styles.StatusErrorStyle.Render(m.status)
		}
	}

	return styles.AppStyle.Render(strings.Join([]string{
		styles.CardTitleStyle.Render("Report a hiring event"),
		strings.Join(fields, "\n"),
		styles.RenderButton("Send", true),
		status,
		styles.HelpStyle.Render(strings.Join([]string{
			styles.RenderKeyBinding("Tab", "Next field"),
			styles.RenderKeyBinding("Enter", "Send"),
			styles.RenderKeyBinding("Esc", "Back"),
		}, styles.HelpStyle.Render("  "))),
	}, "\n\n"))
}

func reportCmd(env Env, report appmodels.Report) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return reportDoneMsg{err: env.API.Report(ctx, report)}
	}
}
