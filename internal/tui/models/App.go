package models

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/eonjenawa/eonjenawa-cli/internal/auth"
	"github.com/eonjenawa/eonjenawa-cli/internal/chat"
	"github.com/eonjenawa/eonjenawa-cli/internal/tui/client"
)

// Env is what every screen needs to talk to the backend.
type Env struct {
	API      *client.APIClient
	Identity *auth.Provider
	Rooms    chat.Connector
	Log      *zap.Logger
}

type navigateMsg struct {
	next tea.Model
}

// Navigate replaces the current screen.
func Navigate(next tea.Model) tea.Cmd {
	return func() tea.Msg { return navigateMsg{next: next} }
}

type identityChangedMsg struct {
	identity auth.Identity
}

// App is the root model. It owns the current screen, replays the terminal size to
// new screens and sends the user to the login screen when they are logged out.
type App struct {
	env        *Env
	current    tea.Model
	width      int
	height     int
	identities chan auth.Identity
}

// NewApp wraps first. env is shared so that a screen can fill it in later, as the
// server-down screen does once the API is reachable.
func NewApp(env *Env, first tea.Model) App {
	identities := make(chan auth.Identity, 1)
	// The subscription lives as long as the program.
	env.Identity.Subscribe(func(id auth.Identity) {
		select {
		case identities <- id:
		default:
			// Only the latest change matters; drop the stale one.
			select {
			case <-identities:
			default:
			}
			identities <- id
		}
	})
	return App{env: env, current: first, identities: identities}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.current.Init(), GetSizeCmd(), waitForIdentity(a.identities))
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height

	case navigateMsg:
		a.current = msg.next
		return a, tea.Batch(a.current.Init(), a.resize())

	case identityChangedMsg:
		cmds := []tea.Cmd{waitForIdentity(a.identities)}
		if _, onLogin := a.current.(LoginModel); !msg.identity.Authenticated() && !onLogin {
			if c, ok := a.current.(interface{ Close() }); ok {
				c.Close()
			}
			a.current = NewLoginModel(*a.env, 0)
			cmds = append(cmds, a.current.Init(), a.resize())
		}
		return a, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	a.current, cmd = a.current.Update(msg)
	return a, cmd
}

func (a App) View() string {
	return a.current.View()
}

func (a App) resize() tea.Cmd {
	if a.width == 0 || a.height == 0 {
		return nil
	}
	w, h := a.width, a.height
	return func() tea.Msg { return tea.WindowSizeMsg{Width: w, Height: h} }
}

func waitForIdentity(ch <-chan auth.Identity) tea.Cmd {
	return func() tea.Msg {
		return identityChangedMsg{identity: <-ch}
	}
}

// GetSizeCmd reports the terminal size up front, for terminals that send no
// initial resize event.
func GetSizeCmd() tea.Cmd {
	return func() tea.Msg {
		w, h, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			return nil
		}
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}
