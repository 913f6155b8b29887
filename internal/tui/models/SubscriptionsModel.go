package models

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/debounce"
	appmodels "github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/notifications"
	"github.com/eonjenawa/eonjenawa-cli/internal/tui/styles"
)

const (
	refreshDelay     = 250 * time.Millisecond
	operationTimeout = 30 * time.Second
)

// SubscriptionsModel is the home screen: subscribed companies, unread companies
// first, and the notifications of the selected company.
type SubscriptionsModel struct {
	env       Env
	agg       *notifications.Aggregator
	refresher *debounce.Debouncer

	subscriptions list.Model
	width         int
	height        int
	flashMessage  string
	flashStyle    lipgloss.Style
	busy          bool
}

type (
	refreshedMsg struct{ err error }
	operationMsg struct {
		done string
		err  error
	}
)

func NewSubscriptionsModel(env Env) SubscriptionsModel {
	subs := list.New([]list.Item{}, subscriptionDelegate{}, 40, 18)
	subs.SetShowHelp(false)
	subs.SetShowTitle(false)
	subs.SetShowStatusBar(false)
	subs.SetShowPagination(false)
	subs.SetFilteringEnabled(false)
	subs.DisableQuitKeybindings()

	return SubscriptionsModel{
		env:           env,
		agg:           notifications.New(env.API, notifications.DefaultPageSize, env.Log),
		refresher:     debounce.New(refreshDelay),
		subscriptions: subs,
		flashMessage:  "Loading subscriptions...",
		flashStyle:    styles.StatusInfoStyle,
		busy:          true,
	}
}

func (m SubscriptionsModel) Init() tea.Cmd {
	return m.run("", func(ctx context.Context) error { return m.agg.Refresh(ctx) })
}

func (m SubscriptionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := msg.Height - 10
		if listHeight < 8 {
			listHeight = 8
		}
		m.subscriptions.SetSize(m.paneWidth(), listHeight)
		return m, nil

	case refreshedMsg:
		return m.applyResult("Refreshed", msg.err), nil

	case operationMsg:
		return m.applyResult(msg.done, msg.err), nil

	case tea.KeyMsg:
		if m.busy {
			if k := msg.String(); k == "ctrl+c" || k == "q" {
				m.Close()
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.Close()
			return m, tea.Quit

		case "r":
			m.flashMessage = "Refreshing..."
			m.flashStyle = styles.StatusInfoStyle
			return m, m.debouncedRefresh()

		case "enter":
			if sub, ok := m.selected(); ok {
				return m, Navigate(NewChatroomModel(m.env, sub.CompanyID, m))
			}
			return m, nil

		case "d":
			sub, ok := m.selected()
			if !ok {
				return m, nil
			}
			return m.start(fmt.Sprintf("Dismissed %s notifications", sub.CompanyName), func(ctx context.Context) error {
				return m.agg.DismissCompany(ctx, sub.CompanyID)
			})

		case "D":
			return m.start("All notifications dismissed", m.agg.DismissAll)

		case "m":
			subsMore, notifsMore := m.agg.HasMore()
			if !subsMore && !notifsMore {
				m.flashMessage = "Everything is loaded."
				m.flashStyle = styles.StatusMessageStyle
				return m, nil
			}
			return m.start("Loaded more", func(ctx context.Context) error {
				if err := m.agg.LoadMoreSubscriptions(ctx); err != nil {
					return err
				}
				return m.agg.LoadMoreNotifications(ctx)
			})

		case "x":
			sub, ok := m.selected()
			if !ok {
				return m, nil
			}
			return m.start(fmt.Sprintf("Unsubscribed from %s", sub.CompanyName), func(ctx context.Context) error {
				return m.agg.Unsubscribe(ctx, sub.SubscriptionID)
			})

		case "s":
			return m, Navigate(NewCompanyPrompt(m.env, PromptSubscribe, m))

		case "o":
			return m, Navigate(NewCompanyPrompt(m.env, PromptOpenRoom, m))

		case "p":
			return m, Navigate(NewReportModel(m.env, m))

		case "L":
			m.Close()
			return m, logout(m.env)
		}
	}

	var cmd tea.Cmd
	m.subscriptions, cmd = m.subscriptions.Update(msg)
	return m, cmd
}

// Close cancels any pending refresh.
func (m SubscriptionsModel) Close() {
	m.refresher.Stop()
}

func (m SubscriptionsModel) selected() (appmodels.NotificationSubscription, bool) {
	it, ok := m.subscriptions.SelectedItem().(subscriptionItem)
	if !ok {
		return appmodels.NotificationSubscription{}, false
	}
	return it.sub, true
}

func (m SubscriptionsModel) start(done string, op func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	m.busy = true
	m.flashMessage = "Working..."
	m.flashStyle = styles.StatusInfoStyle
	return m, m.run(done, op)
}

func (m SubscriptionsModel) run(done string, op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()
		return operationMsg{done: done, err: op(ctx)}
	}
}

// debouncedRefresh reloads both collections once key presses settle. A refresh
// superseded by a later press produces no message.
func (m SubscriptionsModel) debouncedRefresh() tea.Cmd {
	agg := m.agg
	result := make(chan error, 1)
	task := m.refresher.Do(func(ctx context.Context) {
		result <- agg.Refresh(ctx)
	})
	return func() tea.Msg {
		select {
		case err := <-result:
			if task.Context().Err() != nil {
				return nil
			}
			return refreshedMsg{err: err}
		case <-task.Context().Done():
			return nil
		}
	}
}

func (m SubscriptionsModel) applyResult(done string, err error) SubscriptionsModel {
	m.busy = false
	if err != nil {
		m.flashMessage = err.Error()
		m.flashStyle = styles.StatusErrorStyle
		return m
	}

	subs := m.agg.Subscriptions()
	items := make([]list.Item, len(subs))
	for i, sub := range subs {
		items[i] = subscriptionItem{sub: sub, unread: m.agg.UnreadCount(sub.CompanyID)}
	}
	m.subscriptions.SetItems(items)

	switch {
	case done != "":
		m.flashMessage = done
	case len(subs) == 0:
		m.flashMessage = "No subscriptions yet. Press s to subscribe to a company."
	default:
		m.flashMessage = fmt.Sprintf("%d subscriptions, %d notifications", len(subs), len(m.agg.Notifications()))
	}
	m.flashStyle = styles.StatusSuccessStyle
	return m
}

func (m SubscriptionsModel) paneWidth() int {
	if m.width <= 0 {
		return 40
	}
	paneWidth := (m.width - 10) / 2
	if paneWidth < 28 {
		paneWidth = 28
	}
	return paneWidth
}

func (m SubscriptionsModel) View() string {
	nickname := m.env.Identity.Current().Nickname
	header := styles.TitleStyle.Render(fmt.Sprintf("언제나와 · %s", nickname))
	subtitle := styles.SubtitleStyle.Render("Subscribed companies and their notifications.")

	left := styles.PaneFocusedStyle.Width(m.paneWidth()).Render(
		styles.PaneTitleStyle.Render("Subscriptions") + "\n\n" + m.subscriptions.View(),
	)
	right := styles.PaneStyle.Width(m.paneWidth()).Render(
		styles.PaneTitleStyle.Render("Notifications") + "\n\n" + m.notificationsView(),
	)
	columns := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	helpItems := []string{
		styles.RenderKeyBinding("Enter", "Open room"),
		styles.RenderKeyBinding("o", "Room by id"),
		styles.RenderKeyBinding("s", "Subscribe"),
		styles.RenderKeyBinding("x", "Unsubscribe"),
		styles.RenderKeyBinding("d", "Dismiss company"),
		styles.RenderKeyBinding("D", "Dismiss all"),
		styles.RenderKeyBinding("m", "More"),
		styles.RenderKeyBinding("r", "Refresh"),
		styles.RenderKeyBinding("p", "Report"),
		styles.RenderKeyBinding("L", "Log out"),
		styles.RenderKeyBinding("q", "Quit"),
	}
	help := strings.Join(helpItems, styles.HelpStyle.Render("  "))

	footer := styles.StatusBarStyle.Render(m.flashStyle.Render(m.flashMessage) + "\n" + styles.HelpStyle.Render(help))

	layout := lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "", columns, "", footer)
	if m.width > 0 && m.height > 0 {
		return styles.AppStyle.Width(m.width).Height(m.height).Render(layout)
	}
	return styles.AppStyle.Render(layout)
}

func (m SubscriptionsModel) notificationsView() string {
	sub, ok := m.selected()
	if !ok {
		return styles.MutedTextStyle.Render("Select a company.")
	}
	group := m.agg.Grouped()[sub.CompanyID]
	if len(group) == 0 {
		return styles.MutedTextStyle.Render("You're all caught up.")
	}

	var sb strings.Builder
	for _, n := range group {
		sb.WriteString(styles.ListItemTitleStyle.Render(n.SummaryText) + "\n")
		meta := fmt.Sprintf("%s · first by %s · %s", n.EventDate, n.FirstReporterNickname, formatRelativeTime(n.UpdatedAt))
		sb.WriteString("  " + styles.ListItemMetaStyle.Render(meta) + "\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

type subscriptionItem struct {
	sub    appmodels.NotificationSubscription
	unread int
}

func (s subscriptionItem) FilterValue() string { return s.sub.CompanyName }

type subscriptionDelegate struct{}

func (d subscriptionDelegate) Height() int                             { return 1 }
func (d subscriptionDelegate) Spacing() int                            { return 0 }
func (d subscriptionDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d subscriptionDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(subscriptionItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()
	titleStyle := styles.ListItemTitleStyle
	pointer := "  "
	if isSelected {
		titleStyle = styles.ListItemTitleSelectedStyle
		pointer = styles.KeyStyle.Render("> ")
	}

	line := pointer + titleStyle.Render(item.sub.CompanyName)
	if item.unread > 0 {
		line += " " + styles.UnreadBadgeStyle.Render(fmt.Sprintf("%d", item.unread))
	}
	fmt.Fprint(w, line)
}

func logout(env Env) tea.Cmd {
	return func() tea.Msg {
		if err := env.API.Logout(); err != nil {
			env.Log.Warn("token file not removed", zap.Error(err))
		}
		// The app switches to the login screen on this change.
		env.Identity.Clear()
		return nil
	}
}

func formatRelativeTime(t time.Time) string {
	now := time.Now()
	if t.IsZero() {
		return "sometime"
	}
	if t.After(now) {
		return fmt.Sprintf("in %s", humanizeDuration(t.Sub(now)))
	}
	return fmt.Sprintf("%s ago", humanizeDuration(now.Sub(t)))
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 1 {
			secs = 1
		}
		return fmt.Sprintf("%ds", secs)
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	days := int(d.Hours() / 24)
	return fmt.Sprintf("%dd", days)
}
