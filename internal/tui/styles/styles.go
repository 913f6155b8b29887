package styles

import (
	"github.com/charmbracelet/lipgloss"
)

type ColorType struct {
	value lipgloss.Color
}

func (c ColorType) Value() lipgloss.Color {
	return c.value
}

var (
	PrimaryColor   = ColorType{lipgloss.Color("#FF7A45")}
	SecondaryColor = ColorType{lipgloss.Color("#874BFD")}
	AccentColor    = ColorType{lipgloss.Color("#FFFFFF")}
	MutedColor     = ColorType{lipgloss.Color("#71717A")}

	RedColor  = ColorType{lipgloss.Color("9")}
	AquaColor = ColorType{lipgloss.Color("86")}
	LimeColor = ColorType{lipgloss.Color("#00FF77")}

	AppStyle = lipgloss.NewStyle().Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor.Value())

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(MutedColor.Value())

	MutedTextStyle = lipgloss.NewStyle().
			Foreground(MutedColor.Value())

	CardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(SecondaryColor.Value()).
			Padding(1, 3)

	CardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor.Value())

	CardSubtitleStyle = lipgloss.NewStyle().
				Foreground(MutedColor.Value()).
				Italic(true)

	PaneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor.Value()).
			Padding(0, 1)

	PaneFocusedStyle = PaneStyle.
				BorderForeground(SecondaryColor.Value())

	PaneTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor.Value())

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	KeyStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor.Value()).
			Bold(true)

	InputPromptStyle        = lipgloss.NewStyle().Foreground(MutedColor.Value())
	InputPromptFocusedStyle = lipgloss.NewStyle().Foreground(PrimaryColor.Value())
	InputTextStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#A1A1AA"))
	InputTextFocusedStyle   = lipgloss.NewStyle().Foreground(AccentColor.Value())
	InputPlaceholderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	InputFieldStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(MutedColor.Value()).
			Padding(0, 1)

	InputFieldFocusedStyle = InputFieldStyle.
				BorderForeground(PrimaryColor.Value())

	ButtonStyle = lipgloss.NewStyle().
			Foreground(MutedColor.Value()).
			Padding(0, 2)

	ButtonFocusedStyle = lipgloss.NewStyle().
				Foreground(AccentColor.Value()).
				Background(PrimaryColor.Value()).
				Bold(true).
				Padding(0, 2)

	StatusMessageStyle = lipgloss.NewStyle().Foreground(MutedColor.Value())
	StatusInfoStyle    = lipgloss.NewStyle().Foreground(AquaColor.Value())
	StatusSuccessStyle = lipgloss.NewStyle().Foreground(LimeColor.Value())
	StatusErrorStyle   = lipgloss.NewStyle().Foreground(RedColor.Value())

	StatusBarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(MutedColor.Value())

	ListItemTitleStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#D4D4D8"))
	ListItemTitleSelectedStyle = lipgloss.NewStyle().Foreground(PrimaryColor.Value()).Bold(true)
	ListItemMetaStyle          = lipgloss.NewStyle().Foreground(MutedColor.Value())

	UnreadBadgeStyle = lipgloss.NewStyle().
				Foreground(AccentColor.Value()).
				Background(RedColor.Value()).
				Padding(0, 1)

	MessageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			PaddingLeft(2)

	NicknameStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor.Value()).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(PrimaryColor.Value()).
			BorderLeft(true).
			PaddingLeft(1)

	OwnNicknameStyle = lipgloss.NewStyle().
				Foreground(LimeColor.Value()).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(LimeColor.Value()).
				BorderLeft(true).
				PaddingLeft(1)

	TimestampStyle = lipgloss.NewStyle().Foreground(MutedColor.Value()).Italic(true)

	DateSeparatorStyle = lipgloss.NewStyle().
				Foreground(MutedColor.Value()).
				Align(lipgloss.Center)

	NavStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF8800"))
)

// RenderKeyBinding renders "key description" for help bars.
func RenderKeyBinding(key, description string) string {
	return KeyStyle.Render(key) + " " + HelpStyle.Render(description)
}

func RenderButton(label string, focused bool) string {
	if focused {
		return ButtonFocusedStyle.Render("[ " + label + " ]")
	}
	return ButtonStyle.Render("[ " + label + " ]")
}
