// Package styles holds the color theme and the lipgloss styles of the UI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a color scheme
type Theme struct {
	Name string

	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name:          "Tokyo Night",
	Background:    "#1a1b26",
	Foreground:    "#c0caf5",
	ForegroundDim: "#565f89",
	Primary:       "#7aa2f7",
	Secondary:     "#bb9af7",
	Accent:        "#7dcfff",
	Success:       "#9ece6a",
	Warning:       "#e0af68",
	Error:         "#f7768e",
	Info:          "#7aa2f7",
	Border:        "#3b4261",
	BorderFocus:   "#7aa2f7",
	Selection:     "#33467c",
}

// Current holds the active theme
var Current = TokyoNight

// MaxWidth caps the content width on wide terminals
const MaxWidth = 80

// ContentWidth returns min(terminalWidth, MaxWidth)
func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView centers content horizontally once the terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Center, lipgloss.Top, content)
}

// Styles holds the pre-computed styles of the UI
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	// Popup is the bordered box of dialogs and the help popup
	Popup         lipgloss.Style
	Button        lipgloss.Style
	ButtonPrimary lipgloss.Style
	InputFocused  lipgloss.Style
	Checkbox      lipgloss.Style

	// Today, Upcoming and Done headers; SectionDate heads a day of Done
	Section     lipgloss.Style
	SectionDate lipgloss.Style

	Tag          lipgloss.Style
	TaskDone     lipgloss.Style
	TaskDeleting lipgloss.Style
	Unsynced     lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
	ToastInfo    lipgloss.Style
}

// NewStyles builds the styles from the current theme
func NewStyles() *Styles {
	t := Current
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	boxed := func(border lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
	}
	toast := func(bg lipgloss.Color) lipgloss.Style {
		return fg(t.Background).Background(bg).Padding(0, 1)
	}

	return &Styles{
		Title:      fg(t.Primary).Bold(true),
		TitleMuted: fg(t.ForegroundDim),

		ListItem:     fg(t.Foreground).Padding(0, 2),
		ListSelected: fg(t.Primary).Background(t.Selection).Padding(0, 2).Bold(true),

		Popup:         boxed(t.Border).Padding(1, 2),
		Button:        boxed(t.Border).Foreground(t.Foreground).Padding(0, 2),
		ButtonPrimary: fg(t.Background).Background(t.Primary).Padding(0, 2).Bold(true),
		InputFocused:  boxed(t.BorderFocus).Foreground(t.Foreground).Padding(0, 1),
		Checkbox:      fg(t.Primary).Bold(true),

		Section:     fg(t.Secondary).Bold(true).MarginTop(1),
		SectionDate: fg(t.ForegroundDim).Padding(0, 2),

		Tag:          fg(t.Accent),
		TaskDone:     fg(t.ForegroundDim).Strikethrough(true),
		TaskDeleting: fg(t.Error).Faint(true),
		Unsynced:     fg(t.Warning),

		Help:    fg(t.ForegroundDim).Padding(1, 2),
		HelpKey: fg(t.Primary).Bold(true),

		ToastSuccess: toast(t.Success),
		ToastError:   toast(t.Error),
		ToastInfo:    toast(t.Info),
	}
}
