package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorError     = lipgloss.Color("196")
	colorWarn      = lipgloss.Color("214")
)

// CursorItem style for the channel under the cursor.
var CursorItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary)

// NormalItem style for unselected channels.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("252"))

// SelectedMark is the ■ shown next to selected channels.
var SelectedMark = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Bold(true)

// MetaItem style for units and labels.
var MetaItem = lipgloss.NewStyle().
	Foreground(colorSecondary)

// DragItem marks the channel being moved.
var DragItem = lipgloss.NewStyle().
	Foreground(colorWarn).
	Bold(true)

// GroupHeader style for unit group labels in the grouped view.
var GroupHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// ListPane frames the channel list.
var ListPane = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderRight(true).
	BorderForeground(colorMuted).
	PaddingRight(1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// InfoLine style for the export info and range lines.
var InfoLine = lipgloss.NewStyle().
	Foreground(lipgloss.Color("250")).
	Padding(0, 1)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true).
	Padding(0, 1)

// NoticeStyle for the data-changed banner.
var NoticeStyle = lipgloss.NewStyle().
	Foreground(colorWarn).
	Padding(0, 1)

// ToastStyle for transient messages.
var ToastStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// FilterBar style for the filter input bar.
var FilterBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("240")).
	Padding(0, 1)

// FilterBarCount style for the filtered count.
var FilterBarCount = lipgloss.NewStyle().
	Foreground(colorSecondary)

// PickerPanel frames the orders and presets picker.
var PickerPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 1)

// DebugPanel frames the log overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(1, 1)

// DebugHeaderStyle for section headers in the log overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// LevelStyles colors log lines by level.
var LevelStyles = map[string]lipgloss.Style{
	"warn":  lipgloss.NewStyle().Foreground(colorWarn),
	"error": lipgloss.NewStyle().Foreground(colorError),
	"debug": lipgloss.NewStyle().Foreground(colorMuted),
}
