// Красота

package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Цвета
	primaryColor = lipgloss.Color("62")  // Фиолетовый
	accentColor  = lipgloss.Color("205") // Розовый
	grayColor    = lipgloss.Color("240")
	okColor      = lipgloss.Color("#04B575")
	warnColor    = lipgloss.Color("214")
	errColor     = lipgloss.Color("#FF0000")

	// Хедер с шагами мастера
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1).
			Bold(true)

	activeStepStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	stepStyle       = lipgloss.NewStyle().Foreground(grayColor)

	// Токены имени файла
	tokenStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(grayColor)
	groupTokenStyle = tokenStyle.
			BorderForeground(accentColor).
			Bold(true)

	// Панель валидации
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(grayColor).
			Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(errColor).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(warnColor)
	hintStyle    = lipgloss.NewStyle().Foreground(grayColor).Italic(true)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(okColor).
			Padding(0, 1).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(okColor)
)
