// Package ui реализует мастер настройки паттернов на Bubble Tea.
//
// Шаги: выборка → токены (выбор идентификатора группы) → правила ролей →
// обзор и генерация. Всё состояние живёт в session.Session; модель
// только переводит клавиши в мутации Store и рисует текущий снимок.
package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-patterns/pkg/events"
	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/session"
)

// EventMsg конвертирует events.Event в Bubble Tea сообщение.
type EventMsg events.Event

// editTarget — что сейчас редактируется в поле ввода.
type editTarget int

const (
	editNone editTarget = iota
	editRule
	editGroupPattern
	editFrontPattern
	editRearPattern
	editOverviewPattern
)

// Options — параметры мастера.
type Options struct {
	// CustomTokensPath показывается в подсказке о пользовательских токенах.
	CustomTokensPath string
	// OnGenerate вызывается с готовой конфигурацией перед выходом.
	// Ошибка оставляет мастер открытым и показывается в статусе.
	OnGenerate func(*pattern.Configuration) error
}

// Model — главная модель мастера (Bubble Tea Model).
type Model struct {
	sess *session.Session
	sub  events.Subscriber
	opts Options
	keys KeyMap

	spinner spinner.Model
	body    viewport.Model
	input   textinput.Model
	editing editTarget

	width  int
	height int
	ready  bool

	sampleCursor int
	ruleCursor   int
	selected     string

	status    string
	statusErr bool
	result    *pattern.Configuration
}

// New создает начальное состояние UI.
//
// sub — подписчик на события сессии (Port & Adapter); может быть nil,
// тогда модель обновляется только по клавишам.
func New(sess *session.Session, sub events.Subscriber, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeStepStyle

	ti := textinput.New()
	ti.Prompt = "┃ "
	ti.CharLimit = 500

	return Model{
		sess:    sess,
		sub:     sub,
		opts:    opts,
		keys:    DefaultKeyMap(),
		spinner: sp,
		body:    viewport.New(0, 0),
		input:   ti,
	}
}

// Result возвращает сгенерированную конфигурацию (nil, если мастер
// закрыт без генерации).
func (m Model) Result() *pattern.Configuration {
	return m.result
}

// Init запускается один раз при старте Bubble Tea программы.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, receiveEvent(m.sub))
}

// receiveEvent ждёт следующего события сессии.
func receiveEvent(sub events.Subscriber) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-sub.Events()
		if !ok {
			return nil
		}
		return EventMsg(event)
	}
}
