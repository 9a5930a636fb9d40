// Логика - Обрабатывает нажатия клавиш и события сессии.

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-patterns/pkg/events"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/session"
	"github.com/ilkoid/poncho-patterns/pkg/utils"
)

const (
	headerHeight = 2
	footerHeight = 3
)

// Update обрабатывает сообщение и возвращает обновлённую модель.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	// 1. Изменение размера окна терминала
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - headerHeight - footerHeight
		if vpHeight < 1 {
			vpHeight = 1
		}
		m.body.Width = msg.Width
		m.body.Height = vpHeight
		m.input.Width = msg.Width - 4
		m.ready = true

	// 2. События сессии (Port & Adapter)
	case EventMsg:
		m.handleEvent(events.Event(msg))
		cmds = append(cmds, receiveEvent(m.sub))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	// 3. Клавиши
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.editing != editNone {
			cmds = append(cmds, m.updateEditing(msg))
			break
		}
		var quit bool
		m, quit = m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.body.SetContent(m.renderBody())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleEvent(ev events.Event) {
	switch data := ev.Data.(type) {
	case events.AnalysisData:
		if ev.Type == events.EventAnalysisCompleted {
			m.setStatus(fmt.Sprintf("Analyzed %d files in %s", data.Files, data.Duration.Round(time.Millisecond)), false)
			m.sampleCursor = 0
			m.selected = ""
		}
	case events.CustomTokensData:
		m.setStatus(fmt.Sprintf("Custom tokens reloaded: %d", data.Count), false)
	case events.ErrorData:
		if data.Err != nil {
			m.setStatus(data.Err.Error(), true)
		}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// handleKey обрабатывает клавиши вне режима ввода. true — выйти.
func (m Model) handleKey(msg tea.KeyMsg) (Model, bool) {
	store := m.sess.Store()
	st := store.Snapshot()

	switch {
	case key.Matches(msg, m.keys.NextStep):
		store.SetStep(st.Step.Next())
	case key.Matches(msg, m.keys.PrevStep):
		store.SetStep(st.Step.Prev())
	case key.Matches(msg, m.keys.ToggleMode):
		if st.Mode == session.ModeSimple {
			store.SetMode(session.ModeAdvanced)
		} else {
			store.SetMode(session.ModeSimple)
		}
	case key.Matches(msg, m.keys.ScrollUp):
		m.body.LineUp(m.body.Height / 2)
	case key.Matches(msg, m.keys.ScrollDown):
		m.body.LineDown(m.body.Height / 2)
	case key.Matches(msg, m.keys.Revalidate):
		m.sess.Validator().ValidateNow()
	case key.Matches(msg, m.keys.Dismiss):
		m.sess.MarkCustomTokenDialogShown()
	case key.Matches(msg, m.keys.Generate) && st.Step == session.StepReview:
		return m.generate()
	default:
		m.handleStepKey(msg, st)
	}
	return m, false
}

func (m *Model) handleStepKey(msg tea.KeyMsg, st session.State) {
	store := m.sess.Store()

	switch st.Step {
	case session.StepSamples:
		switch {
		case key.Matches(msg, m.keys.Up) && m.sampleCursor > 0:
			m.sampleCursor--
		case key.Matches(msg, m.keys.Down) && m.sampleCursor < len(st.Samples)-1:
			m.sampleCursor++
		case key.Matches(msg, m.keys.Confirm) && m.sampleCursor < len(st.Samples):
			name := st.Samples[m.sampleCursor]
			if err := store.SelectSample(name); err != nil {
				m.setStatus(err.Error(), true)
				return
			}
			m.selected = name
		}

	case session.StepTokens:
		switch {
		case key.Matches(msg, m.keys.Left):
			m.moveGroupID(st, -1)
		case key.Matches(msg, m.keys.Right):
			m.moveGroupID(st, 1)
		}

	case session.StepRules:
		switch {
		case key.Matches(msg, m.keys.Up) && m.ruleCursor > 0:
			m.ruleCursor--
		case key.Matches(msg, m.keys.Down) && m.ruleCursor < len(st.Rules)-1:
			m.ruleCursor++
		case key.Matches(msg, m.keys.AddRule):
			m.startEditing(editRule, "")
		case key.Matches(msg, m.keys.DeleteRule) && len(st.Rules) > 0:
			if err := store.RemoveRule(m.ruleCursor); err != nil {
				m.setStatus(err.Error(), true)
			}
			if m.ruleCursor >= len(st.Rules)-1 && m.ruleCursor > 0 {
				m.ruleCursor--
			}
		}

	case session.StepReview:
		if st.Mode != session.ModeAdvanced || !key.Matches(msg, m.keys.Edit) {
			return
		}
		o := st.Overrides
		switch msg.String() {
		case "1":
			m.startEditing(editGroupPattern, o.GroupPattern)
		case "2":
			m.startEditing(editFrontPattern, o.FrontPattern)
		case "3":
			m.startEditing(editRearPattern, o.RearPattern)
		case "4":
			m.startEditing(editOverviewPattern, o.OverviewPattern)
		}
	}
}

// moveGroupID сдвигает выбор идентификатора группы по токенам (←/→).
func (m *Model) moveGroupID(st session.State, delta int) {
	n := len(st.Tokens)
	if n == 0 {
		return
	}
	pos := 0
	if st.GroupID != nil {
		pos = (st.GroupID.Position + delta + n) % n
	}
	if err := m.sess.Store().SelectGroupIDAt(pos); err != nil {
		m.setStatus(err.Error(), true)
	}
}

func (m *Model) startEditing(target editTarget, value string) {
	m.editing = target
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	if target == editRule {
		m.input.Placeholder = "FRONT:CONTAINS:front"
	} else {
		m.input.Placeholder = "regular expression"
	}
}

func (m *Model) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return nil
	case key.Matches(msg, m.keys.Confirm):
		m.commitEditing(m.input.Value())
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) stopEditing() {
	m.editing = editNone
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) commitEditing(value string) {
	store := m.sess.Store()
	target := m.editing

	if target == editRule {
		st := store.Snapshot()
		r, err := rules.ParseSpec(strings.TrimSpace(value), len(st.Rules))
		if err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		store.AddRule(r)
		m.ruleCursor = len(st.Rules)
		m.stopEditing()
		return
	}

	o := store.Snapshot().Overrides
	switch target {
	case editGroupPattern:
		o.GroupPattern = value
	case editFrontPattern:
		o.FrontPattern = value
	case editRearPattern:
		o.RearPattern = value
	case editOverviewPattern:
		o.OverviewPattern = value
	}
	store.SetOverrides(o)
	m.stopEditing()
}

// generate собирает конфигурацию. Заблокированная валидация оставляет
// мастер открытым.
func (m Model) generate() (Model, bool) {
	cfg, err := m.sess.GenerateConfiguration()
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, false
	}
	if m.opts.OnGenerate != nil {
		if err := m.opts.OnGenerate(cfg); err != nil {
			utils.Error("Generate callback failed", "error", err)
			m.setStatus(err.Error(), true)
			return m, false
		}
	}
	m.result = cfg
	return m, true
}

// Run запускает мастер и возвращает сгенерированную конфигурацию.
//
// Rule 11: отмена ctx завершает программу.
func Run(ctx context.Context, sess *session.Session, sub events.Subscriber, opts Options) (Model, error) {
	p := tea.NewProgram(New(sess, sub, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}
