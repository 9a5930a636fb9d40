// Рендер

package ui

import (
	"strings"

	"github.com/ilkoid/poncho-patterns/pkg/session"
)

const visibleSamples = 12

// View рисует мастер: шаги, тело текущего шага, панель валидации,
// баннер, поле ввода и статус.
func (m Model) View() string {
	if !m.ready {
		return "Initializing UI..."
	}
	st := m.sess.Store().Snapshot()

	header := renderSteps(st.Step, st.Mode)
	if m.sess.Analyzing() {
		header += "  " + m.spinner.View() + stepStyle.Render(" analyzing")
	}

	parts := []string{
		headerStyle.Width(m.width).Render(header),
		m.body.View(),
	}
	if v := m.sess.Validator(); v.HasAnyMessages() {
		parts = append(parts, renderValidationPanel(v.Result(), m.width))
	}
	if m.sess.Validator().ShouldShowSuccessBanner() {
		parts = append(parts, renderBanner())
	}
	if m.editing != editNone {
		parts = append(parts, m.input.View())
	}
	if m.status != "" {
		if m.statusErr {
			parts = append(parts, errorStyle.Render(m.status))
		} else {
			parts = append(parts, statusStyle.Render(m.status))
		}
	}
	parts = append(parts, m.helpLine(st))
	return strings.Join(parts, "\n")
}

// renderBody собирает содержимое viewport для текущего шага.
func (m Model) renderBody() string {
	st := m.sess.Store().Snapshot()
	v := m.sess.Validator()

	var sections []string
	switch st.Step {
	case session.StepSamples:
		selected := m.selected
		if selected == "" && len(st.Samples) > 0 {
			selected = st.Samples[0]
		}
		sections = append(sections, renderSamples(st.Samples, selected, m.sampleCursor, visibleSamples))

	case session.StepTokens:
		sections = append(sections, renderTokens(st.Tokens, st.GroupID), renderSuggestions(st.Analysis))
		if m.sess.ShouldOfferCustomTokens() {
			sections = append(sections, renderCustomTokenTip(st.Tokens, m.opts.CustomTokensPath, m.width))
		}

	case session.StepRules:
		sections = append(sections, renderRules(st.Rules, m.ruleCursor), renderGroupPreview(v.Grouping()))

	case session.StepReview:
		cfg, _ := session.BuildConfiguration(st)
		sections = append(sections, renderPatterns(cfg, st.Mode), renderGroupPreview(v.Grouping()))
	}

	out := sections[:0]
	for _, s := range sections {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

func (m Model) helpLine(st session.State) string {
	var hints []string
	switch {
	case m.editing != editNone:
		hints = []string{"Enter apply", "Esc cancel"}
	case st.Step == session.StepSamples:
		hints = []string{"↑/↓ move", "Enter show tokens"}
	case st.Step == session.StepTokens:
		hints = []string{"←/→ group id", "c dismiss tip"}
	case st.Step == session.StepRules:
		hints = []string{"a add", "d delete", "↑/↓ move"}
	case st.Step == session.StepReview && st.Mode == session.ModeAdvanced:
		hints = []string{"1-4 edit", "g generate", "r revalidate"}
	default:
		hints = []string{"g generate", "r revalidate"}
	}
	hints = append(hints, "Tab next", "m mode", "Ctrl+C quit")
	return hintStyle.Render(strings.Join(hints, " • "))
}
