package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"

	"github.com/ilkoid/poncho-patterns/pkg/grouping"
	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/session"
	"github.com/ilkoid/poncho-patterns/pkg/tokens"
	"github.com/ilkoid/poncho-patterns/pkg/validation"
)

const (
	maxPreviewGroups = 10
	minWrapWidth     = 20
)

func wrapWidth(width int) int {
	if width-4 < minWrapWidth {
		return minWrapWidth
	}
	return width - 4
}

// renderSteps рисует строку шагов мастера.
func renderSteps(current session.Step, mode session.Mode) string {
	steps := []session.Step{session.StepSamples, session.StepTokens, session.StepRules, session.StepReview}
	parts := make([]string, 0, len(steps))
	for i, s := range steps {
		label := fmt.Sprintf("%d. %s", i+1, s)
		if s == current {
			parts = append(parts, activeStepStyle.Render(label))
		} else {
			parts = append(parts, stepStyle.Render(label))
		}
	}
	return strings.Join(parts, stepStyle.Render(" › ")) + "   " + labelStyle.Render("mode: "+string(mode))
}

// renderSamples рисует список выборки; cursor отмечает строку,
// selected — файл, токены которого показываются.
func renderSamples(samples []string, selected string, cursor, limit int) string {
	if len(samples) == 0 {
		return hintStyle.Render("No sample files loaded")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d files\n", labelStyle.Render("Samples:"), len(samples))

	start := 0
	if cursor >= limit {
		start = cursor - limit + 1
	}
	for i := start; i < len(samples) && i < start+limit; i++ {
		marker := "  "
		if i == cursor {
			marker = cursorStyle.Render("> ")
		}
		name := samples[i]
		if name == selected {
			name = activeStepStyle.Render(name)
		}
		b.WriteString(marker + name + "\n")
	}
	if rest := len(samples) - start - limit; rest > 0 {
		b.WriteString(hintStyle.Render(fmt.Sprintf("  … %d more", rest)) + "\n")
	}
	return b.String()
}

// renderTokens рисует токены имени в рамках; идентификатор группы выделен.
func renderTokens(toks []tokens.FilenameToken, groupID *tokens.FilenameToken) string {
	if len(toks) == 0 {
		return hintStyle.Render("No tokens")
	}
	boxes := make([]string, 0, len(toks))
	for _, t := range toks {
		style := tokenStyle
		label := string(t.SuggestedType)
		if groupID != nil && t.Same(*groupID) {
			style = groupTokenStyle
			label = "GROUP ID"
		}
		boxes = append(boxes, style.Render(t.Value+"\n"+stepStyle.Render(label)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// renderSuggestions рисует подсказки анализа.
func renderSuggestions(a *tokens.TokenAnalysis) string {
	if a == nil {
		return ""
	}
	sugg := a.Suggestions()
	if len(sugg) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(labelStyle.Render("Detected:") + "\n")
	for _, s := range sugg {
		fmt.Fprintf(&b, "  %-12s %3.0f%%  %s\n", s.Type, s.Confidence*100, strings.Join(s.Examples, ", "))
	}
	return b.String()
}

// renderCustomTokenTip предлагает описать нераспознанные сегменты.
func renderCustomTokenTip(toks []tokens.FilenameToken, path string, width int) string {
	var unknown []string
	for _, t := range toks {
		if t.SuggestedType == tokens.TypeUnknown {
			unknown = append(unknown, t.Value)
		}
	}
	if len(unknown) == 0 {
		return ""
	}
	text := fmt.Sprintf("Unrecognized segments: %s. Describe them as custom tokens", strings.Join(unknown, ", "))
	if path != "" {
		text += " in " + path
	}
	text += " (c to dismiss)"
	return hintStyle.Render(wrap.String(text, wrapWidth(width)))
}

// renderRules рисует правила ролей, cursor отмечает выбранное.
func renderRules(list []rules.RoleRule, cursor int) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Role rules:") + "\n")
	if len(list) == 0 {
		b.WriteString(hintStyle.Render("  none, press a to add ROLE:TYPE:VALUE") + "\n")
		return b.String()
	}
	for i, r := range list {
		marker := "  "
		if i == cursor {
			marker = cursorStyle.Render("> ")
		}
		b.WriteString(marker + rules.FormatSpec(r) + "\n")
	}
	return b.String()
}

// renderPatterns рисует паттерны конфигурации. В advanced режиме
// каждому полю соответствует клавиша редактирования.
func renderPatterns(cfg *pattern.Configuration, mode session.Mode) string {
	if cfg == nil {
		return hintStyle.Render("Configuration is not available yet")
	}
	fields := []struct {
		label, value string
	}{
		{"group", cfg.GroupPattern},
		{"front", cfg.FrontPattern},
		{"rear", cfg.RearPattern},
		{"overview", cfg.OverviewPattern},
	}
	var b strings.Builder
	for i, f := range fields {
		label := f.label
		if mode == session.ModeAdvanced {
			label = fmt.Sprintf("[%d] %s", i+1, f.label)
		}
		value := f.value
		if value == "" {
			value = hintStyle.Render("(empty)")
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), value)
	}
	return b.String()
}

// renderGroupPreview рисует первые группы и их роли.
func renderGroupPreview(res *grouping.Result) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d groups, %d/%d files matched (%.0f%%)\n",
		labelStyle.Render("Preview:"), res.GroupCount(), res.MatchedFiles(), res.TotalFiles(), res.MatchRate()*100)

	keys := res.GroupKeys()
	for i, key := range keys {
		if i == maxPreviewGroups {
			b.WriteString(hintStyle.Render(fmt.Sprintf("  … %d more groups", len(keys)-i)) + "\n")
			break
		}
		roles := make([]string, 0, 3)
		for _, r := range res.GroupRoles(key) {
			roles = append(roles, string(r))
		}
		line := fmt.Sprintf("  %s  %d files  [%s]", key, len(res.Files(key)), strings.Join(roles, " "))
		if missing := res.MissingRoles(key); len(missing) > 0 {
			names := make([]string, len(missing))
			for j, r := range missing {
				names[j] = string(r)
			}
			line += warningStyle.Render("  missing " + strings.Join(names, ", "))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// renderValidationPanel рисует ошибки и предупреждения.
// Без сообщений возвращает пустую строку: панель не показывается вовсе.
func renderValidationPanel(res validation.Result, width int) string {
	if !res.HasAnyMessages() {
		return ""
	}
	w := wrapWidth(width)
	var lines []string
	for _, e := range res.Errors {
		lines = append(lines, errorStyle.Render(wrap.String("✗ "+e.Message, w)))
		if e.Details != "" {
			lines = append(lines, wrap.String("  "+e.Details, w))
		}
		if rec := e.Recommendation(); rec != "" {
			lines = append(lines, hintStyle.Render(wrap.String("  → "+rec, w)))
		}
	}
	for _, wr := range res.Warnings {
		lines = append(lines, warningStyle.Render(wrap.String("! "+wr.Message, w)))
		if wr.Details != "" {
			lines = append(lines, wrap.String("  "+wr.Details, w))
		}
		if rec := wr.Recommendation(); rec != "" {
			lines = append(lines, hintStyle.Render(wrap.String("  → "+rec, w)))
		}
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// renderBanner — сообщение об успешной проверке.
func renderBanner() string {
	return bannerStyle.Render("✓ Configuration is valid, press g to generate")
}
