package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ilkoid/poncho-patterns/pkg/grouping"
	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/validation"
)

// DefaultLowMatchRate — доля сопоставленных файлов, ниже которой
// выдаётся предупреждение LOW_MATCH_RATE.
const DefaultLowMatchRate = 0.8

// maxDetailItems — сколько имён или ключей перечисляется в Details.
const maxDetailItems = 5

// Snapshot — результат валидации одной ревизии состояния.
type Snapshot struct {
	Revision uint64
	Result   validation.Result
	Config   *pattern.Configuration
	Grouping *grouping.Result
}

// Evaluate валидирует снимок состояния.
//
// Порядок: выбор group id (simple режим), ValidatePatterns, ValidateRules
// и, если есть выборка, проход группировки по паттернам ролей самой
// конфигурации. Сообщения объединяются без дубликатов.
func Evaluate(st State, lowMatchRate float64) Snapshot {
	snap := Snapshot{Revision: st.Revision}

	var parts []validation.Result
	cfg, err := BuildConfiguration(st)
	switch {
	case errors.Is(err, ErrNoGroupID):
		parts = append(parts, validation.Failure(validation.ErrorNoGroupIDSelected, "Select the token that identifies a group"))
	case errors.Is(err, pattern.ErrGroupIDNotInTokens):
		parts = append(parts, validation.Success().WithError(validation.ErrorNoGroupIDSelected,
			"Selected group id token is not part of the current tokens", err.Error()))
	case err != nil:
		parts = append(parts, validation.Success().WithError(validation.ErrorNoConfiguration,
			"Configuration could not be generated", err.Error()))
	default:
		snap.Config = cfg
		parts = append(parts, pattern.ValidatePatterns(cfg))
	}

	parts = append(parts, rules.ValidateRules(st.Rules))

	switch {
	case len(st.Samples) == 0:
		parts = append(parts, validation.Success().WithWarning(validation.WarningNoSampleFiles,
			"No sample files loaded", ""))
	case cfg != nil && validation.CheckGroupPattern(cfg.GroupPattern).IsValid():
		g := grouping.GroupAndAssignRoles(st.Samples, cfg.GroupPattern, PreviewRules(cfg), nil)
		snap.Grouping = g
		parts = append(parts, groupingWarnings(g, lowMatchRate))
	}

	snap.Result = validation.Merge(parts...)
	return snap
}

// PreviewRules превращает паттерны ролей конфигурации в REGEX_OVERRIDE
// правила, чтобы превью группировки использовало ровно экспортируемые
// паттерны, в том числе отредактированные вручную.
func PreviewRules(cfg *pattern.Configuration) []rules.RoleRule {
	out := []rules.RoleRule{}
	if cfg == nil {
		return out
	}
	for _, role := range rules.Roles() {
		p := cfg.RolePattern(role)
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, rules.RoleRule{
			TargetRole:    role,
			RuleType:      rules.RuleRegexOverride,
			RuleValue:     p,
			CaseSensitive: true,
		})
	}
	return out
}

func groupingWarnings(g *grouping.Result, lowMatchRate float64) validation.Result {
	var res validation.Result
	total := g.TotalFiles()
	if total == 0 {
		return res
	}

	switch {
	case g.MatchedFiles() == 0:
		res = res.WithWarning(validation.WarningLowMatchRate,
			"No sample files match the group pattern", fmt.Sprintf("0 of %d files matched", total))
	case g.MatchRate() < lowMatchRate:
		res = res.WithWarning(validation.WarningLowMatchRate,
			fmt.Sprintf("Only %d of %d sample files match the group pattern", g.MatchedFiles(), total),
			fmt.Sprintf("match rate %.0f%%", g.MatchRate()*100))
	}

	if n := g.UnmatchedFiles(); n > 0 {
		names := make([]string, 0, n)
		for _, u := range g.Unmatched() {
			names = append(names, u.Filename)
		}
		res = res.WithWarning(validation.WarningUnmatchedFiles,
			fmt.Sprintf("%d sample files do not match the group pattern", n), joinLimited(names))
	}

	if inc := g.IncompleteGroups(); len(inc) > 0 {
		res = res.WithWarning(validation.WarningIncompleteGroups,
			fmt.Sprintf("%d of %d groups are missing required roles", len(inc), g.GroupCount()), joinLimited(inc))
	}
	return res
}

func joinLimited(items []string) string {
	if len(items) <= maxDetailItems {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:maxDetailItems], ", "), len(items)-maxDetailItems)
}
