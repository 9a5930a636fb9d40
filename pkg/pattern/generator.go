package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/tokens"
	"github.com/ilkoid/poncho-patterns/pkg/validation"
)

// Фрагменты группового паттерна.
const (
	// GroupCapture — единственная захватывающая группа, ключ группы.
	// Ленивая, чтобы лишние разделители после ключа ушли в разделитель.
	GroupCapture = `([\w\-]+?)`

	// SegmentSeparator соединяет соседние сегменты имени.
	SegmentSeparator = `[_\-. ]+`

	// ExtensionSeparator стоит перед расширением. Токенизатор схлопывает
	// серии разделителей, поэтому перед точкой допускаются и другие.
	ExtensionSeparator = `[_\-. ]*\.`

	// EdgeSeparator — разделители в начале и в конце имени, которые
	// токенизатор отбрасывает.
	EdgeSeparator = `[_\-. ]*`

	indexFragment = `\d+`
)

var (
	// ErrNoGroupIDToken — токен идентификатора группы не выбран.
	ErrNoGroupIDToken = errors.New("group id token is not selected")

	// ErrGroupIDNotInTokens — выбранный токен не входит в последовательность.
	ErrGroupIDNotInTokens = errors.New("group id token is not part of the token sequence")
)

// GenerateGroupPattern строит анкерный паттерн по последовательности токенов.
//
// Только groupID превращается в захватывающую группу, остальные токены
// дают незахватывающие фрагменты по своему типу. Пустая последовательность
// даёт пустую строку.
func GenerateGroupPattern(toks []tokens.FilenameToken, groupID *tokens.FilenameToken) (string, error) {
	if len(toks) == 0 {
		return "", nil
	}
	if groupID == nil {
		return "", ErrNoGroupIDToken
	}
	if !containsToken(toks, *groupID) {
		return "", fmt.Errorf("%w: %q at position %d", ErrGroupIDNotInTokens, groupID.Value, groupID.Position)
	}

	var b strings.Builder
	b.WriteString("^" + EdgeSeparator)
	captured := false
	for i, tok := range toks {
		if i > 0 {
			if i == len(toks)-1 && tok.SuggestedType == tokens.TypeExtension {
				b.WriteString(ExtensionSeparator)
			} else {
				b.WriteString(SegmentSeparator)
			}
		}
		if !captured && tok.Same(*groupID) {
			b.WriteString(GroupCapture)
			captured = true
			continue
		}
		b.WriteString(tokenFragment(tok))
	}
	b.WriteString(EdgeSeparator + "$")
	return b.String(), nil
}

// tokenFragment возвращает незахватывающий фрагмент для токена.
func tokenFragment(tok tokens.FilenameToken) string {
	switch tok.SuggestedType {
	case tokens.TypeDate:
		if frag, ok := tokens.DateFragment(tok.Value); ok {
			return frag
		}
	case tokens.TypeIndex:
		return indexFragment
	case tokens.TypeCameraSide:
		return caseInsensitiveAlternation(tokens.CameraSynonyms())
	case tokens.TypeExtension:
		return caseInsensitiveAlternation(tokens.ImageExtensions())
	}
	return rules.QuoteLiteral(tok.Value)
}

func caseInsensitiveAlternation(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return "(?i:" + strings.Join(quoted, "|") + ")"
}

func containsToken(toks []tokens.FilenameToken, t tokens.FilenameToken) bool {
	for _, x := range toks {
		if x.Same(t) {
			return true
		}
	}
	return false
}

// GenerateRolePattern строит паттерн роли из правил.
//
// Делегирует rules.GenerateRegexPattern: у классификатора и генератора
// одна реализация.
func GenerateRolePattern(roleRules []rules.RoleRule, role rules.ImageRole) string {
	return rules.GenerateRegexPattern(roleRules, role)
}

// Generate собирает полную конфигурацию из токенов, группового токена и правил.
func Generate(toks []tokens.FilenameToken, groupID *tokens.FilenameToken, roleRules []rules.RoleRule) (*Configuration, error) {
	group, err := GenerateGroupPattern(toks, groupID)
	if err != nil {
		return nil, err
	}
	cfg := &Configuration{
		GroupPattern: group,
		RoleRules:    append([]rules.RoleRule{}, roleRules...),
		Tokens:       append([]tokens.FilenameToken(nil), toks...),
	}
	if groupID != nil {
		tok := *groupID
		cfg.GroupIDToken = &tok
	}
	for _, role := range rules.Roles() {
		cfg.SetRolePattern(role, GenerateRolePattern(roleRules, role))
	}
	return cfg, nil
}

// ValidatePatterns проверяет структурную корректность конфигурации.
//
// Ошибки: пустой или некомпилируемый групповой паттерн, не ровно одна
// захватывающая группа, нет ни одного паттерна роли, некомпилируемый
// паттерн роли, пустое значение правила. Отсутствие OVERVIEW — только
// предупреждение.
func ValidatePatterns(cfg *Configuration) validation.Result {
	if cfg == nil {
		return validation.Failure(validation.ErrorNoConfiguration, "Pattern configuration is missing")
	}

	res := validation.CheckGroupPattern(cfg.GroupPattern)

	hasRolePattern := false
	for _, role := range rules.Roles() {
		p := cfg.RolePattern(role)
		if strings.TrimSpace(p) == "" {
			continue
		}
		hasRolePattern = true
		if _, err := regexp.Compile(p); err != nil {
			res = res.WithError(validation.ErrorInvalidRegexPattern,
				fmt.Sprintf("Pattern for role %s is not a valid regular expression", role), err.Error())
		}
	}
	if !hasRolePattern {
		res = res.WithError(validation.ErrorNoRoleRules, "No role patterns or rules are defined", "")
	}

	for _, r := range cfg.RoleRules {
		if r.Blank() {
			res = res.WithError(validation.ErrorEmptyRuleValue,
				fmt.Sprintf("Rule for %s has an empty value", r.TargetRole), r.String())
			continue
		}
		if r.RuleType == rules.RuleRegexOverride {
			if err := rules.CheckOverride(r); err != nil {
				res = res.WithError(validation.ErrorInvalidRegexPattern,
					fmt.Sprintf("Rule for %s has an invalid regular expression", r.TargetRole), err.Error())
			}
		}
	}

	if strings.TrimSpace(cfg.OverviewPattern) == "" && len(rules.ForRole(cfg.RoleRules, rules.RoleOverview)) == 0 {
		w := rules.MissingRoleRules(rules.RoleOverview)
		res = res.WithWarning(w.Type, w.Message, w.Details)
	}
	return res
}
