package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// RuleType — способ сравнения значения правила с именем файла.
type RuleType string

const (
	RuleEquals        RuleType = "EQUALS"
	RuleContains      RuleType = "CONTAINS"
	RuleStartsWith    RuleType = "STARTS_WITH"
	RuleEndsWith      RuleType = "ENDS_WITH"
	RuleRegexOverride RuleType = "REGEX_OVERRIDE"
)

// Valid сообщает, что тип правила входит в закрытый набор.
func (t RuleType) Valid() bool {
	switch t {
	case RuleEquals, RuleContains, RuleStartsWith, RuleEndsWith, RuleRegexOverride:
		return true
	}
	return false
}

// ParseRuleType разбирает тип правила без учёта регистра.
func ParseRuleType(s string) (RuleType, error) {
	t := RuleType(strings.ToUpper(strings.TrimSpace(s)))
	if t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("unknown rule type %q", s)
}

// RoleRule — одно пользовательское правило классификации.
//
// Внутри роли правила применяются по возрастанию Priority.
type RoleRule struct {
	TargetRole    ImageRole `json:"target_role" yaml:"target_role"`
	RuleType      RuleType  `json:"rule_type" yaml:"rule_type"`
	RuleValue     string    `json:"rule_value" yaml:"rule_value"`
	CaseSensitive bool      `json:"case_sensitive" yaml:"case_sensitive"`
	Priority      int       `json:"priority" yaml:"priority"`
}

// Blank сообщает, что у правила нет значения. Такие правила не участвуют
// ни в классификации, ни в генерации паттернов.
func (r RoleRule) Blank() bool {
	return strings.TrimSpace(r.RuleValue) == ""
}

func (r RoleRule) String() string {
	return fmt.Sprintf("%s %s %q (priority %d)", r.TargetRole, r.RuleType, r.RuleValue, r.Priority)
}

// ForRole возвращает правила роли, отсортированные по Priority.
//
// Сортировка стабильная: при равном приоритете сохраняется исходный порядок.
func ForRole(rules []RoleRule, role ImageRole) []RoleRule {
	var out []RoleRule
	for _, r := range rules {
		if r.TargetRole == role {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// ActiveRoles возвращает роли (в порядке приоритета), у которых есть
// хотя бы одно непустое правило.
func ActiveRoles(rules []RoleRule) []ImageRole {
	var out []ImageRole
	for _, role := range Roles() {
		for _, r := range rules {
			if r.TargetRole == role && !r.Blank() {
				out = append(out, role)
				break
			}
		}
	}
	return out
}

// QuoteLiteral экранирует s для регулярки. Байты, не образующие UTF-8,
// заменяются на \x{FFFD}: regexp отвергает их в паттерне, но при
// сопоставлении читает каждый такой байт как U+FFFD.
func QuoteLiteral(s string) string {
	if utf8.ValidString(s) {
		return regexp.QuoteMeta(s)
	}
	var b strings.Builder
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			b.WriteString(`\x{FFFD}`)
		} else {
			b.WriteString(regexp.QuoteMeta(s[:size]))
		}
		s = s[size:]
	}
	return b.String()
}

// Fragment строит фрагмент регулярки для одного правила.
//
// Литеральные значения экранируются, REGEX_OVERRIDE используется как есть.
// Регистронезависимость задаётся на уровне фрагмента через (?i:...),
// поэтому правила с разной чувствительностью к регистру внутри одной роли
// не влияют друг на друга.
func Fragment(r RoleRule) string {
	var frag string
	lit := QuoteLiteral(r.RuleValue)
	switch r.RuleType {
	case RuleEquals:
		frag = "^" + lit + "$"
	case RuleContains:
		frag = ".*" + lit + ".*"
	case RuleStartsWith:
		frag = "^" + lit + ".*"
	case RuleEndsWith:
		frag = ".*" + lit + "$"
	case RuleRegexOverride:
		frag = r.RuleValue
	default:
		return ""
	}
	if r.CaseSensitive {
		return frag
	}
	return "(?i:" + frag + ")"
}

// GenerateRegexPattern строит паттерн роли: фрагменты правил роли в порядке
// приоритета, объединённые через (?:a|b). Пустые правила пропускаются.
// Если правил для роли нет, возвращается пустая строка.
func GenerateRegexPattern(rules []RoleRule, role ImageRole) string {
	var frags []string
	for _, r := range ForRole(rules, role) {
		if r.Blank() {
			continue
		}
		if f := Fragment(r); f != "" {
			frags = append(frags, f)
		}
	}
	switch len(frags) {
	case 0:
		return ""
	case 1:
		return frags[0]
	}
	return "(?:" + strings.Join(frags, "|") + ")"
}

// ParseSpec разбирает краткую запись правила ROLE:TYPE:VALUE.
//
// Восклицательный знак после типа включает чувствительность к регистру
// (FRONT:CONTAINS!:Front). Значение может содержать двоеточия.
// priority присваивается правилу как есть.
func ParseSpec(spec string, priority int) (RoleRule, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 {
		return RoleRule{}, fmt.Errorf("rule %q: expected ROLE:TYPE:VALUE", spec)
	}
	role, err := ParseRole(parts[0])
	if err != nil {
		return RoleRule{}, fmt.Errorf("rule %q: %w", spec, err)
	}
	typ := strings.TrimSpace(parts[1])
	caseSensitive := strings.HasSuffix(typ, "!")
	rt, err := ParseRuleType(strings.TrimSuffix(typ, "!"))
	if err != nil {
		return RoleRule{}, fmt.Errorf("rule %q: %w", spec, err)
	}
	return RoleRule{
		TargetRole:    role,
		RuleType:      rt,
		RuleValue:     parts[2],
		CaseSensitive: caseSensitive,
		Priority:      priority,
	}, nil
}

// FormatSpec — обратная к ParseSpec запись правила.
func FormatSpec(r RoleRule) string {
	typ := string(r.RuleType)
	if r.CaseSensitive {
		typ += "!"
	}
	return string(r.TargetRole) + ":" + typ + ":" + r.RuleValue
}
