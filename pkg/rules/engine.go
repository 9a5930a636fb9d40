package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ilkoid/poncho-patterns/pkg/validation"
)

var (
	// ErrBlankFilename — имя файла пустое.
	ErrBlankFilename = errors.New("filename is blank")

	// ErrNilRules — список правил не передан (nil). Пустой список допустим.
	ErrNilRules = errors.New("rules must not be nil")

	// ErrInvalidRegex — REGEX_OVERRIDE правило не компилируется.
	ErrInvalidRegex = errors.New("invalid regex override")
)

// RuleError связывает ошибку компиляции с конкретным правилом.
type RuleError struct {
	Rule RoleRule
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// Is позволяет проверять errors.Is(err, ErrInvalidRegex).
func (e *RuleError) Is(target error) bool {
	return target == ErrInvalidRegex
}

type compiledRule struct {
	rule RoleRule
	re   *regexp.Regexp
}

// RuleSet — скомпилированный набор правил, готовый к классификации.
//
// Неизменяем и безопасен для конкурентного использования.
type RuleSet struct {
	byRole map[ImageRole][]compiledRule
}

// Compile компилирует фрагменты всех непустых правил. nil правила
// (в том числе нулевой срез) дают ErrNilRules.
//
// Фрагменты те же, что выдаёт GenerateRegexPattern, поэтому классификация
// и сгенерированные паттерны ролей совпадают.
func Compile(rules []RoleRule) (*RuleSet, error) {
	if rules == nil {
		return nil, ErrNilRules
	}
	rs := &RuleSet{byRole: make(map[ImageRole][]compiledRule)}
	for _, role := range Roles() {
		for _, r := range ForRole(rules, role) {
			frag := Fragment(r)
			if r.Blank() || frag == "" {
				continue
			}
			if r.RuleType == RuleRegexOverride {
				if err := CheckOverride(r); err != nil {
					return nil, &RuleError{Rule: r, Err: err}
				}
			}
			re, err := regexp.Compile(frag)
			if err != nil {
				return nil, &RuleError{Rule: r, Err: err}
			}
			rs.byRole[role] = append(rs.byRole[role], compiledRule{rule: r, re: re})
		}
	}
	return rs, nil
}

// Classify возвращает первую роль (в порядке приоритета ролей), одно из
// правил которой совпало с именем. Роли с меньшим приоритетом после
// совпадения не проверяются.
func (rs *RuleSet) Classify(name string) (ImageRole, bool) {
	for _, role := range Roles() {
		for _, cr := range rs.byRole[role] {
			if cr.re.MatchString(name) {
				return role, true
			}
		}
	}
	return "", false
}

// MatchingRule возвращает правило, которое определило роль имени.
func (rs *RuleSet) MatchingRule(name string) (RoleRule, bool) {
	for _, role := range Roles() {
		for _, cr := range rs.byRole[role] {
			if cr.re.MatchString(name) {
				return cr.rule, true
			}
		}
	}
	return RoleRule{}, false
}

// ClassifyFilename определяет роль одного имени файла.
//
// Возвращает ErrBlankFilename для пустого имени, ErrNilRules для nil
// правил и ошибку, совместимую с ErrInvalidRegex, если REGEX_OVERRIDE
// не компилируется. Пустой список правил даёт ("", false, nil).
// Нулевой срез (var rs []RoleRule) считается nil: передавайте []RoleRule{}.
func ClassifyFilename(name string, rules []RoleRule) (ImageRole, bool, error) {
	if strings.TrimSpace(name) == "" {
		return "", false, ErrBlankFilename
	}
	rs, err := Compile(rules)
	if err != nil {
		return "", false, err
	}
	role, ok := rs.Classify(name)
	return role, ok, nil
}

// ClassifyFilenames классифицирует пачку имён; пустые имена пропускаются.
//
// Как и ClassifyFilename, отвергает nil правила с ErrNilRules, включая
// нулевой срез; []RoleRule{} допустим и никого не классифицирует.
func ClassifyFilenames(names []string, rules []RoleRule) (map[ImageRole][]string, error) {
	rs, err := Compile(rules)
	if err != nil {
		return nil, err
	}
	out := make(map[ImageRole][]string)
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if role, ok := rs.Classify(name); ok {
			out[role] = append(out[role], name)
		}
	}
	return out, nil
}

// MissingRoleRules — предупреждение об отсутствии правил для роли.
//
// Используется и здесь, и в pattern.ValidatePatterns с одинаковым текстом,
// чтобы validation.Merge убирал дубликаты.
func MissingRoleRules(role ImageRole) validation.Warning {
	return validation.Warning{
		Type:    validation.WarningMissingRoleRules,
		Message: fmt.Sprintf("No rules defined for role %s", role),
	}
}

// ValidateRules проверяет правила без привязки к именам файлов.
func ValidateRules(rules []RoleRule) validation.Result {
	if rules == nil {
		return validation.Failure(validation.ErrorInvalidRuleConfiguration, "Role rules are not configured")
	}

	var res validation.Result
	for _, r := range rules {
		if !r.TargetRole.Valid() || !r.RuleType.Valid() {
			res = res.WithError(validation.ErrorInvalidRuleConfiguration,
				"Rule has an unknown role or rule type", r.String())
			continue
		}
		if r.Blank() {
			res = res.WithWarning(validation.WarningEmptyRuleValue,
				fmt.Sprintf("Rule for %s has an empty value", r.TargetRole), r.String())
			continue
		}
		if r.RuleType != RuleRegexOverride {
			continue
		}
		if err := CheckOverride(r); err != nil {
			res = res.WithError(validation.ErrorInvalidRegexPattern,
				fmt.Sprintf("Rule for %s has an invalid regular expression", r.TargetRole), err.Error())
		}
	}

	for _, role := range Roles() {
		if len(ForRole(rules, role)) == 0 {
			w := MissingRoleRules(role)
			res = res.WithWarning(w.Type, w.Message, w.Details)
		}
	}
	return res
}

// CheckOverride компилирует и само значение REGEX_OVERRIDE, и обёрнутый
// фрагмент: несбалансированная скобка может скомпилироваться внутри обёртки.
func CheckOverride(r RoleRule) error {
	if _, err := regexp.Compile(r.RuleValue); err != nil {
		return err
	}
	if _, err := regexp.Compile(Fragment(r)); err != nil {
		return err
	}
	return nil
}
