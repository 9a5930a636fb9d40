// Package grouping группирует имена файлов по ключу, извлечённому групповым
// паттерном, и назначает каждому файлу роль по правилам.
//
// Движок fail-soft: некорректный паттерн или несовпадающее имя не дают
// ошибку, а попадают в список несопоставленных файлов с причиной.
package grouping

import (
	"regexp"
	"strings"

	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/validation"
)

// Причины, по которым файл не попал ни в одну группу.
const (
	ReasonInvalidPattern = "Invalid group pattern"
	ReasonNoMatch        = "Filename doesn't match group pattern"
	ReasonNoCapture      = "Group pattern has no capturing group"
	ReasonEmptyKey       = "Empty group key"
)

// UnknownSegmentHandler вызывается для сопоставленного файла, роль которого
// не определило ни одно правило. Возврат (role, true) назначает роль.
type UnknownSegmentHandler func(filename, groupKey string) (rules.ImageRole, bool)

// Unmatched — файл, не попавший в группу.
type Unmatched struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// Option настраивает GroupAndAssignRoles.
type Option func(*options)

type options struct {
	required    []rules.ImageRole
	requiredSet bool
}

// WithRequiredRoles задаёт роли, обязательные для полной группы.
//
// По умолчанию обязательны роли, у которых есть хотя бы одно непустое правило.
func WithRequiredRoles(roles ...rules.ImageRole) Option {
	return func(o *options) {
		o.required = append([]rules.ImageRole(nil), roles...)
		o.requiredSet = true
	}
}

// GroupAndAssignRoles делит имена на группы и назначает роли.
//
// Пустые имена и повторы пропускаются. Роль определяется через
// rules.RuleSet с тем же приоритетом ролей, что и ClassifyFilename.
func GroupAndAssignRoles(
	filenames []string,
	groupPattern string,
	roleRules []rules.RoleRule,
	handler UnknownSegmentHandler,
	opts ...Option,
) *Result {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.requiredSet {
		o.required = rules.ActiveRoles(roleRules)
	}

	res := newResult(groupPattern, o.required)
	names := uniqueNames(filenames)
	res.total = len(names)

	re, err := regexp.Compile(groupPattern)
	if err != nil || strings.TrimSpace(groupPattern) == "" {
		for _, name := range names {
			res.addUnmatched(name, ReasonInvalidPattern)
		}
		return res
	}

	if roleRules == nil {
		roleRules = []rules.RoleRule{}
	}
	rs, err := rules.Compile(roleRules)
	if err != nil {
		res.ruleErr = err
		rs = nil
	}

	for _, name := range names {
		m := re.FindStringSubmatch(name)
		switch {
		case m == nil:
			res.addUnmatched(name, ReasonNoMatch)
			continue
		case len(m) < 2:
			res.addUnmatched(name, ReasonNoCapture)
			continue
		case m[1] == "":
			res.addUnmatched(name, ReasonEmptyKey)
			continue
		}

		key := m[1]
		res.addFile(key, name)

		var role rules.ImageRole
		ok := false
		if rs != nil {
			role, ok = rs.Classify(name)
		}
		if !ok && handler != nil {
			role, ok = handler(name, key)
			ok = ok && role.Valid()
		}
		if ok {
			res.assign(key, name, role)
		}
	}
	return res
}

func uniqueNames(filenames []string) []string {
	seen := make(map[string]struct{}, len(filenames))
	out := make([]string, 0, len(filenames))
	for _, name := range filenames {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// ValidateGroupPattern проверяет групповой паттерн: не пуст, компилируется,
// содержит ровно одну захватывающую группу.
func ValidateGroupPattern(pattern string) validation.Result {
	return validation.CheckGroupPattern(pattern)
}
