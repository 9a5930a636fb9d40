package grouping

import (
	"github.com/ilkoid/poncho-patterns/pkg/rules"
)

// Result — неизменяемый результат группировки.
//
// Все методы возвращают копии.
type Result struct {
	pattern    string
	required   []rules.ImageRole
	keys       []string
	groups     map[string][]string
	groupRoles map[string]map[rules.ImageRole]struct{}
	fileToRole map[string]rules.ImageRole
	unmatched  []Unmatched
	matched    int
	total      int
	ruleErr    error
}

func newResult(pattern string, required []rules.ImageRole) *Result {
	return &Result{
		pattern:    pattern,
		required:   append([]rules.ImageRole(nil), required...),
		groups:     make(map[string][]string),
		groupRoles: make(map[string]map[rules.ImageRole]struct{}),
		fileToRole: make(map[string]rules.ImageRole),
	}
}

func (r *Result) addUnmatched(name, reason string) {
	r.unmatched = append(r.unmatched, Unmatched{Filename: name, Reason: reason})
}

func (r *Result) addFile(key, name string) {
	if _, ok := r.groups[key]; !ok {
		r.keys = append(r.keys, key)
		r.groupRoles[key] = make(map[rules.ImageRole]struct{})
	}
	r.groups[key] = append(r.groups[key], name)
	r.matched++
}

func (r *Result) assign(key, name string, role rules.ImageRole) {
	r.fileToRole[name] = role
	r.groupRoles[key][role] = struct{}{}
}

// Pattern возвращает групповой паттерн, по которому строился результат.
func (r *Result) Pattern() string {
	return r.pattern
}

// GroupCount — число групп.
func (r *Result) GroupCount() int {
	return len(r.keys)
}

// TotalFiles — число непустых уникальных имён на входе.
func (r *Result) TotalFiles() int {
	return r.total
}

// MatchedFiles — число файлов, попавших в группы.
func (r *Result) MatchedFiles() int {
	return r.matched
}

// UnmatchedFiles — число файлов вне групп.
func (r *Result) UnmatchedFiles() int {
	return len(r.unmatched)
}

// Unmatched возвращает несопоставленные файлы с причинами в порядке входа.
func (r *Result) Unmatched() []Unmatched {
	return append([]Unmatched(nil), r.unmatched...)
}

// RuleError возвращает ошибку компиляции правил. Если она не nil,
// роли не назначались.
func (r *Result) RuleError() error {
	return r.ruleErr
}

// GroupKeys возвращает ключи групп в порядке первого появления.
func (r *Result) GroupKeys() []string {
	return append([]string(nil), r.keys...)
}

// Files возвращает файлы группы в порядке входа.
func (r *Result) Files(key string) []string {
	return append([]string(nil), r.groups[key]...)
}

// Role возвращает назначенную роль файла.
func (r *Result) Role(filename string) (rules.ImageRole, bool) {
	role, ok := r.fileToRole[filename]
	return role, ok
}

// GroupRoles возвращает роли, найденные в группе, в порядке приоритета.
func (r *Result) GroupRoles(key string) []rules.ImageRole {
	set := r.groupRoles[key]
	var out []rules.ImageRole
	for _, role := range rules.Roles() {
		if _, ok := set[role]; ok {
			out = append(out, role)
		}
	}
	return out
}

// RequiredRoles возвращает роли, обязательные для полной группы.
func (r *Result) RequiredRoles() []rules.ImageRole {
	return append([]rules.ImageRole(nil), r.required...)
}

// IsComplete сообщает, что группа существует и в ней есть все обязательные роли.
func (r *Result) IsComplete(key string) bool {
	set, ok := r.groupRoles[key]
	if !ok {
		return false
	}
	for _, role := range r.required {
		if _, ok := set[role]; !ok {
			return false
		}
	}
	return true
}

// IncompleteGroups возвращает ключи групп, которым не хватает обязательных ролей.
func (r *Result) IncompleteGroups() []string {
	var out []string
	for _, key := range r.keys {
		if !r.IsComplete(key) {
			out = append(out, key)
		}
	}
	return out
}

// MissingRoles возвращает обязательные роли, которых нет в группе.
func (r *Result) MissingRoles(key string) []rules.ImageRole {
	set := r.groupRoles[key]
	var out []rules.ImageRole
	for _, role := range r.required {
		if _, ok := set[role]; !ok {
			out = append(out, role)
		}
	}
	return out
}

// MatchRate — доля сопоставленных файлов (0 для пустого входа).
func (r *Result) MatchRate() float64 {
	if r.total == 0 {
		return 0
	}
	return float64(r.matched) / float64(r.total)
}

// RoleCounts возвращает число файлов по ролям.
func (r *Result) RoleCounts() map[rules.ImageRole]int {
	out := make(map[rules.ImageRole]int)
	for _, role := range r.fileToRole {
		out[role]++
	}
	return out
}
