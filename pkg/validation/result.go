package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Result — неизменяемый снимок результата валидации.
//
// Конфигурация валидна тогда и только тогда, когда Errors пуст.
// Предупреждения на валидность не влияют.
type Result struct {
	Errors   []Error   `json:"errors"`
	Warnings []Warning `json:"warnings"`
}

// Success возвращает валидный результат без сообщений.
func Success() Result {
	return Result{}
}

// Failure возвращает результат с одной ошибкой.
func Failure(t ErrorType, message string) Result {
	return Result{Errors: []Error{{Type: t, Message: message}}}
}

// IsValid сообщает, что блокирующих ошибок нет.
func (r Result) IsValid() bool {
	return len(r.Errors) == 0
}

// HasAnyMessages сообщает, есть ли хоть одна ошибка или предупреждение.
//
// UI использует это, чтобы полностью убрать панель валидации.
func (r Result) HasAnyMessages() bool {
	return len(r.Errors) > 0 || len(r.Warnings) > 0
}

// HasError проверяет наличие ошибки указанного типа.
func (r Result) HasError(t ErrorType) bool {
	for _, e := range r.Errors {
		if e.Type == t {
			return true
		}
	}
	return false
}

// HasWarning проверяет наличие предупреждения указанного типа.
func (r Result) HasWarning(t WarningType) bool {
	for _, w := range r.Warnings {
		if w.Type == t {
			return true
		}
	}
	return false
}

// WithError возвращает копию результата с добавленной ошибкой.
func (r Result) WithError(t ErrorType, message, details string) Result {
	out := r.clone()
	out.Errors = append(out.Errors, Error{Type: t, Message: message, Details: details})
	return out
}

// WithWarning возвращает копию результата с добавленным предупреждением.
func (r Result) WithWarning(t WarningType, message, details string) Result {
	out := r.clone()
	out.Warnings = append(out.Warnings, Warning{Type: t, Message: message, Details: details})
	return out
}

func (r Result) clone() Result {
	return Result{
		Errors:   append([]Error(nil), r.Errors...),
		Warnings: append([]Warning(nil), r.Warnings...),
	}
}

// Merge объединяет результаты, сохраняя порядок и убирая дубликаты.
//
// Дубликатом считается сообщение с тем же типом, текстом и деталями.
func Merge(results ...Result) Result {
	var out Result
	seenErr := make(map[Error]struct{})
	seenWarn := make(map[Warning]struct{})

	for _, r := range results {
		for _, e := range r.Errors {
			if _, ok := seenErr[e]; ok {
				continue
			}
			seenErr[e] = struct{}{}
			out.Errors = append(out.Errors, e)
		}
		for _, w := range r.Warnings {
			if _, ok := seenWarn[w]; ok {
				continue
			}
			seenWarn[w] = struct{}{}
			out.Warnings = append(out.Warnings, w)
		}
	}
	return out
}

// CountCapturingGroups компилирует паттерн и возвращает число захватывающих групп.
func CountCapturingGroups(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, err
	}
	return re.NumSubexp(), nil
}

// CheckGroupPattern проверяет структурные свойства группового паттерна:
// непустой, компилируется, ровно одна захватывающая группа.
//
// Проверка нужна и для сгенерированных паттернов, и для паттернов,
// введённых вручную в advanced режиме.
func CheckGroupPattern(pattern string) Result {
	if strings.TrimSpace(pattern) == "" {
		return Failure(ErrorEmptyGroupPattern, "Group pattern is empty")
	}

	groups, err := CountCapturingGroups(pattern)
	if err != nil {
		return Result{Errors: []Error{{
			Type:    ErrorRegexSyntax,
			Message: "Group pattern is not a valid regular expression",
			Details: err.Error(),
		}}}
	}

	switch {
	case groups == 0:
		return Failure(ErrorNoCapturingGroups, "Group pattern has no capturing group")
	case groups > 1:
		return Result{Errors: []Error{{
			Type:    ErrorMultipleCapturingGroups,
			Message: "Group pattern must contain exactly one capturing group",
			Details: fmt.Sprintf("found %d capturing groups", groups),
		}}}
	}
	return Success()
}
