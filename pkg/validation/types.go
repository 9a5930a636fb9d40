// Package validation описывает результат проверки конфигурации паттернов.
//
// Проблемы конфигурации, которые вызваны вводом пользователя, никогда не
// возвращаются как error: движки собирают их в Result. Result разделяет
// блокирующие ошибки (Error) и неблокирующие предупреждения (Warning).
//
// Для каждого типа ошибки и предупреждения есть текст рекомендации,
// который UI показывает вместо сырого текста исключения.
package validation

import "fmt"

// ErrorType — тип блокирующей ошибки.
type ErrorType string

const (
	// ErrorNoConfiguration — конфигурация отсутствует (nil).
	ErrorNoConfiguration ErrorType = "NO_CONFIGURATION"

	// ErrorNoGroupIDSelected — не выбран токен идентификатора группы.
	ErrorNoGroupIDSelected ErrorType = "NO_GROUP_ID_SELECTED"

	// ErrorEmptyGroupPattern — групповой паттерн пустой.
	ErrorEmptyGroupPattern ErrorType = "EMPTY_GROUP_PATTERN"

	// ErrorRegexSyntax — групповой паттерн не компилируется.
	ErrorRegexSyntax ErrorType = "REGEX_SYNTAX_ERROR"

	// ErrorNoCapturingGroups — в групповом паттерне нет захватывающей группы.
	ErrorNoCapturingGroups ErrorType = "NO_CAPTURING_GROUPS"

	// ErrorMultipleCapturingGroups — захватывающих групп больше одной.
	ErrorMultipleCapturingGroups ErrorType = "MULTIPLE_CAPTURING_GROUPS"

	// ErrorNoRoleRules — ни для одной роли нет паттерна или правил.
	ErrorNoRoleRules ErrorType = "NO_ROLE_RULES_DEFINED"

	// ErrorInvalidRegexPattern — паттерн роли или REGEX_OVERRIDE не компилируется.
	ErrorInvalidRegexPattern ErrorType = "INVALID_REGEX_PATTERN"

	// ErrorEmptyRuleValue — правило с пустым значением.
	ErrorEmptyRuleValue ErrorType = "EMPTY_RULE_VALUE"

	// ErrorInvalidRuleConfiguration — список правил отсутствует (nil).
	ErrorInvalidRuleConfiguration ErrorType = "INVALID_RULE_CONFIGURATION"
)

// WarningType — тип неблокирующего предупреждения.
type WarningType string

const (
	WarningNoSampleFiles    WarningType = "NO_SAMPLE_FILES"
	WarningLowMatchRate     WarningType = "LOW_MATCH_RATE"
	WarningIncompleteGroups WarningType = "INCOMPLETE_GROUPS"
	WarningUnmatchedFiles   WarningType = "UNMATCHED_FILES"
	WarningMissingRoleRules WarningType = "MISSING_ROLE_RULES"
	WarningEmptyRuleValue   WarningType = "EMPTY_RULE_VALUE"
)

// Error — блокирующая ошибка валидации.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// Recommendation возвращает подсказку по исправлению ошибки.
func (e Error) Recommendation() string {
	return ErrorRecommendation(e.Type)
}

func (e Error) String() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
}

// Warning — неблокирующее предупреждение.
type Warning struct {
	Type    WarningType `json:"type"`
	Message string      `json:"message"`
	Details string      `json:"details,omitempty"`
}

// Recommendation возвращает подсказку по устранению предупреждения.
func (w Warning) Recommendation() string {
	return WarningRecommendation(w.Type)
}

func (w Warning) String() string {
	if w.Details == "" {
		return fmt.Sprintf("%s: %s", w.Type, w.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Type, w.Message, w.Details)
}

var errorRecommendations = map[ErrorType]string{
	ErrorNoConfiguration:          "Generate a configuration before validating it.",
	ErrorNoGroupIDSelected:        "Select the token that identifies the vehicle group.",
	ErrorEmptyGroupPattern:        "Enter a group pattern or select a group ID token to generate one.",
	ErrorRegexSyntax:              "Fix the regular expression syntax of the group pattern.",
	ErrorNoCapturingGroups:        "Wrap the group identifier part of the pattern in parentheses, e.g. ([A-Z0-9]+).",
	ErrorMultipleCapturingGroups:  "Keep exactly one capturing group; turn the others into (?:...) groups.",
	ErrorNoRoleRules:              "Add at least one rule for the FRONT, REAR or OVERVIEW role.",
	ErrorInvalidRegexPattern:      "Fix the regular expression of the highlighted rule or role pattern.",
	ErrorEmptyRuleValue:           "Enter a value for the rule or remove it.",
	ErrorInvalidRuleConfiguration: "Reset the role rules and define them again.",
}

var warningRecommendations = map[WarningType]string{
	WarningNoSampleFiles:    "Choose a folder with sample images to preview the grouping.",
	WarningLowMatchRate:     "Check the group pattern against the unmatched sample files.",
	WarningIncompleteGroups: "Adjust the role rules so each group gets all required roles.",
	WarningUnmatchedFiles:   "Review the unmatched files; they will be skipped during processing.",
	WarningMissingRoleRules: "Add rules for the role if such images exist in the folder.",
	WarningEmptyRuleValue:   "Enter a value for the rule or remove it.",
}

// ErrorRecommendation возвращает текст рекомендации для типа ошибки.
func ErrorRecommendation(t ErrorType) string {
	if r, ok := errorRecommendations[t]; ok {
		return r
	}
	return "Review the configuration."
}

// WarningRecommendation возвращает текст рекомендации для типа предупреждения.
func WarningRecommendation(t WarningType) string {
	if r, ok := warningRecommendations[t]; ok {
		return r
	}
	return "Review the configuration."
}
