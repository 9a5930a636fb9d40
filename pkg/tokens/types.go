// Package tokens разбивает имена файлов на токены и статистически
// определяет роль каждого токена по выборке имён.
//
// Все функции пакета чистые: Tokenizer не меняется после создания,
// TokenAnalysis неизменяем, поэтому анализ можно запускать из любой
// горутины без синхронизации.
package tokens

import (
	"fmt"
	"sort"
	"strings"
)

// TokenType — семантическая роль токена в имени файла.
type TokenType string

const (
	TypePrefix     TokenType = "PREFIX"
	TypeSuffix     TokenType = "SUFFIX"
	TypeGroupID    TokenType = "GROUP_ID"
	TypeCameraSide TokenType = "CAMERA_SIDE"
	TypeDate       TokenType = "DATE"
	TypeIndex      TokenType = "INDEX"
	TypeExtension  TokenType = "EXTENSION"
	TypeUnknown    TokenType = "UNKNOWN"
)

// specificity задаёт порядок разрешения ничьих по confidence:
// больше значение — более конкретный тип.
var specificity = map[TokenType]int{
	TypeExtension:  7,
	TypeDate:       6,
	TypeCameraSide: 5,
	TypeGroupID:    4,
	TypeIndex:      3,
	TypePrefix:     2,
	TypeSuffix:     1,
	TypeUnknown:    0,
}

var descriptions = map[TokenType]string{
	TypePrefix:     "Fixed text at the start of the filename",
	TypeSuffix:     "Fixed text right before the extension",
	TypeGroupID:    "Identifier shared by all images of one vehicle",
	TypeCameraSide: "Camera or side marker (front, rear, overview)",
	TypeDate:       "Capture date",
	TypeIndex:      "Running image number",
	TypeExtension:  "Image file extension",
	TypeUnknown:    "Unclassified segment",
}

// AllTypes возвращает все типы токенов в порядке убывания конкретности.
func AllTypes() []TokenType {
	out := make([]TokenType, 0, len(specificity))
	for t := range specificity {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return specificity[out[i]] > specificity[out[j]]
	})
	return out
}

// ParseType разбирает строковое имя типа без учёта регистра.
func ParseType(s string) (TokenType, error) {
	t := TokenType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := specificity[t]; !ok {
		return "", fmt.Errorf("unknown token type %q", s)
	}
	return t, nil
}

// Description возвращает человекочитаемое описание типа.
func (t TokenType) Description() string {
	return descriptions[t]
}

// moreSpecific сообщает, что a конкретнее b.
func moreSpecific(a, b TokenType) bool {
	return specificity[a] > specificity[b]
}

// FilenameToken — один сегмент имени файла с предполагаемым типом.
type FilenameToken struct {
	Value         string    `json:"value" yaml:"value"`
	Position      int       `json:"position" yaml:"position"`
	SuggestedType TokenType `json:"suggested_type" yaml:"suggested_type"`
	Confidence    float64   `json:"confidence" yaml:"confidence"`
}

// Same сообщает, что токены описывают один и тот же сегмент
// (совпадают значение и позиция). Тип и confidence не сравниваются.
func (t FilenameToken) Same(other FilenameToken) bool {
	return t.Value == other.Value && t.Position == other.Position
}

// TokenSuggestion — агрегированное предположение о типе по всей выборке.
type TokenSuggestion struct {
	Type        TokenType `json:"type"`
	Description string    `json:"description"`
	Examples    []string  `json:"examples"`
	Confidence  float64   `json:"confidence"`
}

// NewTokenSuggestion создаёт подсказку, ограничивая confidence диапазоном [0,1].
func NewTokenSuggestion(t TokenType, description string, examples []string, confidence float64) TokenSuggestion {
	return TokenSuggestion{
		Type:        t,
		Description: description,
		Examples:    append([]string(nil), examples...),
		Confidence:  clamp(confidence),
	}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// CustomToken — пользовательский токен, который переопределяет
// UNKNOWN-сегменты, совпавшие с одним из примеров.
type CustomToken struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MappedType  TokenType `json:"mapped_type"`
	Examples    []string  `json:"examples"`
}

// Matches проверяет значение по примерам без учёта регистра.
func (c CustomToken) Matches(value string) bool {
	for _, ex := range c.Examples {
		if strings.EqualFold(ex, value) {
			return true
		}
	}
	return false
}

// TokenAnalysis — неизменяемый результат анализа выборки имён.
//
// Все методы возвращают копии, изменение результатов не влияет на анализ.
type TokenAnalysis struct {
	filenames   []string
	tokenized   map[string][]FilenameToken
	suggestions []TokenSuggestion
	scores      map[TokenType]float64
}

// NewTokenAnalysis собирает анализ, копируя все входные данные.
func NewTokenAnalysis(
	filenames []string,
	tokenized map[string][]FilenameToken,
	suggestions []TokenSuggestion,
	scores map[TokenType]float64,
) *TokenAnalysis {
	a := &TokenAnalysis{
		filenames:   append([]string(nil), filenames...),
		tokenized:   make(map[string][]FilenameToken, len(tokenized)),
		suggestions: make([]TokenSuggestion, 0, len(suggestions)),
		scores:      make(map[TokenType]float64, len(scores)),
	}
	for name, toks := range tokenized {
		a.tokenized[name] = append([]FilenameToken(nil), toks...)
	}
	for _, s := range suggestions {
		a.suggestions = append(a.suggestions, NewTokenSuggestion(s.Type, s.Description, s.Examples, s.Confidence))
	}
	for t, v := range scores {
		a.scores[t] = v
	}
	return a
}

// Filenames возвращает имена в исходном порядке.
func (a *TokenAnalysis) Filenames() []string {
	return append([]string(nil), a.filenames...)
}

// TokenizedFilenames возвращает копию отображения имя → токены.
func (a *TokenAnalysis) TokenizedFilenames() map[string][]FilenameToken {
	out := make(map[string][]FilenameToken, len(a.tokenized))
	for name, toks := range a.tokenized {
		out[name] = append([]FilenameToken(nil), toks...)
	}
	return out
}

// TokensFor возвращает токены одного имени.
func (a *TokenAnalysis) TokensFor(filename string) ([]FilenameToken, bool) {
	toks, ok := a.tokenized[filename]
	if !ok {
		return nil, false
	}
	return append([]FilenameToken(nil), toks...), true
}

// Suggestions возвращает подсказки, отсортированные по убыванию confidence.
func (a *TokenAnalysis) Suggestions() []TokenSuggestion {
	out := make([]TokenSuggestion, len(a.suggestions))
	for i, s := range a.suggestions {
		out[i] = NewTokenSuggestion(s.Type, s.Description, s.Examples, s.Confidence)
	}
	return out
}

// ConfidenceScores возвращает копию агрегированных оценок по типам.
func (a *TokenAnalysis) ConfidenceScores() map[TokenType]float64 {
	out := make(map[TokenType]float64, len(a.scores))
	for t, v := range a.scores {
		out[t] = v
	}
	return out
}

// Confidence возвращает агрегированную оценку для типа (0, если тип не найден).
func (a *TokenAnalysis) Confidence(t TokenType) float64 {
	return a.scores[t]
}

// SuggestedGroupID возвращает токен имени с типом GROUP_ID и наибольшей confidence.
func (a *TokenAnalysis) SuggestedGroupID(filename string) (FilenameToken, bool) {
	return GroupIDToken(a.tokenized[filename])
}

// GroupIDToken ищет в последовательности токен GROUP_ID с наибольшей confidence.
func GroupIDToken(toks []FilenameToken) (FilenameToken, bool) {
	var best FilenameToken
	found := false
	for _, t := range toks {
		if t.SuggestedType != TypeGroupID {
			continue
		}
		if !found || t.Confidence > best.Confidence {
			best = t
			found = true
		}
	}
	return best, found
}
