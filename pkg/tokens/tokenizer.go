package tokens

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
)

// Delimiters — символы, по которым имя файла делится на сегменты.
const Delimiters = "_-. "

// CustomTokenConfidence — confidence, которую получает UNKNOWN-токен,
// совпавший с пользовательским токеном.
const CustomTokenConfidence = 0.8

// Даты с дефисами сохраняются одним сегментом, иначе их разрежет дефис.
var embeddedDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{2}-\d{2}-\d{4}`)

// Tokenizer разбивает имена файлов и анализирует выборку.
//
// Неизменяем после создания и безопасен для конкурентного использования.
type Tokenizer struct {
	custom []CustomToken
}

// New создаёт Tokenizer с необязательным набором пользовательских токенов.
func New(custom ...CustomToken) *Tokenizer {
	cp := make([]CustomToken, len(custom))
	for i, c := range custom {
		c.Examples = append([]string(nil), c.Examples...)
		cp[i] = c
	}
	return &Tokenizer{custom: cp}
}

// CustomTokens возвращает копию пользовательских токенов.
func (t *Tokenizer) CustomTokens() []CustomToken {
	out := make([]CustomToken, len(t.custom))
	for i, c := range t.custom {
		c.Examples = append([]string(nil), c.Examples...)
		out[i] = c
	}
	return out
}

// Tokenize делит имя файла на сегменты и классифицирует каждый по его значению.
//
// Повторяющиеся разделители схлопываются, пустых токенов нет. Позиции
// нумеруются по порядку сегментов, включая расширение. Пустое имя даёт
// пустую последовательность.
func (t *Tokenizer) Tokenize(name string) []FilenameToken {
	toks := tokenizeRaw(name)
	for i := range toks {
		t.applyCustom(&toks[i])
	}
	return toks
}

// Tokenize — то же, что New().Tokenize(name).
func Tokenize(name string) []FilenameToken {
	return tokenizeRaw(name)
}

func tokenizeRaw(name string) []FilenameToken {
	if strings.TrimSpace(name) == "" {
		return []FilenameToken{}
	}

	segments := split(name)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")

	out := make([]FilenameToken, 0, len(segments))
	for i, seg := range segments {
		isLast := i == len(segments)-1
		typ, conf := classifyValue(seg, isLast && ext != "" && seg == ext)
		out = append(out, FilenameToken{
			Value:         seg,
			Position:      i,
			SuggestedType: typ,
			Confidence:    conf,
		})
	}
	return out
}

// classifyValue определяет тип по одному значению, без статистики выборки.
func classifyValue(value string, extensionSlot bool) (TokenType, float64) {
	switch {
	case extensionSlot && IsImageExtension(value):
		return TypeExtension, 1.0
	case IsDate(value):
		return TypeDate, 0.9
	}
	if _, ok := CameraSide(value); ok {
		if len(value) == 1 {
			return TypeCameraSide, 0.5
		}
		return TypeCameraSide, 0.8
	}
	return TypeUnknown, 0
}

func (t *Tokenizer) applyCustom(tok *FilenameToken) {
	if tok.SuggestedType != TypeUnknown {
		return
	}
	for _, c := range t.custom {
		if c.Matches(tok.Value) {
			tok.SuggestedType = c.MappedType
			tok.Confidence = CustomTokenConfidence
			return
		}
	}
}

func split(name string) []string {
	protected := protectedSpans(name)

	var segments []string
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			segments = append(segments, buf.String())
			buf.Reset()
		}
	}

	for i := 0; i < len(name); {
		if end, ok := protected[i]; ok {
			flush()
			segments = append(segments, name[i:end])
			i = end
			continue
		}
		if isDelimiter(name[i]) {
			flush()
			i++
			continue
		}
		buf.WriteByte(name[i])
		i++
	}
	flush()
	return segments
}

// protectedSpans находит даты, окружённые разделителями или границами имени.
func protectedSpans(name string) map[int]int {
	spans := make(map[int]int)
	for _, loc := range embeddedDate.FindAllStringIndex(name, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && !isDelimiter(name[start-1]) {
			continue
		}
		if end < len(name) && !isDelimiter(name[end]) {
			continue
		}
		spans[start] = end
	}
	return spans
}

func isDelimiter(c byte) bool {
	return strings.IndexByte(Delimiters, c) >= 0
}

// Analyze анализирует выборку имён.
func (t *Tokenizer) Analyze(names []string) *TokenAnalysis {
	a, _ := t.AnalyzeContext(context.Background(), names)
	return a
}

// AnalyzeContext анализирует выборку, проверяя отмену контекста между файлами.
//
// Стоимость O(n·m), где n — число файлов, m — токенов в имени.
// Ограничение размера выборки — ответственность вызывающего.
func (t *Tokenizer) AnalyzeContext(ctx context.Context, names []string) (*TokenAnalysis, error) {
	rows := make([]row, 0, len(names))
	tokenized := make(map[string][]FilenameToken, len(names))

	for i, name := range names {
		if i%32 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if _, dup := tokenized[name]; dup {
			continue
		}
		toks := tokenizeRaw(name)
		tokenized[name] = toks
		if len(toks) == 0 {
			continue
		}
		rows = append(rows, newRow(name, toks))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detect(rows)

	for _, r := range rows {
		for i := range r.tokens {
			t.applyCustom(&r.tokens[i])
		}
		tokenized[r.name] = r.tokens
	}

	suggestions := SuggestTokenTypes(tokenized)
	scores := make(map[TokenType]float64, len(suggestions))
	for _, s := range suggestions {
		scores[s.Type] = s.Confidence
	}

	return NewTokenAnalysis(names, tokenized, suggestions, scores), nil
}

// Analyze — то же, что New().Analyze(names).
func Analyze(names []string) *TokenAnalysis {
	return New().Analyze(names)
}
