package tokens

import "sort"

// MaxSuggestionExamples — сколько примеров значений хранит подсказка.
const MaxSuggestionExamples = 3

// SuggestTokenTypes строит по одной подсказке на каждый найденный тип
// (кроме UNKNOWN). Confidence подсказки — среднее по токенам этого типа.
//
// Имена обходятся в отсортированном порядке, поэтому результат
// детерминирован. Подсказки отсортированы по убыванию confidence,
// при равенстве — по конкретности типа.
func SuggestTokenTypes(tokenized map[string][]FilenameToken) []TokenSuggestion {
	names := make([]string, 0, len(tokenized))
	for name := range tokenized {
		names = append(names, name)
	}
	sort.Strings(names)

	type agg struct {
		sum      float64
		count    int
		examples []string
		seen     map[string]struct{}
	}
	byType := make(map[TokenType]*agg)

	for _, name := range names {
		for _, tok := range tokenized[name] {
			if tok.SuggestedType == TypeUnknown || tok.SuggestedType == "" {
				continue
			}
			a, ok := byType[tok.SuggestedType]
			if !ok {
				a = &agg{seen: make(map[string]struct{})}
				byType[tok.SuggestedType] = a
			}
			a.sum += tok.Confidence
			a.count++
			if _, dup := a.seen[tok.Value]; !dup && len(a.examples) < MaxSuggestionExamples {
				a.seen[tok.Value] = struct{}{}
				a.examples = append(a.examples, tok.Value)
			}
		}
	}

	out := make([]TokenSuggestion, 0, len(byType))
	for typ, a := range byType {
		out = append(out, NewTokenSuggestion(typ, typ.Description(), a.examples, a.sum/float64(a.count)))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return moreSpecific(out[i].Type, out[j].Type)
	})
	return out
}
