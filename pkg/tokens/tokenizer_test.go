package tokens

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(toks []FilenameToken) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Value
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "vehicle_001_front.jpg", []string{"vehicle", "001", "front", "jpg"}},
		{"collapses delimiters", "car__12--f..png", []string{"car", "12", "f", "png"}},
		{"space delimiter", "cam 7 rear.jpeg", []string{"cam", "7", "rear", "jpeg"}},
		{"iso date kept whole", "cam_2024-01-15_ABC.jpg", []string{"cam", "2024-01-15", "ABC", "jpg"}},
		{"us date kept whole", "01-15-2024_ABC.jpg", []string{"01-15-2024", "ABC", "jpg"}},
		{"leading delimiters", "__x_y", []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := Tokenize(tt.in)
			assert.Equal(t, tt.want, values(toks))
			for i, tok := range toks {
				assert.Equal(t, i, tok.Position)
			}
		})
	}
}

func TestTokenizeBlank(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   "))
	assert.NotNil(t, Tokenize(""))
}

func TestTokenizeLocalClassification(t *testing.T) {
	toks := Tokenize("vehicle_2024-01-15_front.JPG")
	require.Len(t, toks, 4)

	assert.Equal(t, TypeUnknown, toks[0].SuggestedType)
	assert.Equal(t, TypeDate, toks[1].SuggestedType)
	assert.Equal(t, TypeCameraSide, toks[2].SuggestedType)
	assert.Equal(t, TypeExtension, toks[3].SuggestedType)
	assert.Equal(t, 1.0, toks[3].Confidence)
}

func TestAnalyzeScenario(t *testing.T) {
	names := []string{
		"vehicle_001_front.jpg",
		"vehicle_001_rear.jpg",
		"vehicle_002_front.jpg",
		"vehicle_002_rear.jpg",
	}

	a := Analyze(names)
	assert.Equal(t, names, a.Filenames())

	toks, ok := a.TokensFor("vehicle_001_front.jpg")
	require.True(t, ok)
	require.Len(t, toks, 4)

	assert.Equal(t, TypePrefix, toks[0].SuggestedType)
	assert.Equal(t, TypeGroupID, toks[1].SuggestedType)
	assert.Equal(t, TypeCameraSide, toks[2].SuggestedType)
	assert.Equal(t, TypeExtension, toks[3].SuggestedType)
	assert.InDelta(t, 1.0, toks[2].Confidence, 1e-9)

	gid, ok := a.SuggestedGroupID("vehicle_002_rear.jpg")
	require.True(t, ok)
	assert.Equal(t, "002", gid.Value)
	assert.Equal(t, 1, gid.Position)
}

func TestAnalyzeGroupIDPrefersUniquePosition(t *testing.T) {
	names := []string{
		"cam1_A100_0001.jpg",
		"cam1_A100_0002.jpg",
		"cam1_B200_0003.jpg",
		"cam1_B200_0004.jpg",
	}
	a := Analyze(names)
	toks, _ := a.TokensFor(names[0])

	// Последний сегмент уникален для каждого файла и становится ключом.
	assert.Equal(t, TypeGroupID, toks[2].SuggestedType)
	assert.Equal(t, TypeUnknown, toks[1].SuggestedType)
}

func TestAnalyzeTieBreaksByEarliestPosition(t *testing.T) {
	names := []string{"a1_b1.png", "a2_b2.png"}
	a := Analyze(names)
	toks, _ := a.TokensFor(names[0])

	assert.Equal(t, TypeGroupID, toks[0].SuggestedType)
	assert.NotEqual(t, TypeGroupID, toks[1].SuggestedType)
}

func TestAnalyzeDateAndSuffix(t *testing.T) {
	names := []string{
		"site_20240115_X1_final.png",
		"site_20240116_X2_final.png",
		"site_20240117_X3_final.png",
	}
	a := Analyze(names)
	toks, _ := a.TokensFor(names[1])
	require.Len(t, toks, 5)

	assert.Equal(t, TypePrefix, toks[0].SuggestedType)
	assert.Equal(t, TypeDate, toks[1].SuggestedType)
	assert.Equal(t, TypeGroupID, toks[2].SuggestedType)
	assert.Equal(t, TypeSuffix, toks[3].SuggestedType)
	assert.Equal(t, TypeExtension, toks[4].SuggestedType)
}

func TestAnalyzeExtensionConfidence(t *testing.T) {
	a := Analyze([]string{"a_1.jpg", "a_2.jpg", "a_3.txt", "a_4.png"})
	assert.InDelta(t, 0.75, a.Confidence(TypeExtension), 1e-9)
}

func TestAnalyzeCustomTokens(t *testing.T) {
	tz := New(CustomToken{
		Name:       "lane",
		MappedType: TypeSuffix,
		Examples:   []string{"LaneA", "laneb"},
	})
	names := []string{"gate_01_lanea_x.jpg", "gate_02_LANEB_y.jpg", "gate_03_other_z.jpg"}
	a := tz.Analyze(names)

	toks, _ := a.TokensFor(names[1])
	assert.Equal(t, TypeSuffix, toks[2].SuggestedType)
	assert.Equal(t, CustomTokenConfidence, toks[2].Confidence)

	toks, _ = a.TokensFor(names[2])
	assert.Equal(t, TypeUnknown, toks[2].SuggestedType)

	single := tz.Tokenize("lanea.jpg")
	assert.Equal(t, TypeSuffix, single[0].SuggestedType)
}

func TestAnalyzeAccessorsReturnCopies(t *testing.T) {
	a := Analyze([]string{"vehicle_001_front.jpg", "vehicle_002_rear.jpg"})

	names := a.Filenames()
	names[0] = "mutated"
	assert.Equal(t, "vehicle_001_front.jpg", a.Filenames()[0])

	m := a.TokenizedFilenames()
	m["vehicle_001_front.jpg"][0].Value = "mutated"
	toks, _ := a.TokensFor("vehicle_001_front.jpg")
	assert.Equal(t, "vehicle", toks[0].Value)

	s := a.Suggestions()
	require.NotEmpty(t, s)
	s[0].Examples = nil
	assert.NotEmpty(t, a.Suggestions()[0].Examples)

	scores := a.ConfidenceScores()
	scores[TypeExtension] = -1
	assert.Equal(t, 1.0, a.Confidence(TypeExtension))
}

func TestAnalyzeContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, err := New().AnalyzeContext(ctx, []string{"a_1.jpg"})
	assert.Nil(t, a)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeEmptySample(t *testing.T) {
	a := Analyze(nil)
	assert.Empty(t, a.Filenames())
	assert.Empty(t, a.Suggestions())
}

func TestSuggestTokenTypes(t *testing.T) {
	names := []string{
		"vehicle_001_front.jpg",
		"vehicle_002_rear.jpg",
		"vehicle_003_front.jpg",
		"vehicle_004_rear.jpg",
	}
	a := Analyze(names)
	s := a.Suggestions()

	require.NotEmpty(t, s)
	for i := 1; i < len(s); i++ {
		assert.GreaterOrEqual(t, s[i-1].Confidence, s[i].Confidence)
	}

	byType := make(map[TokenType]TokenSuggestion)
	for _, sug := range s {
		assert.NotEqual(t, TypeUnknown, sug.Type)
		assert.LessOrEqual(t, len(sug.Examples), MaxSuggestionExamples)
		byType[sug.Type] = sug
	}
	require.Contains(t, byType, TypeGroupID)
	assert.Equal(t, []string{"001", "002", "003"}, byType[TypeGroupID].Examples)
	assert.Equal(t, []string{"front", "rear"}, byType[TypeCameraSide].Examples)
}

func TestNewTokenSuggestionClamps(t *testing.T) {
	assert.Equal(t, 1.0, NewTokenSuggestion(TypeDate, "", nil, 1.7).Confidence)
	assert.Equal(t, 0.0, NewTokenSuggestion(TypeDate, "", nil, -0.2).Confidence)
}
