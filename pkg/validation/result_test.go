package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckGroupPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    ErrorType
	}{
		{"blank", "   ", ErrorEmptyGroupPattern},
		{"syntax error", `^vehicle_([A-Z0-9]+_\w+\.jpg$`, ErrorRegexSyntax},
		{"no capturing group", `^vehicle_[A-Z0-9]+_\w+\.jpg$`, ErrorNoCapturingGroups},
		{"two capturing groups", `^(\w+)_(\d+)\.jpg$`, ErrorMultipleCapturingGroups},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CheckGroupPattern(tt.pattern)
			assert.False(t, res.IsValid())
			require.Len(t, res.Errors, 1)
			assert.Equal(t, tt.want, res.Errors[0].Type)
		})
	}

	t.Run("exactly one group", func(t *testing.T) {
		res := CheckGroupPattern(`^vehicle_([A-Z0-9]+)(?:_\w+)?\.jpg$`)
		assert.True(t, res.IsValid())
		assert.False(t, res.HasAnyMessages())
	})
}

func TestCountCapturingGroups(t *testing.T) {
	n, err := CountCapturingGroups(`(a)(?:b)(?P<c>c)`)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = CountCapturingGroups(`(`)
	assert.Error(t, err)
}

func TestResultCopyOnWrite(t *testing.T) {
	base := Success().WithWarning(WarningNoSampleFiles, "No sample files", "")
	withErr := base.WithError(ErrorNoGroupIDSelected, "Select a group id", "")

	assert.True(t, base.IsValid())
	assert.Len(t, base.Errors, 0)
	assert.False(t, withErr.IsValid())
	assert.True(t, withErr.HasError(ErrorNoGroupIDSelected))
	assert.True(t, withErr.HasWarning(WarningNoSampleFiles))
}

func TestMergeDeduplicates(t *testing.T) {
	a := Success().WithWarning(WarningMissingRoleRules, "No rules defined for role OVERVIEW", "")
	b := Success().
		WithWarning(WarningMissingRoleRules, "No rules defined for role OVERVIEW", "").
		WithError(ErrorEmptyRuleValue, "Rule for FRONT has an empty value", "")

	merged := Merge(a, b, a)

	assert.Len(t, merged.Warnings, 1)
	assert.Len(t, merged.Errors, 1)
	assert.False(t, merged.IsValid())
}

func TestRecommendations(t *testing.T) {
	for _, typ := range []ErrorType{
		ErrorNoConfiguration, ErrorNoGroupIDSelected, ErrorEmptyGroupPattern, ErrorRegexSyntax,
		ErrorNoCapturingGroups, ErrorMultipleCapturingGroups, ErrorNoRoleRules,
		ErrorInvalidRegexPattern, ErrorEmptyRuleValue, ErrorInvalidRuleConfiguration,
	} {
		assert.NotEmpty(t, ErrorRecommendation(typ), typ)
	}
	for _, typ := range []WarningType{
		WarningNoSampleFiles, WarningLowMatchRate, WarningIncompleteGroups,
		WarningUnmatchedFiles, WarningMissingRoleRules, WarningEmptyRuleValue,
	} {
		assert.NotEmpty(t, WarningRecommendation(typ), typ)
	}
}
