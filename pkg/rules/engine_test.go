package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-patterns/pkg/validation"
)

func TestRolesFollowPrecedenceTable(t *testing.T) {
	assert.Equal(t, []ImageRole{RoleOverview, RoleFront, RoleRear}, Roles())
	assert.Less(t, Precedence(RoleOverview), Precedence(RoleFront))
	assert.Less(t, Precedence(RoleFront), Precedence(RoleRear))
	assert.Zero(t, Precedence("SIDE"))
}

func TestFragment(t *testing.T) {
	tests := []struct {
		name string
		rule RoleRule
		want string
	}{
		{"equals", RoleRule{RuleType: RuleEquals, RuleValue: "a.jpg", CaseSensitive: true}, `^a\.jpg$`},
		{"contains", RoleRule{RuleType: RuleContains, RuleValue: "front"}, `(?i:.*front.*)`},
		{"starts with", RoleRule{RuleType: RuleStartsWith, RuleValue: "F_", CaseSensitive: true}, `^F_.*`},
		{"ends with", RoleRule{RuleType: RuleEndsWith, RuleValue: "_r.png"}, `(?i:.*_r\.png$)`},
		{"override verbatim", RoleRule{RuleType: RuleRegexOverride, RuleValue: `_(f|fr)_`, CaseSensitive: true}, `_(f|fr)_`},
		{"unknown type", RoleRule{RuleType: "LIKE", RuleValue: "x"}, ""},
		{"invalid utf-8 literal", RoleRule{RuleType: RuleContains, RuleValue: "\xfffr", CaseSensitive: true}, `.*\x{FFFD}fr.*`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fragment(tt.rule))
		})
	}
}

func TestClassifyFilenameInvalidUTF8(t *testing.T) {
	rs := []RoleRule{{TargetRole: RoleFront, RuleType: RuleStartsWith, RuleValue: "\xff_"}}

	role, ok, err := ClassifyFilename("\xff_01.jpg", rs)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, RoleFront, role)

	_, ok, err = ClassifyFilename("a_01.jpg", rs)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateRegexPattern(t *testing.T) {
	rules := []RoleRule{
		{TargetRole: RoleFront, RuleType: RuleContains, RuleValue: "fr", Priority: 2},
		{TargetRole: RoleFront, RuleType: RuleContains, RuleValue: "Front", CaseSensitive: true, Priority: 1},
		{TargetRole: RoleRear, RuleType: RuleContains, RuleValue: "rear"},
		{TargetRole: RoleFront, RuleType: RuleContains, RuleValue: "  ", Priority: 0},
	}

	t.Run("priority order and per-fragment case", func(t *testing.T) {
		assert.Equal(t, `(?:.*Front.*|(?i:.*fr.*))`, GenerateRegexPattern(rules, RoleFront))
	})

	t.Run("single rule is not wrapped", func(t *testing.T) {
		assert.Equal(t, `(?i:.*rear.*)`, GenerateRegexPattern(rules, RoleRear))
	})

	t.Run("no rules for role", func(t *testing.T) {
		assert.Equal(t, "", GenerateRegexPattern(rules, RoleOverview))
	})

	t.Run("independent of list order when priorities differ", func(t *testing.T) {
		reversed := []RoleRule{rules[3], rules[2], rules[1], rules[0]}
		assert.Equal(t, GenerateRegexPattern(rules, RoleFront), GenerateRegexPattern(reversed, RoleFront))
	})
}

func TestClassifyFilenamePrecedence(t *testing.T) {
	rules := []RoleRule{
		{TargetRole: RoleOverview, RuleType: RuleContains, RuleValue: "overview", Priority: 0},
		{TargetRole: RoleFront, RuleType: RuleContains, RuleValue: "view", Priority: 1},
	}

	role, ok, err := ClassifyFilename("vehicle_overview.jpg", rules)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, RoleOverview, role)

	role, ok, err = ClassifyFilename("vehicle_preview.jpg", rules)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, RoleFront, role)
}

func TestClassifyFilenameOverviewWinsForAnyOverlap(t *testing.T) {
	names := []string{"x_front_ov.jpg", "OV_rear.png", "a-ov-front-rear.bmp"}
	rules := []RoleRule{
		{TargetRole: RoleRear, RuleType: RuleContains, RuleValue: "rear"},
		{TargetRole: RoleFront, RuleType: RuleContains, RuleValue: "front"},
		{TargetRole: RoleOverview, RuleType: RuleRegexOverride, RuleValue: `(^|[_\-])ov([_\-.]|$)`},
	}
	for _, name := range names {
		role, ok, err := ClassifyFilename(name, rules)
		require.NoError(t, err)
		require.True(t, ok, name)
		assert.Equal(t, RoleOverview, role, name)
	}
}

func TestClassifyFilenameRuleTypes(t *testing.T) {
	tests := []struct {
		name  string
		rule  RoleRule
		file  string
		match bool
	}{
		{"equals exact", RoleRule{RuleType: RuleEquals, RuleValue: "front.jpg"}, "FRONT.jpg", true},
		{"equals case sensitive", RoleRule{RuleType: RuleEquals, RuleValue: "front.jpg", CaseSensitive: true}, "FRONT.jpg", false},
		{"equals is not substring", RoleRule{RuleType: RuleEquals, RuleValue: "front"}, "front.jpg", false},
		{"contains", RoleRule{RuleType: RuleContains, RuleValue: "_f_"}, "car_F_01.jpg", true},
		{"starts with", RoleRule{RuleType: RuleStartsWith, RuleValue: "fr"}, "fr_01.jpg", true},
		{"starts with miss", RoleRule{RuleType: RuleStartsWith, RuleValue: "fr"}, "x_fr.jpg", false},
		{"ends with", RoleRule{RuleType: RuleEndsWith, RuleValue: "_f.jpg"}, "car_01_f.jpg", true},
		{"ends with miss", RoleRule{RuleType: RuleEndsWith, RuleValue: "_f"}, "car_01_f.jpg", false},
		{"override find", RoleRule{RuleType: RuleRegexOverride, RuleValue: `\d{3}_f`, CaseSensitive: true}, "car_001_f.jpg", true},
		{"literal dot is escaped", RoleRule{RuleType: RuleContains, RuleValue: "a.b"}, "axb.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.rule.TargetRole = RoleFront
			role, ok, err := ClassifyFilename(tt.file, []RoleRule{tt.rule})
			require.NoError(t, err)
			assert.Equal(t, tt.match, ok)
			if tt.match {
				assert.Equal(t, RoleFront, role)
			}
		})
	}
}

func TestClassifyFilenameErrors(t *testing.T) {
	_, _, err := ClassifyFilename("  ", []RoleRule{})
	assert.ErrorIs(t, err, ErrBlankFilename)

	_, _, err = ClassifyFilename("a.jpg", nil)
	assert.ErrorIs(t, err, ErrNilRules)

	_, _, err = ClassifyFilename("a.jpg", []RoleRule{
		{TargetRole: RoleRear, RuleType: RuleRegexOverride, RuleValue: "(unclosed"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRegex)

	var ruleErr *RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, RoleRear, ruleErr.Rule.TargetRole)
}

func TestClassifyNilSliceIsNilRules(t *testing.T) {
	var zero []RoleRule

	_, _, err := ClassifyFilename("a.jpg", zero)
	assert.ErrorIs(t, err, ErrNilRules)
	_, err = ClassifyFilenames([]string{"a.jpg"}, zero)
	assert.ErrorIs(t, err, ErrNilRules)

	got, err := ClassifyFilenames([]string{"a.jpg"}, []RoleRule{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClassifyFilenameUnbalancedOverride(t *testing.T) {
	// ".*)(?i:.*" компилируется только внутри обёртки (?i:...).
	_, _, err := ClassifyFilename("a.jpg", []RoleRule{
		{TargetRole: RoleFront, RuleType: RuleRegexOverride, RuleValue: ".*)(?i:.*"},
	})
	assert.ErrorIs(t, err, ErrInvalidRegex)
}

func TestClassifyFilenameEmptyRules(t *testing.T) {
	role, ok, err := ClassifyFilename("vehicle_001_front.jpg", []RoleRule{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ImageRole(""), role)

	res := ValidateRules([]RoleRule{})
	assert.True(t, res.IsValid())
	assert.Len(t, res.Warnings, 3)
	for _, w := range res.Warnings {
		assert.Equal(t, validation.WarningMissingRoleRules, w.Type)
	}
}

func TestClassifyFilenameBlankRuleNeverMatches(t *testing.T) {
	_, ok, err := ClassifyFilename("anything.jpg", []RoleRule{
		{TargetRole: RoleFront, RuleType: RuleContains, RuleValue: ""},
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClassifyFilenames(t *testing.T) {
	rules := []RoleRule{
		{TargetRole: RoleFront, RuleType: RuleContains, RuleValue: "front"},
		{TargetRole: RoleRear, RuleType: RuleContains, RuleValue: "rear"},
	}
	names := []string{"v_1_front.jpg", "", "v_1_rear.jpg", "v_2_front.jpg", "v_2_side.jpg"}

	got, err := ClassifyFilenames(names, rules)
	require.NoError(t, err)
	assert.Equal(t, []string{"v_1_front.jpg", "v_2_front.jpg"}, got[RoleFront])
	assert.Equal(t, []string{"v_1_rear.jpg"}, got[RoleRear])
	assert.NotContains(t, got, RoleOverview)

	for _, name := range names[2:] {
		role, ok, err := ClassifyFilename(name, rules)
		require.NoError(t, err)
		if ok {
			assert.Contains(t, got[role], name)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	a := []RoleRule{
		{TargetRole: RoleFront, RuleType: RuleContains, RuleValue: "f", Priority: 1},
		{TargetRole: RoleRear, RuleType: RuleContains, RuleValue: "r", Priority: 2},
		{TargetRole: RoleOverview, RuleType: RuleContains, RuleValue: "ov", Priority: 3},
	}
	b := []RoleRule{a[2], a[0], a[1]}

	for _, name := range []string{"x_f.jpg", "x_r.jpg", "x_ov.jpg", "fr.jpg", "none.png"} {
		r1, ok1, err1 := ClassifyFilename(name, a)
		r2, ok2, err2 := ClassifyFilename(name, b)
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, ok1, ok2, name)
		assert.Equal(t, r1, r2, name)
	}
}

func TestRuleSetMatchingRule(t *testing.T) {
	rules := []RoleRule{
		{TargetRole: RoleFront, RuleType: RuleContains, RuleValue: "front", Priority: 2},
		{TargetRole: RoleFront, RuleType: RuleEndsWith, RuleValue: "_f.jpg", Priority: 1},
	}
	rs, err := Compile(rules)
	require.NoError(t, err)

	r, ok := rs.MatchingRule("front_f.jpg")
	require.True(t, ok)
	assert.Equal(t, RuleEndsWith, r.RuleType)

	_, ok = rs.MatchingRule("side.jpg")
	assert.False(t, ok)
}

func TestValidateRules(t *testing.T) {
	t.Run("nil rules", func(t *testing.T) {
		res := ValidateRules(nil)
		assert.True(t, res.HasError(validation.ErrorInvalidRuleConfiguration))
	})

	t.Run("blank value is a warning", func(t *testing.T) {
		res := ValidateRules([]RoleRule{
			{TargetRole: RoleOverview, RuleType: RuleContains, RuleValue: ""},
			{TargetRole: RoleFront, RuleType: RuleContains, RuleValue: "f"},
			{TargetRole: RoleRear, RuleType: RuleContains, RuleValue: "r"},
		})
		assert.True(t, res.IsValid())
		assert.True(t, res.HasWarning(validation.WarningEmptyRuleValue))
		assert.False(t, res.HasWarning(validation.WarningMissingRoleRules))
	})

	t.Run("invalid override", func(t *testing.T) {
		res := ValidateRules([]RoleRule{
			{TargetRole: RoleFront, RuleType: RuleRegexOverride, RuleValue: "[a-"},
		})
		assert.True(t, res.HasError(validation.ErrorInvalidRegexPattern))
		require.NotEmpty(t, res.Errors)
		assert.NotEmpty(t, res.Errors[0].Details)
	})

	t.Run("unknown rule type", func(t *testing.T) {
		res := ValidateRules([]RoleRule{
			{TargetRole: RoleFront, RuleType: "LIKE", RuleValue: "front"},
		})
		assert.True(t, res.HasError(validation.ErrorInvalidRuleConfiguration))
	})

	t.Run("missing roles", func(t *testing.T) {
		res := ValidateRules([]RoleRule{
			{TargetRole: RoleFront, RuleType: RuleContains, RuleValue: "f"},
		})
		assert.True(t, res.IsValid())
		assert.Len(t, res.Warnings, 2)
	})
}

func TestParse(t *testing.T) {
	role, err := ParseRole(" front ")
	require.NoError(t, err)
	assert.Equal(t, RoleFront, role)
	_, err = ParseRole("side")
	assert.Error(t, err)

	typ, err := ParseRuleType("starts_with")
	require.NoError(t, err)
	assert.Equal(t, RuleStartsWith, typ)
	_, err = ParseRuleType("like")
	assert.Error(t, err)
}

func TestParseSpec(t *testing.T) {
	r, err := ParseSpec("front:contains:front", 2)
	require.NoError(t, err)
	assert.Equal(t, RoleRule{TargetRole: RoleFront, RuleType: RuleContains, RuleValue: "front", Priority: 2}, r)

	r, err = ParseSpec("REAR:REGEX_OVERRIDE!:_(r|R):\\d", 0)
	require.NoError(t, err)
	assert.True(t, r.CaseSensitive)
	assert.Equal(t, `_(r|R):\d`, r.RuleValue)
	assert.Equal(t, "REAR:REGEX_OVERRIDE!:_(r|R):\\d", FormatSpec(r))

	for _, bad := range []string{"FRONT:CONTAINS", "SIDE:CONTAINS:x", "FRONT:GLOB:x"} {
		_, err := ParseSpec(bad, 0)
		assert.Error(t, err, bad)
	}
}
