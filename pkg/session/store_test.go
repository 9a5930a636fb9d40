package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/tokens"
)

var sampleNames = []string{
	"vehicle_001_front.jpg",
	"vehicle_001_rear.jpg",
	"vehicle_002_front.jpg",
	"vehicle_002_rear.jpg",
}

var sideRules = []rules.RoleRule{
	{TargetRole: rules.RoleFront, RuleType: rules.RuleContains, RuleValue: "front"},
	{TargetRole: rules.RoleRear, RuleType: rules.RuleContains, RuleValue: "rear"},
}

func TestStoreRevisionsAndListeners(t *testing.T) {
	s := NewStore(nil)
	var changes []ChangeKind
	unsubscribe := s.Subscribe(func(st State, change ChangeKind) {
		changes = append(changes, change)
		assert.Equal(t, s.Revision(), st.Revision)
	})

	s.SetSamples(sampleNames)
	s.SetRules(sideRules)
	s.SetStep(StepTokens)
	assert.Equal(t, uint64(3), s.Revision())
	assert.Equal(t, []ChangeKind{ChangeSamples, ChangeRules, ChangeStep}, changes)

	unsubscribe()
	unsubscribe()
	s.SetStep(StepRules)
	assert.Len(t, changes, 3)
}

func TestStoreSnapshotsAreIndependent(t *testing.T) {
	s := NewStore(sideRules)
	snap := s.Snapshot()
	snap.Rules[0].RuleValue = "mutated"
	snap.Samples = append(snap.Samples, "x.jpg")

	assert.Equal(t, "front", s.Snapshot().Rules[0].RuleValue)
	assert.Empty(t, s.Snapshot().Samples)
	assert.NotNil(t, s.Snapshot().Rules)
}

func TestStoreSetAnalysisPicksSuggestedGroupID(t *testing.T) {
	s := NewStore(sideRules)
	s.SetSamples(sampleNames)
	s.SetAnalysis(tokens.Analyze(sampleNames))

	st := s.Snapshot()
	require.Len(t, st.Tokens, 4)
	require.NotNil(t, st.GroupID)
	assert.Equal(t, "001", st.GroupID.Value)

	require.NoError(t, s.SelectSample("vehicle_002_rear.jpg"))
	st = s.Snapshot()
	assert.Equal(t, "002", st.GroupID.Value)
	assert.Equal(t, 1, st.GroupID.Position)

	assert.ErrorIs(t, s.SelectSample("other.jpg"), ErrSampleNotFound)
}

func TestStoreSelectGroupID(t *testing.T) {
	s := NewStore(nil)
	s.SetTokens(tokens.Tokenize("vehicle_001_front.jpg"))
	rev := s.Revision()

	err := s.SelectGroupID(&tokens.FilenameToken{Value: "zzz", Position: 1})
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.Equal(t, rev, s.Revision())

	require.NoError(t, s.SelectGroupIDAt(1))
	assert.Equal(t, "001", s.Snapshot().GroupID.Value)

	require.NoError(t, s.SelectGroupID(nil))
	assert.Nil(t, s.Snapshot().GroupID)

	assert.ErrorIs(t, s.SelectGroupIDAt(9), ErrTokenNotFound)
}

func TestStoreSetTokensDropsStaleGroupID(t *testing.T) {
	s := NewStore(nil)
	s.SetTokens(tokens.Tokenize("vehicle_001_front.jpg"))
	require.NoError(t, s.SelectGroupIDAt(1))

	s.SetTokens(tokens.Tokenize("vehicle_002_front.jpg"))
	assert.Nil(t, s.Snapshot().GroupID)
}

func TestStoreRuleEditing(t *testing.T) {
	s := NewStore(nil)
	s.AddRule(sideRules[0])
	s.AddRule(sideRules[1])

	require.NoError(t, s.UpdateRule(1, rules.RoleRule{TargetRole: rules.RoleRear, RuleType: rules.RuleEndsWith, RuleValue: "_r.jpg"}))
	require.NoError(t, s.RemoveRule(0))
	assert.ErrorIs(t, s.RemoveRule(5), ErrRuleIndex)
	assert.ErrorIs(t, s.UpdateRule(-1, rules.RoleRule{}), ErrRuleIndex)

	got := s.Snapshot().Rules
	require.Len(t, got, 1)
	assert.Equal(t, rules.RuleEndsWith, got[0].RuleType)
}

func TestStoreSetModeSeedsOverrides(t *testing.T) {
	s := NewStore(sideRules)
	s.SetSamples(sampleNames)
	s.SetAnalysis(tokens.Analyze(sampleNames))
	s.SetMode(ModeAdvanced)

	st := s.Snapshot()
	assert.Equal(t, ModeAdvanced, st.Mode)
	assert.NotEmpty(t, st.Overrides.GroupPattern)
	assert.Equal(t, `(?i:.*front.*)`, st.Overrides.FrontPattern)

	s.SetOverrides(Overrides{GroupPattern: `^(x)$`})
	s.SetMode(ModeSimple)
	s.SetMode(ModeAdvanced)
	assert.Equal(t, `^(x)$`, s.Snapshot().Overrides.GroupPattern)
}

func TestStoreApply(t *testing.T) {
	s := NewStore(nil)
	s.Apply(&pattern.Configuration{
		GroupPattern: `^v_(\d+)_`,
		FrontPattern: `front`,
		RoleRules:    sideRules,
	})

	st := s.Snapshot()
	assert.Equal(t, ModeAdvanced, st.Mode)
	assert.Equal(t, `front`, st.Overrides.FrontPattern)
	assert.Len(t, st.Rules, 2)

	cfg, err := BuildConfiguration(st)
	require.NoError(t, err)
	assert.Equal(t, `^v_(\d+)_`, cfg.GroupPattern)
}

func TestBuildConfigurationSimpleWithoutGroupID(t *testing.T) {
	_, err := BuildConfiguration(State{Mode: ModeSimple})
	assert.ErrorIs(t, err, ErrNoGroupID)
}

func TestStepNavigation(t *testing.T) {
	assert.Equal(t, StepTokens, StepSamples.Next())
	assert.Equal(t, StepReview, StepReview.Next())
	assert.Equal(t, StepSamples, StepSamples.Prev())
	assert.Equal(t, "rules", StepRules.String())

	m, err := ParseMode("Advanced")
	require.NoError(t, err)
	assert.Equal(t, ModeAdvanced, m)
	_, err = ParseMode("expert")
	assert.Error(t, err)
}
