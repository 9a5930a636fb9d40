// Package session держит изменяемое состояние мастера паттернов и
// пересчитывает валидацию с debounce.
//
// Store — единственный источник истины: каждое изменение создаёт новый
// снимок State и уведомляет подписчиков. Validator подписан на Store,
// откладывает пересчёт на период тишины и кэширует последний результат.
// AnalysisRunner выполняет анализ выборки в фоне, не более одного запуска
// на сессию.
//
// Package session следует правилам:
//   - Rule 5: Thread-safe доступ через sync.RWMutex, никаких глобальных переменных
//   - Rule 7: Все ошибки возвращаются, никаких panic в бизнес-логике
//   - Rule 11: фоновые операции уважают context.Context
package session

import (
	"fmt"
	"strings"

	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/tokens"
)

// Mode — режим редактирования конфигурации.
type Mode string

const (
	// ModeSimple — паттерны генерируются из токенов и правил.
	ModeSimple Mode = "simple"

	// ModeAdvanced — паттерны редактируются вручную и используются как есть.
	ModeAdvanced Mode = "advanced"
)

// ParseMode разбирает имя режима.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSimple, ModeAdvanced:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Step — шаг мастера.
type Step int

const (
	StepSamples Step = iota
	StepTokens
	StepRules
	StepReview
)

var stepNames = map[Step]string{
	StepSamples: "samples",
	StepTokens:  "tokens",
	StepRules:   "rules",
	StepReview:  "review",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Next возвращает следующий шаг (последний шаг остаётся последним).
func (s Step) Next() Step {
	if s >= StepReview {
		return StepReview
	}
	return s + 1
}

// Prev возвращает предыдущий шаг.
func (s Step) Prev() Step {
	if s <= StepSamples {
		return StepSamples
	}
	return s - 1
}

// ChangeKind — вид изменения состояния, передаётся подписчикам.
type ChangeKind string

const (
	ChangeSamples   ChangeKind = "samples"
	ChangeAnalysis  ChangeKind = "analysis"
	ChangeTokens    ChangeKind = "tokens"
	ChangeGroupID   ChangeKind = "group_id"
	ChangeRules     ChangeKind = "rules"
	ChangeOverrides ChangeKind = "overrides"
	ChangeMode      ChangeKind = "mode"
	ChangeStep      ChangeKind = "step"
)

// Overrides — паттерны, введённые вручную в advanced режиме.
type Overrides struct {
	GroupPattern    string `json:"group_pattern" yaml:"group_pattern"`
	FrontPattern    string `json:"front_pattern" yaml:"front_pattern"`
	RearPattern     string `json:"rear_pattern" yaml:"rear_pattern"`
	OverviewPattern string `json:"overview_pattern" yaml:"overview_pattern"`
}

// IsZero сообщает, что ни один паттерн не задан.
func (o Overrides) IsZero() bool {
	return o == Overrides{}
}

// OverridesFrom копирует паттерны из конфигурации.
func OverridesFrom(cfg *pattern.Configuration) Overrides {
	if cfg == nil {
		return Overrides{}
	}
	return Overrides{
		GroupPattern:    cfg.GroupPattern,
		FrontPattern:    cfg.FrontPattern,
		RearPattern:     cfg.RearPattern,
		OverviewPattern: cfg.OverviewPattern,
	}
}

// State — неизменяемый снимок состояния мастера.
//
// Снимки, полученные из Store, принадлежат вызывающему: Store никогда
// не меняет срезы уже выданного снимка.
type State struct {
	Revision  uint64
	Mode      Mode
	Step      Step
	Samples   []string
	Analysis  *tokens.TokenAnalysis
	Tokens    []tokens.FilenameToken
	GroupID   *tokens.FilenameToken
	Rules     []rules.RoleRule
	Overrides Overrides
}

func (s State) clone() State {
	out := s
	out.Samples = append([]string(nil), s.Samples...)
	out.Tokens = append([]tokens.FilenameToken(nil), s.Tokens...)
	out.Rules = append([]rules.RoleRule{}, s.Rules...)
	if s.GroupID != nil {
		tok := *s.GroupID
		out.GroupID = &tok
	}
	return out
}

// BuildConfiguration собирает конфигурацию из снимка.
//
// В simple режиме паттерны генерируются из токенов, group id и правил.
// В advanced режиме паттерны берутся из Overrides без изменений, правила
// и токены только переносятся в конфигурацию.
func BuildConfiguration(st State) (*pattern.Configuration, error) {
	if st.Mode == ModeAdvanced {
		cfg := &pattern.Configuration{
			GroupPattern:    st.Overrides.GroupPattern,
			FrontPattern:    st.Overrides.FrontPattern,
			RearPattern:     st.Overrides.RearPattern,
			OverviewPattern: st.Overrides.OverviewPattern,
			RoleRules:       append([]rules.RoleRule{}, st.Rules...),
			Tokens:          append([]tokens.FilenameToken(nil), st.Tokens...),
		}
		if st.GroupID != nil {
			tok := *st.GroupID
			cfg.GroupIDToken = &tok
		}
		return cfg, nil
	}

	if st.GroupID == nil {
		return nil, ErrNoGroupID
	}
	return pattern.Generate(st.Tokens, st.GroupID, st.Rules)
}
