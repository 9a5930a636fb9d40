package session

import (
	"context"
	"sync"
	"time"

	"github.com/ilkoid/poncho-patterns/pkg/events"
	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/tokens"
	"github.com/ilkoid/poncho-patterns/pkg/utils"
)

// DefaultSampleLimit — максимальный размер выборки, передаваемой в анализ.
const DefaultSampleLimit = 500

// Options — параметры сессии. Нулевые значения заменяются дефолтами.
type Options struct {
	Debounce     time.Duration
	LowMatchRate float64
	SampleLimit  int
	Rules        []rules.RoleRule
	CustomTokens []tokens.CustomToken
	Emitter      events.Emitter
}

// Session связывает Store, Validator и AnalysisRunner одной сессии мастера.
//
// Флаг «диалог пользовательских токенов показан» живёт в сессии,
// а не в глобальном состоянии процесса.
type Session struct {
	store     *Store
	validator *Validator
	runner    *AnalysisRunner
	emitter   events.Emitter
	limit     int

	mu                sync.Mutex
	custom            []tokens.CustomToken
	customDialogShown bool
	closed            bool
}

// New создаёт сессию.
func New(opts Options) *Session {
	if opts.SampleLimit <= 0 {
		opts.SampleLimit = DefaultSampleLimit
	}
	if opts.LowMatchRate <= 0 {
		opts.LowMatchRate = DefaultLowMatchRate
	}

	s := &Session{
		store:   NewStore(opts.Rules),
		emitter: opts.Emitter,
		limit:   opts.SampleLimit,
		custom:  append([]tokens.CustomToken(nil), opts.CustomTokens...),
	}
	s.store.Subscribe(func(st State, change ChangeKind) {
		s.emit(events.EventStateChanged, events.StateData{Revision: st.Revision, Change: string(change)})
	})
	s.validator = NewValidator(s.store,
		WithDebounce(opts.Debounce),
		WithLowMatchRate(opts.LowMatchRate),
		WithEmitter(opts.Emitter),
	)
	s.runner = NewAnalysisRunner(s.onAnalysisDone)
	return s
}

// Store возвращает хранилище состояния.
func (s *Session) Store() *Store {
	return s.store
}

// Validator возвращает валидатор сессии.
func (s *Session) Validator() *Validator {
	return s.validator
}

func (s *Session) emit(t events.EventType, data events.EventData) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(context.Background(), events.New(t, data))
}

// LoadSamples заменяет выборку (обрезая до лимита) и запускает анализ.
// Возвращает идентификатор запуска.
func (s *Session) LoadSamples(ctx context.Context, names []string) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	s.mu.Unlock()

	if len(names) > s.limit {
		utils.Warn("Sample truncated", "files", len(names), "limit", s.limit)
		names = names[:s.limit]
	}
	s.store.SetSamples(names)
	return s.startAnalysis(ctx, names), nil
}

func (s *Session) startAnalysis(ctx context.Context, names []string) string {
	tz := tokens.New(s.CustomTokens()...)
	id := s.runner.Start(ctx, tz, names)
	utils.Info("Analysis started", "run_id", id, "files", len(names))
	s.emit(events.EventAnalysisStarted, events.AnalysisData{RunID: id, Files: len(names)})
	return id
}

func (s *Session) onAnalysisDone(out AnalysisOutcome) {
	data := events.AnalysisData{RunID: out.RunID, Files: out.Files, Duration: out.Duration}
	switch out.Status {
	case AnalysisCompleted:
		if !sameNames(s.store.Snapshot().Samples, out.Analysis.Filenames()) {
			utils.Debug("Stale analysis dropped", "run_id", out.RunID)
			return
		}
		s.store.SetAnalysis(out.Analysis)
		utils.Info("Analysis completed", "run_id", out.RunID, "files", out.Files, "duration", out.Duration)
		s.emit(events.EventAnalysisCompleted, data)
	case AnalysisCanceled:
		utils.Info("Analysis canceled", "run_id", out.RunID)
		s.emit(events.EventAnalysisCanceled, data)
	default:
		utils.Error("Analysis failed", "run_id", out.RunID, "error", out.Err)
		s.emit(events.EventError, events.ErrorData{Err: out.Err})
	}
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// WaitAnalysis ждёт завершения последнего запуска анализа.
func (s *Session) WaitAnalysis(ctx context.Context) (AnalysisOutcome, bool) {
	return s.runner.Wait(ctx)
}

// Analyzing сообщает, выполняется ли анализ.
func (s *Session) Analyzing() bool {
	return s.runner.Running()
}

// CustomTokens возвращает копию пользовательских токенов.
func (s *Session) CustomTokens() []tokens.CustomToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tokens.CustomToken(nil), s.custom...)
}

// SetCustomTokens заменяет пользовательские токены и, если выборка
// загружена, перезапускает анализ.
func (s *Session) SetCustomTokens(ctx context.Context, custom []tokens.CustomToken, source string) {
	s.mu.Lock()
	s.custom = append([]tokens.CustomToken(nil), custom...)
	closed := s.closed
	s.mu.Unlock()

	utils.Info("Custom tokens updated", "count", len(custom), "source", source)
	s.emit(events.EventCustomTokensReloaded, events.CustomTokensData{Count: len(custom), Path: source})

	if samples := s.store.Snapshot().Samples; !closed && len(samples) > 0 {
		s.startAnalysis(ctx, samples)
	}
}

// ShouldOfferCustomTokens: диалог ещё не показывался в этой сессии,
// а в текущих токенах есть нераспознанные сегменты.
func (s *Session) ShouldOfferCustomTokens() bool {
	s.mu.Lock()
	shown := s.customDialogShown
	s.mu.Unlock()
	if shown {
		return false
	}
	for _, t := range s.store.Snapshot().Tokens {
		if t.SuggestedType == tokens.TypeUnknown {
			return true
		}
	}
	return false
}

// MarkCustomTokenDialogShown запоминает, что диалог показан.
func (s *Session) MarkCustomTokenDialogShown() {
	s.mu.Lock()
	s.customDialogShown = true
	s.mu.Unlock()
}

// CustomTokenDialogShown сообщает, показывался ли диалог в этой сессии.
func (s *Session) CustomTokenDialogShown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customDialogShown
}

// GenerateConfiguration возвращает конфигурацию текущего состояния
// или ErrBlocked.
func (s *Session) GenerateConfiguration() (*pattern.Configuration, error) {
	return s.validator.GenerateConfiguration()
}

// Close отменяет анализ и останавливает валидацию.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.runner.Cancel()
	s.runner.Wait(context.Background())
	s.validator.Close()
}
