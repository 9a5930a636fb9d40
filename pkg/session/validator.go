package session

import (
	"context"
	"sync"
	"time"

	"github.com/ilkoid/poncho-patterns/pkg/events"
	"github.com/ilkoid/poncho-patterns/pkg/grouping"
	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/utils"
	"github.com/ilkoid/poncho-patterns/pkg/validation"
)

// ValidatorOption настраивает Validator.
type ValidatorOption func(*Validator)

// WithDebounce задаёт период тишины.
func WithDebounce(d time.Duration) ValidatorOption {
	return func(v *Validator) { v.delay = d }
}

// WithLowMatchRate задаёт порог предупреждения LOW_MATCH_RATE.
func WithLowMatchRate(rate float64) ValidatorOption {
	return func(v *Validator) { v.lowMatchRate = rate }
}

// WithEmitter подключает эмиттер событий EventValidated.
func WithEmitter(e events.Emitter) ValidatorOption {
	return func(v *Validator) { v.emitter = e }
}

// Validator пересчитывает валидацию при каждом изменении Store
// после периода тишины и хранит последний снимок.
//
// Rule 5: снимок защищён мьютексом, пересчёт выполняется над
// неизменяемой копией состояния.
type Validator struct {
	store        *Store
	delay        time.Duration
	lowMatchRate float64
	emitter      events.Emitter
	debounce     *Debouncer
	unsubscribe  func()

	mu   sync.RWMutex
	snap Snapshot
}

// NewValidator подписывается на store и сразу валидирует текущее состояние.
func NewValidator(store *Store, opts ...ValidatorOption) *Validator {
	v := &Validator{
		store:        store,
		delay:        DefaultDebounce,
		lowMatchRate: DefaultLowMatchRate,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.debounce = NewDebouncer(v.delay, func() { v.evaluate(v.store.Snapshot()) })
	v.unsubscribe = store.Subscribe(func(State, ChangeKind) { v.debounce.Trigger() })
	v.evaluate(store.Snapshot())
	return v
}

func (v *Validator) evaluate(st State) Snapshot {
	snap := Evaluate(st, v.lowMatchRate)

	v.mu.Lock()
	if snap.Revision < v.snap.Revision {
		snap = v.snap
		v.mu.Unlock()
		return snap
	}
	v.snap = snap
	v.mu.Unlock()

	utils.Debug("Validation recomputed",
		"revision", snap.Revision,
		"errors", len(snap.Result.Errors),
		"warnings", len(snap.Result.Warnings))

	if v.emitter != nil {
		v.emitter.Emit(context.Background(), events.New(events.EventValidated, events.ValidationData{
			Revision: snap.Revision,
			Errors:   len(snap.Result.Errors),
			Warnings: len(snap.Result.Warnings),
			Blocked:  !snap.Result.IsValid(),
		}))
	}
	return snap
}

func (v *Validator) current() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snap
}

// Result возвращает последний результат валидации.
func (v *Validator) Result() validation.Result {
	r := v.current().Result
	return validation.Merge(r)
}

// Errors возвращает копию блокирующих ошибок.
func (v *Validator) Errors() []validation.Error {
	return append([]validation.Error(nil), v.current().Result.Errors...)
}

// Warnings возвращает копию предупреждений.
func (v *Validator) Warnings() []validation.Warning {
	return append([]validation.Warning(nil), v.current().Result.Warnings...)
}

// HasAnyMessages сообщает, есть ли что показывать в панели валидации.
func (v *Validator) HasAnyMessages() bool {
	return v.current().Result.HasAnyMessages()
}

// IsBlocked сообщает, что есть блокирующие ошибки.
func (v *Validator) IsBlocked() bool {
	return !v.current().Result.IsValid()
}

// Revision возвращает ревизию состояния, по которой посчитан результат.
func (v *Validator) Revision() uint64 {
	return v.current().Revision
}

// Grouping возвращает превью группировки последнего пересчёта (может быть nil).
func (v *Validator) Grouping() *grouping.Result {
	return v.current().Grouping
}

// Pending сообщает, что пересчёт отложен.
func (v *Validator) Pending() bool {
	return v.debounce.Pending()
}

// ShouldShowSuccessBanner: результат относится к текущей ревизии,
// ошибок нет и кэшированная конфигурация проходит ValidatePatterns.
func (v *Validator) ShouldShowSuccessBanner() bool {
	snap := v.current()
	if snap.Revision != v.store.Revision() {
		return false
	}
	if !snap.Result.IsValid() || snap.Config == nil {
		return false
	}
	return pattern.ValidatePatterns(snap.Config).IsValid()
}

// ValidateNow отменяет отложенный пересчёт и валидирует текущее состояние.
func (v *Validator) ValidateNow() validation.Result {
	v.debounce.Cancel()
	return v.evaluate(v.store.Snapshot()).Result
}

// GenerateConfiguration возвращает копию конфигурации текущего состояния.
//
// Если результат устарел, валидация выполняется сразу. При блокирующих
// ошибках возвращается ErrBlocked.
func (v *Validator) GenerateConfiguration() (*pattern.Configuration, error) {
	snap := v.current()
	if snap.Revision != v.store.Revision() || v.Pending() {
		v.debounce.Cancel()
		snap = v.evaluate(v.store.Snapshot())
	}
	if !snap.Result.IsValid() || snap.Config == nil {
		return nil, ErrBlocked
	}
	return snap.Config.Clone(), nil
}

// Close отписывается от store и останавливает таймер.
func (v *Validator) Close() {
	v.unsubscribe()
	v.debounce.Stop()
}
