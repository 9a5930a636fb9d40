package session

import (
	"fmt"
	"sync"

	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/tokens"
)

// Listener получает новый снимок и вид изменения.
//
// Вызывается синхронно в горутине, которая изменила состояние,
// после освобождения блокировки Store.
type Listener func(st State, change ChangeKind)

// Store — thread-safe хранилище состояния мастера с подписчиками.
//
// Rule 5: все изменения защищены мьютексом, каждое изменение
// увеличивает Revision.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewStore создаёт хранилище в simple режиме с начальными правилами.
func NewStore(initialRules []rules.RoleRule) *Store {
	return &Store{
		state: State{
			Mode:  ModeSimple,
			Step:  StepSamples,
			Rules: append([]rules.RoleRule{}, initialRules...),
		},
		listeners: make(map[int]Listener),
	}
}

// Snapshot возвращает копию текущего состояния.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Revision возвращает номер текущей ревизии.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Revision
}

// Subscribe регистрирует подписчика. Возвращает функцию отписки.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// update применяет fn к копии состояния. Если fn вернула ошибку,
// состояние не меняется и подписчики не уведомляются.
func (s *Store) update(change ChangeKind, fn func(st *State) error) error {
	s.mu.Lock()
	next := s.state.clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	next.Revision = s.state.Revision + 1
	s.state = next

	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	snap := next.clone()
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap, change)
	}
	return nil
}

// SetSamples заменяет выборку. Предыдущий анализ сбрасывается,
// токены и выбранный group id сохраняются до прихода нового анализа.
func (s *Store) SetSamples(names []string) {
	_ = s.update(ChangeSamples, func(st *State) error {
		st.Samples = append([]string(nil), names...)
		st.Analysis = nil
		return nil
	})
}

// SetAnalysis сохраняет результат анализа и выбирает токены первого
// файла выборки. Выбранная позиция group id сохраняется, если она есть
// в новой последовательности, иначе берётся предложенная анализом.
func (s *Store) SetAnalysis(a *tokens.TokenAnalysis) {
	_ = s.update(ChangeAnalysis, func(st *State) error {
		st.Analysis = a
		if a == nil {
			return nil
		}
		for _, name := range a.Filenames() {
			toks, ok := a.TokensFor(name)
			if !ok || len(toks) == 0 {
				continue
			}
			st.Tokens = toks
			st.GroupID = reconcileGroupID(st.GroupID, toks)
			return nil
		}
		st.Tokens = nil
		st.GroupID = nil
		return nil
	})
}

func reconcileGroupID(current *tokens.FilenameToken, toks []tokens.FilenameToken) *tokens.FilenameToken {
	if current != nil {
		for _, t := range toks {
			if t.Position == current.Position {
				tok := t
				return &tok
			}
		}
	}
	if t, ok := tokens.GroupIDToken(toks); ok {
		return &t
	}
	return nil
}

// SelectSample делает текущей последовательность токенов указанного файла.
func (s *Store) SelectSample(name string) error {
	return s.update(ChangeTokens, func(st *State) error {
		if st.Analysis == nil {
			return fmt.Errorf("%w: %s", ErrSampleNotFound, name)
		}
		toks, ok := st.Analysis.TokensFor(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrSampleNotFound, name)
		}
		st.Tokens = toks
		st.GroupID = reconcileGroupID(st.GroupID, toks)
		return nil
	})
}

// SetTokens заменяет последовательность токенов. Group id сбрасывается,
// если его нет в новой последовательности.
func (s *Store) SetTokens(toks []tokens.FilenameToken) {
	_ = s.update(ChangeTokens, func(st *State) error {
		st.Tokens = append([]tokens.FilenameToken(nil), toks...)
		if st.GroupID != nil && !containsToken(st.Tokens, *st.GroupID) {
			st.GroupID = nil
		}
		return nil
	})
}

// SetTokenType меняет тип токена на позиции текущей последовательности.
func (s *Store) SetTokenType(position int, t tokens.TokenType) error {
	return s.update(ChangeTokens, func(st *State) error {
		for i := range st.Tokens {
			if st.Tokens[i].Position == position {
				st.Tokens[i].SuggestedType = t
				return nil
			}
		}
		return fmt.Errorf("%w: position %d", ErrTokenNotFound, position)
	})
}

// SelectGroupID выбирает токен идентификатора группы. nil сбрасывает выбор.
func (s *Store) SelectGroupID(tok *tokens.FilenameToken) error {
	return s.update(ChangeGroupID, func(st *State) error {
		if tok == nil {
			st.GroupID = nil
			return nil
		}
		if !containsToken(st.Tokens, *tok) {
			return fmt.Errorf("%w: %q at position %d", ErrTokenNotFound, tok.Value, tok.Position)
		}
		cp := *tok
		st.GroupID = &cp
		return nil
	})
}

// SelectGroupIDAt выбирает group id по позиции в текущей последовательности.
func (s *Store) SelectGroupIDAt(position int) error {
	return s.update(ChangeGroupID, func(st *State) error {
		for _, t := range st.Tokens {
			if t.Position == position {
				cp := t
				st.GroupID = &cp
				return nil
			}
		}
		return fmt.Errorf("%w: position %d", ErrTokenNotFound, position)
	})
}

// SetRules заменяет правила ролей.
func (s *Store) SetRules(rs []rules.RoleRule) {
	_ = s.update(ChangeRules, func(st *State) error {
		st.Rules = append([]rules.RoleRule{}, rs...)
		return nil
	})
}

// AddRule добавляет правило.
func (s *Store) AddRule(r rules.RoleRule) {
	_ = s.update(ChangeRules, func(st *State) error {
		st.Rules = append(st.Rules, r)
		return nil
	})
}

// UpdateRule заменяет правило по индексу.
func (s *Store) UpdateRule(i int, r rules.RoleRule) error {
	return s.update(ChangeRules, func(st *State) error {
		if i < 0 || i >= len(st.Rules) {
			return fmt.Errorf("%w: %d", ErrRuleIndex, i)
		}
		st.Rules[i] = r
		return nil
	})
}

// RemoveRule удаляет правило по индексу.
func (s *Store) RemoveRule(i int) error {
	return s.update(ChangeRules, func(st *State) error {
		if i < 0 || i >= len(st.Rules) {
			return fmt.Errorf("%w: %d", ErrRuleIndex, i)
		}
		st.Rules = append(st.Rules[:i], st.Rules[i+1:]...)
		return nil
	})
}

// SetMode переключает режим. При первом переходе в advanced паттерны
// заполняются из текущей сгенерированной конфигурации.
func (s *Store) SetMode(m Mode) {
	_ = s.update(ChangeMode, func(st *State) error {
		if m == ModeAdvanced && st.Mode != ModeAdvanced && st.Overrides.IsZero() {
			if cfg, err := BuildConfiguration(*st); err == nil {
				st.Overrides = OverridesFrom(cfg)
			}
		}
		st.Mode = m
		return nil
	})
}

// SetOverrides заменяет паттерны advanced режима.
func (s *Store) SetOverrides(o Overrides) {
	_ = s.update(ChangeOverrides, func(st *State) error {
		st.Overrides = o
		return nil
	})
}

// SetStep переключает шаг мастера.
func (s *Store) SetStep(step Step) {
	_ = s.update(ChangeStep, func(st *State) error {
		st.Step = step
		return nil
	})
}

// Apply загружает готовую конфигурацию (например, из пресета) в advanced режиме.
func (s *Store) Apply(cfg *pattern.Configuration) {
	_ = s.update(ChangeOverrides, func(st *State) error {
		if cfg == nil {
			return nil
		}
		st.Mode = ModeAdvanced
		st.Overrides = OverridesFrom(cfg)
		st.Rules = append([]rules.RoleRule{}, cfg.RoleRules...)
		if len(cfg.Tokens) > 0 {
			st.Tokens = append([]tokens.FilenameToken(nil), cfg.Tokens...)
		}
		if cfg.GroupIDToken != nil {
			tok := *cfg.GroupIDToken
			st.GroupID = &tok
		}
		return nil
	})
}

func containsToken(toks []tokens.FilenameToken, t tokens.FilenameToken) bool {
	for _, x := range toks {
		if x.Same(t) {
			return true
		}
	}
	return false
}
