// Package presets сохраняет конфигурации паттернов под именем и
// переносит их между машинами в виде JSON.
package presets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/validation"
)

// FormatVersion — версия формата экспорта.
const FormatVersion = 1

var (
	// ErrInvalidConfiguration — конфигурация пресета не проходит валидацию.
	ErrInvalidConfiguration = errors.New("invalid preset configuration")
	// ErrUnsupportedVersion — файл экспорта более новой версии.
	ErrUnsupportedVersion = errors.New("unsupported preset format version")
	// ErrEmptyName — у пресета нет имени.
	ErrEmptyName = errors.New("preset name is empty")
)

// Preset — именованная конфигурация паттернов.
type Preset struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description,omitempty"`
	Configuration *pattern.Configuration `json:"configuration"`
	CreatedAt     time.Time              `json:"created_at"`
	LastUsedAt    time.Time              `json:"last_used_at"`
}

// New создаёт пресет с новым UUID. cfg копируется.
func New(name, description string, cfg *pattern.Configuration) (*Preset, error) {
	p := &Preset{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(name),
		Description:   description,
		Configuration: cfg.Clone(),
		CreatedAt:     time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// InvalidError описывает, почему конфигурация пресета отклонена.
type InvalidError struct {
	Result validation.Result
}

func (e *InvalidError) Error() string {
	msgs := make([]string, 0, len(e.Result.Errors))
	for _, m := range e.Result.Errors {
		msgs = append(msgs, m.Message)
	}
	return fmt.Sprintf("%v: %s", ErrInvalidConfiguration, strings.Join(msgs, "; "))
}

// Is позволяет проверять errors.Is(err, ErrInvalidConfiguration).
func (e *InvalidError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// Validate проверяет имя, идентификатор и конфигурацию.
func (p *Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		return fmt.Errorf("preset id %q: %w", p.ID, err)
	}
	if res := pattern.ValidatePatterns(p.Configuration); !res.IsValid() {
		return &InvalidError{Result: res}
	}
	return nil
}

// Clone возвращает глубокую копию.
func (p *Preset) Clone() *Preset {
	out := *p
	out.Configuration = p.Configuration.Clone()
	return &out
}

type envelope struct {
	Version int     `json:"version"`
	Preset  *Preset `json:"preset"`
}

// Export пишет пресет в w.
func Export(w io.Writer, p *Preset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(envelope{Version: FormatVersion, Preset: p}); err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	return nil
}

// Import читает пресет из r.
//
// Пресет без ID получает новый UUID. Конфигурация проверяется
// pattern.ValidatePatterns; при ошибках возвращается *InvalidError.
func Import(r io.Reader) (*Preset, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	if env.Version > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	if env.Preset == nil {
		return nil, fmt.Errorf("decode preset: missing preset object")
	}

	p := env.Preset
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
