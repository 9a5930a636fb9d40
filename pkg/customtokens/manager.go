package customtokens

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ilkoid/poncho-patterns/pkg/tokens"
	"github.com/ilkoid/poncho-patterns/pkg/utils"
)

// DefaultFilename — имя файла в каталоге конфигурации пользователя.
const DefaultFilename = "custom_tokens.txt"

// ErrNotFound — токен с таким именем отсутствует.
var ErrNotFound = errors.New("custom token not found")

// DefaultPath возвращает <UserConfigDir>/poncho-patterns/custom_tokens.txt.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "poncho-patterns", DefaultFilename), nil
}

// Manager — набор пользовательских токенов, привязанный к файлу.
//
// Thread-safe.
type Manager struct {
	path string

	mu     sync.RWMutex
	tokens []tokens.CustomToken
}

// NewManager создаёт менеджер для path. Файл не читается до Load.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Path возвращает путь к файлу.
func (m *Manager) Path() string {
	return m.path
}

// Tokens возвращает копию текущего набора.
func (m *Manager) Tokens() []tokens.CustomToken {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyTokens(m.tokens)
}

// Load перечитывает файл. Отсутствующий файл — пустой набор.
// Некорректные строки пропускаются и возвращаются для показа пользователю.
func (m *Manager) Load() ([]*LineError, error) {
	f, err := os.Open(m.path)
	if errors.Is(err, os.ErrNotExist) {
		m.mu.Lock()
		m.tokens = nil
		m.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open custom tokens: %w", err)
	}
	defer f.Close()

	toks, invalid, err := Parse(f)
	if err != nil {
		return nil, err
	}
	for _, le := range invalid {
		utils.Warn("Custom token line skipped", "path", m.path, "line", le.Line, "error", le.Err)
	}

	m.mu.Lock()
	m.tokens = toks
	m.mu.Unlock()
	utils.Info("Custom tokens loaded", "path", m.path, "count", len(toks))
	return invalid, nil
}

// Save атомарно записывает набор: временный файл в той же директории
// и rename поверх исходного.
func (m *Manager) Save() error {
	toks := m.Tokens()

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create custom tokens dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(m.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Format(tmp, toks); err != nil {
		tmp.Close()
		return fmt.Errorf("write custom tokens: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("replace custom tokens: %w", err)
	}
	utils.Info("Custom tokens saved", "path", m.path, "count", len(toks))
	return nil
}

// Add добавляет токен или заменяет токен с тем же именем (без учёта регистра).
func (m *Manager) Add(t tokens.CustomToken) error {
	if _, err := ParseLine(FormatLine(t)); err != nil {
		return fmt.Errorf("invalid custom token %q: %w", t.Name, err)
	}
	t.Examples = append([]string(nil), t.Examples...)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tokens {
		if strings.EqualFold(m.tokens[i].Name, t.Name) {
			m.tokens[i] = t
			return nil
		}
	}
	m.tokens = append(m.tokens, t)
	return nil
}

// Remove удаляет токен по имени.
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tokens {
		if strings.EqualFold(m.tokens[i].Name, name) {
			m.tokens = append(m.tokens[:i], m.tokens[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

func copyTokens(in []tokens.CustomToken) []tokens.CustomToken {
	out := make([]tokens.CustomToken, len(in))
	for i, t := range in {
		t.Examples = append([]string(nil), t.Examples...)
		out[i] = t
	}
	return out
}
