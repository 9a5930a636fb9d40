package presets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ilkoid/poncho-patterns/pkg/utils"
)

// ErrNotFound — пресета с таким ID нет.
var ErrNotFound = errors.New("preset not found")

// Store — каталог пресетов, по одному JSON-файлу <id>.json.
type Store struct {
	dir string
}

// NewStore создаёт каталог при необходимости.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create presets dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DefaultDir возвращает <UserConfigDir>/poncho-patterns/presets.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "poncho-patterns", "presets"), nil
}

// Dir возвращает каталог хранилища.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

// Save проверяет и атомарно записывает пресет.
func (s *Store) Save(p *Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	path, err := s.path(p.ID)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".preset-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Export(tmp, p); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	utils.Info("Preset saved", "id", p.ID, "name", p.Name)
	return nil
}

// Get читает пресет по ID.
func (s *Store) Get(id string) (*Preset, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("open preset: %w", err)
	}
	defer f.Close()
	return Import(f)
}

// Find ищет пресет по ID или по имени (без учёта регистра).
func (s *Store) Find(ref string) (*Preset, error) {
	if p, err := s.Get(ref); err == nil {
		return p, nil
	}
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// List возвращает пресеты: сначала недавно использованные, затем по имени.
// Нечитаемые файлы пропускаются с предупреждением в логе.
func (s *Store) List() ([]*Preset, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read presets dir: %w", err)
	}

	var out []*Preset
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		p, err := s.Get(strings.TrimSuffix(name, ".json"))
		if err != nil {
			utils.Warn("Preset skipped", "file", name, "error", err)
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LastUsedAt.Equal(out[j].LastUsedAt) {
			return out[i].LastUsedAt.After(out[j].LastUsedAt)
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Delete удаляет пресет.
func (s *Store) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("delete preset: %w", err)
	}
	utils.Info("Preset deleted", "id", id)
	return nil
}

// Touch отмечает использование пресета и возвращает обновлённую копию.
func (s *Store) Touch(id string, at time.Time) (*Preset, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	p.LastUsedAt = at.UTC()
	if err := s.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}
