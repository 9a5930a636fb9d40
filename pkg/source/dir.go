package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ilkoid/poncho-patterns/pkg/utils"
)

// DirSource — файлы локальной директории.
//
// Include вида "**/*.jpg" обходит поддиректории, "*" — только корень.
type DirSource struct {
	root   string
	fsys   fs.FS
	filter Filter
}

var _ Source = (*DirSource)(nil)

// NewDirSource создаёт источник. Пустой include означает "*".
func NewDirSource(dir string, include, exclude []string) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open source dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", dir)
	}
	if len(include) == 0 {
		include = []string{"*"}
	}
	f, err := NewFilter(include, exclude)
	if err != nil {
		return nil, err
	}
	return &DirSource{root: dir, fsys: os.DirFS(dir), filter: f}, nil
}

// Describe возвращает путь директории.
func (s *DirSource) Describe() string {
	return "dir:" + s.root
}

// List обходит директорию и возвращает изображения, прошедшие фильтр.
//
// Rule 11: уважает context.Context.
func (s *DirSource) List(ctx context.Context) ([]Entry, error) {
	seen := make(map[string]struct{})
	var entries []Entry

	for _, pattern := range s.filter.Include {
		err := doublestar.GlobWalk(s.fsys, pattern, func(rel string, d fs.DirEntry) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || !s.filter.Match(rel) {
				return nil
			}
			if _, dup := seen[rel]; dup {
				return nil
			}
			seen[rel] = struct{}{}
			entries = append(entries, Entry{Name: path.Base(rel), Key: rel})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s with %q: %w", s.root, pattern, err)
		}
	}

	sortEntries(entries)
	utils.Debug("Directory listed", "dir", s.root, "files", len(entries))
	return entries, nil
}

// Fetch читает файл по относительному пути.
func (s *DirSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(key) {
		return nil, fmt.Errorf("invalid source key %q", key)
	}
	data, err := fs.ReadFile(s.fsys, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Join(s.root, filepath.FromSlash(key)), err)
	}
	return data, nil
}
