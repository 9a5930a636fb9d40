// Package source перечисляет файлы выборки: локальная директория или
// префикс S3 бакета. Наружу отдаются имена файлов (без директорий) и
// ключи, по которым файл можно прочитать.
package source

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ilkoid/poncho-patterns/pkg/tokens"
)

// Entry — файл источника.
type Entry struct {
	Name string // Имя файла без директорий, вход токенизатора
	Key  string // Путь относительно корня источника или ключ S3
}

// Source — источник выборки.
type Source interface {
	// Describe возвращает человекочитаемое описание источника для логов.
	Describe() string
	// List возвращает изображения источника, отсортированные по Key.
	List(ctx context.Context) ([]Entry, error)
	// Fetch читает содержимое файла по Key.
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Filter — include/exclude глобы doublestar. Пустой Include — любые файлы.
type Filter struct {
	Include []string
	Exclude []string
}

// NewFilter проверяет синтаксис глобов.
func NewFilter(include, exclude []string) (Filter, error) {
	for _, p := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return Filter{}, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return Filter{
		Include: append([]string(nil), include...),
		Exclude: append([]string(nil), exclude...),
	}, nil
}

// Match проверяет относительный путь (через "/").
// Файлы без распознанного расширения изображения отбрасываются всегда.
func (f Filter) Match(rel string) bool {
	if !tokens.IsImageExtension(path.Ext(rel)) {
		return false
	}
	for _, p := range f.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, p := range f.Include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Names возвращает имена файлов без повторов, в порядке entries.
func Names(entries []Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e.Name)
	}
	return out
}

// KeysByName — первый Key для каждого имени.
func KeysByName(entries []Entry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if _, ok := out[e.Name]; !ok {
			out[e.Name] = e.Key
		}
	}
	return out
}

// Sample обрезает выборку до limit первых имён. limit <= 0 — без ограничения.
func Sample(names []string, limit int) []string {
	if limit <= 0 || len(names) <= limit {
		return append([]string(nil), names...)
	}
	return append([]string(nil), names[:limit]...)
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
}
