// Package gallery собирает контрольную галерею по результату группировки:
// для каждой группы по одной миниатюре на роль и manifest.json.
//
// Галерея нужна, чтобы глазами проверить, что паттерны разложили
// снимки по группам и ролям так, как ожидалось.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ilkoid/poncho-patterns/pkg/config"
	"github.com/ilkoid/poncho-patterns/pkg/grouping"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/utils"
)

// ManifestFile — имя файла манифеста в корне галереи.
const ManifestFile = "manifest.json"

// Fetcher читает исходное изображение по ключу. source.Source подходит.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Options — параметры сборки.
type Options struct {
	OutDir    string
	ThumbSize int
	Quality   int
	Limiter   *rate.Limiter // nil — без ограничения
}

// OptionsFromConfig переводит секцию gallery конфига в Options.
// RateLimit задаётся в скачиваниях в секунду.
func OptionsFromConfig(cfg config.GalleryConfig) Options {
	cfg = cfg.GetDefaults()
	return Options{
		OutDir:    cfg.OutDir,
		ThumbSize: cfg.ThumbSize,
		Quality:   cfg.Quality,
		Limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
	}
}

// Image — миниатюра одной роли.
type Image struct {
	Filename  string `json:"filename"`
	Key       string `json:"key"`
	Thumbnail string `json:"thumbnail,omitempty"` // Путь относительно OutDir
	Error     string `json:"error,omitempty"`
}

// Group — запись манифеста для группы.
type Group struct {
	Key      string                    `json:"key"`
	Dir      string                    `json:"dir"`
	Complete bool                      `json:"complete"`
	Missing  []rules.ImageRole         `json:"missing,omitempty"`
	Images   map[rules.ImageRole]Image `json:"images"`
	Files    int                       `json:"files"`
}

// Manifest — содержимое manifest.json.
type Manifest struct {
	GeneratedAt  time.Time            `json:"generated_at"`
	GroupPattern string               `json:"group_pattern"`
	Groups       []Group              `json:"groups"`
	Unmatched    []grouping.Unmatched `json:"unmatched,omitempty"`
	Failed       int                  `json:"failed"`
}

// Build скачивает первый файл каждой роли каждой группы, пишет миниатюру
// в <OutDir>/<group>/<role>.jpg и manifest.json.
//
// keys сопоставляет имя файла ключу Fetcher; имя без ключа читается по
// самому имени. Ошибка отдельного файла попадает в манифест и не
// прерывает сборку; отмена ctx прерывает.
//
// Rule 11: уважает context.Context.
func Build(ctx context.Context, res *grouping.Result, keys map[string]string, f Fetcher, opts Options) (*Manifest, error) {
	if res == nil {
		return nil, errors.New("grouping result is nil")
	}
	if f == nil {
		return nil, errors.New("fetcher is nil")
	}
	if opts.OutDir == "" {
		return nil, errors.New("gallery output dir is empty")
	}
	if opts.ThumbSize <= 0 {
		opts.ThumbSize = config.Default().Gallery.ThumbSize
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create gallery dir: %w", err)
	}

	m := &Manifest{
		GeneratedAt:  time.Now().UTC(),
		GroupPattern: res.Pattern(),
		Unmatched:    res.Unmatched(),
	}
	usedDirs := make(map[string]int)

	for _, key := range res.GroupKeys() {
		g := Group{
			Key:      key,
			Dir:      uniqueDir(usedDirs, DirName(key)),
			Complete: res.IsComplete(key),
			Missing:  res.MissingRoles(key),
			Images:   make(map[rules.ImageRole]Image),
			Files:    len(res.Files(key)),
		}

		for _, name := range res.Files(key) {
			role, ok := res.Role(name)
			if !ok {
				continue
			}
			if _, done := g.Images[role]; done {
				continue
			}
			img, err := buildImage(ctx, f, keyFor(keys, name), name, g.Dir, role, opts)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				utils.Warn("Gallery image failed", "group", key, "file", name, "error", err)
				img.Error = err.Error()
				m.Failed++
			}
			g.Images[role] = img
		}
		m.Groups = append(m.Groups, g)
	}

	if err := writeManifest(filepath.Join(opts.OutDir, ManifestFile), m); err != nil {
		return nil, err
	}
	utils.Info("Gallery built", "dir", opts.OutDir, "groups", len(m.Groups), "failed", m.Failed)
	return m, nil
}

func buildImage(ctx context.Context, f Fetcher, key, name, dir string, role rules.ImageRole, opts Options) (Image, error) {
	img := Image{Filename: name, Key: key}
	if opts.Limiter != nil {
		if err := opts.Limiter.Wait(ctx); err != nil {
			return img, err
		}
	}

	data, err := f.Fetch(ctx, key)
	if err != nil {
		return img, fmt.Errorf("fetch: %w", err)
	}
	thumb, err := utils.Thumbnail(data, opts.ThumbSize, opts.Quality)
	if err != nil {
		return img, err
	}

	rel := filepath.Join(dir, strings.ToLower(string(role))+".jpg")
	abs := filepath.Join(opts.OutDir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return img, fmt.Errorf("create group dir: %w", err)
	}
	if err := os.WriteFile(abs, thumb, 0o644); err != nil {
		return img, fmt.Errorf("write thumbnail: %w", err)
	}
	img.Thumbnail = filepath.ToSlash(rel)
	return img, nil
}

func keyFor(keys map[string]string, name string) string {
	if k, ok := keys[name]; ok {
		return k
	}
	return name
}

// DirName превращает ключ группы в безопасное имя директории.
func DirName(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// uniqueDir добавляет суффикс, если разные ключи дали одно имя.
func uniqueDir(used map[string]int, dir string) string {
	n := used[dir]
	used[dir] = n + 1
	if n == 0 {
		return dir
	}
	return fmt.Sprintf("%s~%d", dir, n+1)
}

func writeManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
