package customtokens

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ilkoid/poncho-patterns/pkg/tokens"
	"github.com/ilkoid/poncho-patterns/pkg/utils"
)

// ErrWatcherFailed — не удалось создать наблюдатель файловой системы.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// ReloadFunc получает новый набор после каждого изменения файла.
type ReloadFunc func(toks []tokens.CustomToken, invalid []*LineError)

// Watch следит за файлом менеджера и перечитывает его при изменении.
//
// Наблюдается директория, а не сам файл: Save заменяет файл через
// rename, и наблюдение за старым inode было бы потеряно.
// Блокируется до отмены ctx.
//
// Rule 11: уважает context.Context.
func (m *Manager) Watch(ctx context.Context, fn ReloadFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	defer watcher.Close()

	dir := filepath.Dir(m.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	target := filepath.Clean(m.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			invalid, err := m.Load()
			if err != nil {
				utils.Error("Custom tokens reload failed", "path", m.path, "error", err)
				continue
			}
			if fn != nil {
				fn(m.Tokens(), invalid)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			utils.Warn("Custom tokens watcher error", "path", m.path, "error", err)
		}
	}
}
