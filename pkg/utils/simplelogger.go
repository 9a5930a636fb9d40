// Package utils предоставляет простой файловый логгер для CLI и TUI.
//
// Логгер пишет в .log файл с timestamp в имени. Движки (tokens, rules,
// pattern, grouping) не логируют; логирует слой сессии, источники,
// пресеты и CLI.
// Thread-safe через sync.Mutex.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogPrefix — префикс имени лог-файла.
const LogPrefix = "patterns"

var (
	logFile     *os.File
	logPath     string
	logMutex    sync.Mutex
	initialized bool
)

// InitLogger создает/открывает .log файл в текущей директории.
//
// Имя файла: patterns-YYYY-MM-DD-HH-MM.log (например, patterns-2025-12-27-15-30.log).
func InitLogger() error {
	_, err := InitLoggerIn("")
	return err
}

// InitLoggerIn создаёт лог-файл в dir (пустая строка — текущая директория)
// и возвращает путь к нему. Повторный вызов возвращает уже открытый файл.
func InitLoggerIn(dir string) (string, error) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if initialized {
		return logPath, nil
	}

	timestamp := time.Now().Format("2006-01-02-15-04")
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.log", LogPrefix, timestamp))

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f
	logPath = filename
	initialized = true

	// Мьютекс уже захвачен, пишем напрямую
	write(formatLine("INFO", "Logger initialized", "file", filename))
	return filename, nil
}

// LogPath возвращает путь к открытому лог-файлу или "".
func LogPath() string {
	logMutex.Lock()
	defer logMutex.Unlock()
	return logPath
}

// Info - информационное сообщение.
func Info(msg string, keyvals ...any) {
	log("INFO", msg, keyvals...)
}

// Error - сообщение об ошибке.
func Error(msg string, keyvals ...any) {
	log("ERROR", msg, keyvals...)
}

// Debug - отладочное сообщение.
func Debug(msg string, keyvals ...any) {
	log("DEBUG", msg, keyvals...)
}

// Warn - предупреждение.
func Warn(msg string, keyvals ...any) {
	log("WARN", msg, keyvals...)
}

// formatLine собирает строку вида
// [YYYY-MM-DD HH:MM:SS] LEVEL: message key1=value1 key2=value2
//
// Непарный последний ключ пишется как key=(MISSING).
func formatLine(level, msg string, keyvals ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", time.Now().Format("2006-01-02 15:04:05"), level, msg)
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 < len(keyvals) {
			fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
		} else {
			fmt.Fprintf(&b, " %v=(MISSING)", keyvals[i])
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// log - внутренняя функция записи в лог. Без InitLogger ничего не пишет.
func log(level, msg string, keyvals ...any) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile == nil {
		return
	}
	write(formatLine(level, msg, keyvals...))
}

// write вызывается под logMutex. При ошибке записи — fallback на stderr.
func write(line string) {
	if _, err := logFile.WriteString(line); err != nil {
		fmt.Fprintf(os.Stderr, "%s", line)
		fmt.Fprintf(os.Stderr, "[LOGGER ERROR: WriteString failed: %v]\n", err)
		return
	}
	if err := logFile.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Sync failed: %v]\n", err)
	}
}

// Close закрывает лог-файл. После Close логгер можно инициализировать заново.
//
// Вызывается через defer в main().
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile != nil {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Close failed: %v]\n", err)
		}
		logFile = nil
	}
	logPath = ""
	initialized = false
}
