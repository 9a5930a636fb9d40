// Package config загружает YAML-конфигурацию poncho-patterns.
//
// Значения вида ${VAR} подставляются из окружения до разбора YAML.
// Незаполненные поля секций заменяются дефолтами через GetDefaults().
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ilkoid/poncho-patterns/pkg/rules"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Wizard    WizardConfig     `yaml:"wizard"`
	Source    SourceConfig     `yaml:"source"`
	S3        S3Config         `yaml:"s3"`
	Gallery   GalleryConfig    `yaml:"gallery"`
	App       AppSpecific      `yaml:"app"`
	RoleRules []rules.RoleRule `yaml:"role_rules"` // Начальные правила ролей
}

// WizardConfig — настройки валидации и анализа выборки.
type WizardConfig struct {
	Debounce     time.Duration `yaml:"debounce"`       // Пауза перед пересчётом валидации, "300ms"
	LowMatchRate float64       `yaml:"low_match_rate"` // Порог LOW_MATCH_RATE (0..1)
	SampleLimit  int           `yaml:"sample_limit"`   // Максимум файлов в анализе
	Mode         string        `yaml:"mode"`           // "simple" или "advanced"
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *WizardConfig) GetDefaults() WizardConfig {
	result := *c

	if result.Debounce <= 0 {
		result.Debounce = 300 * time.Millisecond
	}
	if result.LowMatchRate <= 0 {
		result.LowMatchRate = 0.8
	}
	if result.SampleLimit <= 0 {
		result.SampleLimit = 500
	}
	if result.Mode == "" {
		result.Mode = "simple"
	}
	return result
}

// SourceConfig — откуда берутся имена файлов выборки.
type SourceConfig struct {
	Dir     string   `yaml:"dir"`     // Локальная директория
	Include []string `yaml:"include"` // doublestar-глобы, например "**/*.jpg"
	Exclude []string `yaml:"exclude"`
	Prefix  string   `yaml:"prefix"` // Префикс в S3 бакете
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *SourceConfig) GetDefaults() SourceConfig {
	result := *c
	if len(result.Include) == 0 {
		result.Include = []string{"*"}
	}
	return result
}

// S3Config — настройки объектного хранилища.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled сообщает, настроено ли хранилище.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// GalleryConfig — настройки галереи миниатюр по группам.
type GalleryConfig struct {
	OutDir    string `yaml:"out_dir"`
	ThumbSize int    `yaml:"thumb_size"` // Сторона квадрата миниатюры в пикселях
	Quality   int    `yaml:"quality"`    // Качество JPEG (1-100)
	RateLimit int    `yaml:"rate_limit"` // Скачиваний в секунду
	Burst     int    `yaml:"burst"`
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *GalleryConfig) GetDefaults() GalleryConfig {
	result := *c

	if result.OutDir == "" {
		result.OutDir = "gallery"
	}
	if result.ThumbSize == 0 {
		result.ThumbSize = 320
	}
	if result.Quality == 0 {
		result.Quality = 85
	}
	if result.RateLimit == 0 {
		result.RateLimit = 10
	}
	if result.Burst == 0 {
		result.Burst = 5
	}
	return result
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug            bool   `yaml:"debug"`
	LogDir           string `yaml:"log_dir"`
	PresetsDir       string `yaml:"presets_dir"`
	CustomTokensPath string `yaml:"custom_tokens_path"`
}

// Default возвращает конфигурацию без файла: все секции с дефолтами.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(rawBytes)
}

// Parse разбирает YAML из памяти, подставляя ${VAR}.
func Parse(raw []byte) (*AppConfig, error) {
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(raw))

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault: пустой path — Default(), иначе Load(path).
func LoadOrDefault(path string) (*AppConfig, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *AppConfig) applyDefaults() {
	c.Wizard = c.Wizard.GetDefaults()
	c.Source = c.Source.GetDefaults()
	c.Gallery = c.Gallery.GetDefaults()
	if c.RoleRules == nil {
		c.RoleRules = []rules.RoleRule{}
	}
}

// validate проверяет поля, которые нельзя исправить дефолтами.
// Роли и типы правил нормализуются к каноническому виду.
func (c *AppConfig) validate() error {
	if c.S3.Enabled() && c.S3.Endpoint == "" {
		return fmt.Errorf("s3.endpoint is required when s3.bucket is set")
	}
	if c.Wizard.LowMatchRate < 0 || c.Wizard.LowMatchRate > 1 {
		return fmt.Errorf("wizard.low_match_rate must be in [0, 1], got %v", c.Wizard.LowMatchRate)
	}
	switch c.Wizard.Mode {
	case "", "simple", "advanced":
	default:
		return fmt.Errorf("wizard.mode must be simple or advanced, got %q", c.Wizard.Mode)
	}
	for i, r := range c.RoleRules {
		role, err := rules.ParseRole(string(r.TargetRole))
		if err != nil {
			return fmt.Errorf("role_rules[%d]: %w", i, err)
		}
		typ, err := rules.ParseRuleType(string(r.RuleType))
		if err != nil {
			return fmt.Errorf("role_rules[%d]: %w", i, err)
		}
		c.RoleRules[i].TargetRole = role
		c.RoleRules[i].RuleType = typ
	}
	return nil
}
