package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/presets"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
)

// parseRules разбирает --rule ROLE:TYPE[!]:VALUE; без флагов берутся
// role_rules из конфига.
func parseRules(specs []string) ([]rules.RoleRule, error) {
	if len(specs) == 0 {
		return append([]rules.RoleRule{}, cfg().RoleRules...), nil
	}
	out := make([]rules.RoleRule, 0, len(specs))
	for i, spec := range specs {
		r, err := rules.ParseSpec(spec, i)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func openPresets() (*presets.Store, error) {
	dir := cfg().App.PresetsDir
	if dir == "" {
		var err error
		if dir, err = presets.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return presets.NewStore(dir)
}

// configFlags — источник готовой конфигурации: JSON файл или пресет.
type configFlags struct {
	file   string
	preset string
}

func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "configuration JSON file")
	cmd.Flags().StringVar(&f.preset, "preset", "", "preset id or name")
}

func (f *configFlags) set() bool {
	return f.file != "" || f.preset != ""
}

// load читает конфигурацию. Использование пресета обновляет его LastUsedAt.
func (f *configFlags) load() (*pattern.Configuration, error) {
	switch {
	case f.file != "" && f.preset != "":
		return nil, fmt.Errorf("--file and --preset are mutually exclusive")
	case f.file != "":
		return readConfiguration(f.file)
	case f.preset != "":
		store, err := openPresets()
		if err != nil {
			return nil, err
		}
		p, err := store.Find(f.preset)
		if err != nil {
			return nil, err
		}
		if _, err := store.Touch(p.ID, nowFunc()); err != nil {
			return nil, err
		}
		return p.Configuration.Clone(), nil
	}
	return nil, fmt.Errorf("pass --file or --preset")
}

func readConfiguration(path string) (*pattern.Configuration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	var c pattern.Configuration
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse configuration %s: %w", path, err)
	}
	return &c, nil
}

// writeJSON пишет v в path или, если path пуст, в stdout команды.
func writeJSON(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
