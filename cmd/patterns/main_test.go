package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
)

// setupWorkspace создаёт выборку и config.yaml с путями во временной директории.
func setupWorkspace(t *testing.T) (cfgPath, samples string) {
	t.Helper()
	root := t.TempDir()
	samples = filepath.Join(root, "samples")
	require.NoError(t, os.MkdirAll(samples, 0o755))
	for _, name := range []string{
		"vehicle_001_front.jpg",
		"vehicle_001_rear.jpg",
		"vehicle_002_front.jpg",
		"vehicle_002_rear.jpg",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(samples, name), nil, 0o644))
	}

	cfgPath = filepath.Join(root, "config.yaml")
	yaml := "app:\n" +
		"  presets_dir: " + filepath.Join(root, "presets") + "\n" +
		"  custom_tokens_path: " + filepath.Join(root, "custom_tokens.txt") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))
	return cfgPath, samples
}

// resetFlags возвращает флаги к значениям по умолчанию: rootCmd общий
// для всех тестов.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { appCfg = nil })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGenerateValidateGroup(t *testing.T) {
	cfgPath, samples := setupWorkspace(t)
	outFile := filepath.Join(t.TempDir(), "config.json")

	_, err := execute(t, "generate", "--config", cfgPath, "--dir", samples,
		"--rule", "FRONT:CONTAINS:front", "--rule", "REAR:CONTAINS:rear",
		"-o", outFile, "--preset-save", "daily")
	require.NoError(t, err)

	c, err := readConfiguration(outFile)
	require.NoError(t, err)
	assert.True(t, pattern.ValidatePatterns(c).IsValid())
	assert.Len(t, c.RoleRules, 2)

	out, err := execute(t, "validate", "--config", cfgPath, "--file", outFile, "--dir", samples)
	require.NoError(t, err)
	assert.Contains(t, out, "2 groups, 4/4 files matched")
	assert.Contains(t, out, "Configuration is valid")

	out, err = execute(t, "preset", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "daily")

	out, err = execute(t, "group", "--config", cfgPath, "--dir", samples, "--preset", "daily", "--json")
	require.NoError(t, err)
	var res groupOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 4, res.Matched)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, rules.RoleRear, res.Groups[0].Files["vehicle_001_rear.jpg"])
	assert.True(t, res.Groups[0].Complete)
}

func TestValidateRejectsBrokenConfiguration(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)
	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"group_pattern":"^vehicle_\\d+_","front_pattern":"front"}`), 0o644))

	_, err := execute(t, "validate", "--config", cfgPath, "--file", broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestTokensAddListRemove(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)

	_, err := execute(t, "tokens", "add", "lane", "--config", cfgPath, "--type", "suffix", "--example", "lanea,laneb")
	require.NoError(t, err)

	out, err := execute(t, "tokens", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "lane")
	assert.Contains(t, out, "SUFFIX")
	assert.Contains(t, out, "lanea,laneb")

	_, err = execute(t, "tokens", "remove", "LANE", "--config", cfgPath)
	require.NoError(t, err)
	out, err = execute(t, "tokens", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "No custom tokens"))
}

func TestParseRules(t *testing.T) {
	appCfg = nil
	got, err := parseRules([]string{"front:contains:F", "REAR:ENDS_WITH!:_r.jpg"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rules.RoleFront, got[0].TargetRole)
	assert.True(t, got[1].CaseSensitive)
	assert.Equal(t, 1, got[1].Priority)

	_, err = parseRules([]string{"SIDE:CONTAINS:x"})
	assert.Error(t, err)

	def, err := parseRules(nil)
	require.NoError(t, err)
	assert.Empty(t, def)
}
