package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-patterns/internal/ui"
	"github.com/ilkoid/poncho-patterns/pkg/customtokens"
	"github.com/ilkoid/poncho-patterns/pkg/events"
	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/session"
	"github.com/ilkoid/poncho-patterns/pkg/tokens"
	"github.com/ilkoid/poncho-patterns/pkg/utils"
)

var (
	tuiSrc        sourceFlags
	tuiPreset     string
	tuiRules      []string
	tuiOut        string
	tuiPresetSave string
)

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiSrc.register(tuiCmd)
	tuiCmd.Flags().StringVar(&tuiPreset, "preset", "", "start from a saved preset (advanced mode)")
	tuiCmd.Flags().StringArrayVar(&tuiRules, "rule", nil, "initial role rule ROLE:TYPE[!]:VALUE, repeatable")
	tuiCmd.Flags().StringVarP(&tuiOut, "out", "o", "", "write the generated configuration to a file instead of stdout")
	tuiCmd.Flags().StringVar(&tuiPresetSave, "preset-save", "", "save the generated configuration as a preset")
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the interactive pattern wizard",
	Long: `Run the step-by-step wizard: samples, tokens (pick the group id), role
rules and review. Validation runs in the background while you edit; press g
on the review step to generate the configuration.

The custom tokens file is watched and reloaded while the wizard runs.
Logs go to --log-dir (or app.log_dir), defaulting to the current directory.`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Rule 11: родительский контекст команды отменяется по сигналу.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if utils.LogPath() == "" {
		if err := utils.InitLogger(); err != nil {
			return err
		}
	}

	_, names, _, err := tuiSrc.load(ctx)
	if err != nil {
		return err
	}
	roleRules, err := parseRules(tuiRules)
	if err != nil {
		return err
	}
	tokenMgr, custom, err := loadCustomTokens(cmd)
	if err != nil {
		return err
	}

	emitter := events.NewLossyChanEmitter(256)
	defer emitter.Close()

	w := cfg().Wizard
	sess := session.New(session.Options{
		Debounce:     w.Debounce,
		LowMatchRate: w.LowMatchRate,
		SampleLimit:  tuiSrc.sampleLimit(),
		Rules:        roleRules,
		CustomTokens: custom,
		Emitter:      emitter,
	})
	defer sess.Close()

	if err := applyStartState(sess); err != nil {
		return err
	}
	if _, err := sess.LoadSamples(ctx, names); err != nil {
		return err
	}

	go func() {
		err := tokenMgr.Watch(ctx, func(toks []tokens.CustomToken, invalid []*customtokens.LineError) {
			if len(invalid) > 0 {
				utils.Warn("Custom tokens file has invalid lines", "count", len(invalid))
			}
			sess.SetCustomTokens(ctx, toks, tokenMgr.Path())
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			utils.Warn("Custom tokens watch stopped", "error", err)
		}
	}()

	model, err := ui.Run(ctx, sess, emitter.Subscribe(), ui.Options{
		CustomTokensPath: tokenMgr.Path(),
		OnGenerate: func(c *pattern.Configuration) error {
			if tuiPresetSave == "" {
				return nil
			}
			return savePreset(cmd, tuiPresetSave, "", c)
		},
	})
	if err != nil {
		return fmt.Errorf("wizard: %w", err)
	}

	result := model.Result()
	if result == nil {
		utils.Info("Wizard closed without generating")
		return nil
	}
	utils.Info("Configuration generated", "group_pattern", result.GroupPattern)
	return writeJSON(cmd, tuiOut, result)
}

// applyStartState задаёт режим из конфига и, если указан, пресет.
func applyStartState(sess *session.Session) error {
	mode, err := session.ParseMode(cfg().Wizard.Mode)
	if err != nil {
		return err
	}
	sess.Store().SetMode(mode)

	if tuiPreset == "" {
		return nil
	}
	store, err := openPresets()
	if err != nil {
		return err
	}
	p, err := store.Find(tuiPreset)
	if err != nil {
		return err
	}
	if _, err := store.Touch(p.ID, nowFunc()); err != nil {
		return err
	}
	sess.Store().Apply(p.Configuration)
	return nil
}
