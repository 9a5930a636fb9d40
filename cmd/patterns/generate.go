package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-patterns/pkg/pattern"
	"github.com/ilkoid/poncho-patterns/pkg/presets"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/session"
	"github.com/ilkoid/poncho-patterns/pkg/tokens"
	"github.com/ilkoid/poncho-patterns/pkg/validation"
)

var (
	genFlags       sourceFlags
	genSample      string
	genGroupID     int
	genRules       []string
	genOut         string
	genPresetSave  string
	genDescription string
)

func init() {
	rootCmd.AddCommand(generateCmd)
	genFlags.register(generateCmd)
	generateCmd.Flags().StringVar(&genSample, "sample", "", "filename used as the token template (defaults to the first sample)")
	generateCmd.Flags().IntVar(&genGroupID, "group-id", -1, "token position of the group id (-1 uses the detected one)")
	generateCmd.Flags().StringArrayVar(&genRules, "rule", nil, "role rule ROLE:TYPE[!]:VALUE, repeatable (defaults to role_rules in config)")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "write the configuration JSON to a file instead of stdout")
	generateCmd.Flags().StringVar(&genPresetSave, "preset-save", "", "save the configuration as a preset with this name")
	generateCmd.Flags().StringVar(&genDescription, "description", "", "preset description")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a pattern configuration from sample filenames",
	Long: `Generate the group and role patterns from the sample filenames.

The token of the template filename at --group-id becomes the capturing group
of the group pattern; role patterns are built from the role rules.
Generation fails while validation reports errors.

Examples:
  patterns generate --dir ./photos --rule FRONT:CONTAINS:front --rule REAR:CONTAINS:rear
  patterns generate --dir ./photos --group-id 2 -o config.json --preset-save daily`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, names, _, err := genFlags.load(ctx)
	if err != nil {
		return err
	}
	roleRules, err := parseRules(genRules)
	if err != nil {
		return err
	}
	_, custom, err := loadCustomTokens(cmd)
	if err != nil {
		return err
	}

	sess, err := analyzedSession(ctx, names, roleRules, custom, genFlags.sampleLimit())
	if err != nil {
		return err
	}
	defer sess.Close()

	store := sess.Store()
	if genSample != "" {
		if err := store.SelectSample(genSample); err != nil {
			return err
		}
	}
	if genGroupID >= 0 {
		if err := store.SelectGroupIDAt(genGroupID); err != nil {
			return err
		}
	}

	res := sess.Validator().ValidateNow()
	printMessages(cmd, res)
	c, err := sess.GenerateConfiguration()
	if errors.Is(err, session.ErrBlocked) {
		return fmt.Errorf("configuration has %d validation error(s)", len(res.Errors))
	}
	if err != nil {
		return err
	}

	if genPresetSave != "" {
		if err := savePreset(cmd, genPresetSave, genDescription, c); err != nil {
			return err
		}
	}
	return writeJSON(cmd, genOut, c)
}

// analyzedSession создаёт сессию и дожидается анализа выборки.
func analyzedSession(ctx context.Context, names []string, roleRules []rules.RoleRule, custom []tokens.CustomToken, limit int) (*session.Session, error) {
	w := cfg().Wizard
	sess := session.New(session.Options{
		Debounce:     w.Debounce,
		LowMatchRate: w.LowMatchRate,
		SampleLimit:  limit,
		Rules:        roleRules,
		CustomTokens: custom,
	})
	if _, err := sess.LoadSamples(ctx, names); err != nil {
		sess.Close()
		return nil, err
	}
	out, ok := sess.WaitAnalysis(ctx)
	switch {
	case !ok:
		sess.Close()
		return nil, ctx.Err()
	case out.Status != session.AnalysisCompleted:
		sess.Close()
		return nil, fmt.Errorf("analysis %s: %w", out.Status, out.Err)
	}
	return sess, nil
}

func savePreset(cmd *cobra.Command, name, description string, c *pattern.Configuration) error {
	store, err := openPresets()
	if err != nil {
		return err
	}
	p, err := presets.New(name, description, c)
	if err != nil {
		return err
	}
	if err := store.Save(p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved preset %q (%s)\n", p.Name, p.ID)
	return nil
}

// printMessages пишет ошибки и предупреждения валидации в stderr.
func printMessages(cmd *cobra.Command, res validation.Result) {
	w := cmd.ErrOrStderr()
	for _, e := range res.Errors {
		fmt.Fprintf(w, "error: %s: %s\n", e.Type, e.Message)
		if e.Details != "" {
			fmt.Fprintf(w, "  %s\n", e.Details)
		}
		if rec := e.Recommendation(); rec != "" {
			fmt.Fprintf(w, "  -> %s\n", rec)
		}
	}
	for _, wr := range res.Warnings {
		fmt.Fprintf(w, "warning: %s: %s\n", wr.Type, wr.Message)
		if wr.Details != "" {
			fmt.Fprintf(w, "  %s\n", wr.Details)
		}
	}
}
