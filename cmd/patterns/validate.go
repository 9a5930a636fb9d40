package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-patterns/pkg/session"
)

var (
	validateSrc  sourceFlags
	validateCfg  configFlags
	validateJSON bool
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateSrc.register(validateCmd)
	validateCfg.register(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output the validation result as JSON")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a pattern configuration",
	Long: `Validate the patterns and role rules of a configuration. With a sample
source (--dir or --s3) the configuration is also applied to the samples and
grouping warnings are reported.

Exits with an error when validation reports errors.

Examples:
  patterns validate --file config.json
  patterns validate --preset daily --dir ./photos`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	c, err := validateCfg.load()
	if err != nil {
		return err
	}

	store := session.NewStore(nil)
	store.Apply(c)
	if validateSrc.dir != "" || validateSrc.s3 {
		_, names, _, err := validateSrc.load(cmd.Context())
		if err != nil {
			return err
		}
		store.SetSamples(names)
	}

	snap := session.Evaluate(store.Snapshot(), cfg().Wizard.LowMatchRate)
	if validateJSON {
		if err := writeJSON(cmd, "", snap.Result); err != nil {
			return err
		}
	} else {
		printMessages(cmd, snap.Result)
		if g := snap.Grouping; g != nil {
			printf(cmd, "%d groups, %d/%d files matched\n", g.GroupCount(), g.MatchedFiles(), g.TotalFiles())
		}
	}

	if !snap.Result.IsValid() {
		return fmt.Errorf("configuration has %d validation error(s)", len(snap.Result.Errors))
	}
	if !validateJSON {
		printf(cmd, "Configuration is valid\n")
	}
	return nil
}
