package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-patterns/pkg/presets"
)

var presetOut string

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetListCmd, presetShowCmd, presetExportCmd, presetImportCmd, presetDeleteCmd)
	presetExportCmd.Flags().StringVarP(&presetOut, "out", "o", "", "output file (defaults to stdout)")
}

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage saved configurations",
	Long: `Manage presets: named pattern configurations stored as JSON files in
app.presets_dir (defaults to the user config directory).

Examples:
  patterns preset list
  patterns preset export daily -o daily.json
  patterns preset import daily.json`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets, most recently used first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPresets()
		if err != nil {
			return err
		}
		list, err := store.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			printf(cmd, "No presets in %s\n", store.Dir())
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tLAST USED\tGROUP PATTERN")
		for _, p := range list {
			used := "never"
			if !p.LastUsedAt.IsZero() {
				used = p.LastUsedAt.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, used, p.Configuration.GroupPattern)
		}
		return w.Flush()
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Print a preset as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := findPreset(args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd, "", p)
	},
}

var presetExportCmd = &cobra.Command{
	Use:   "export <id|name>",
	Short: "Export a preset in the portable format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := findPreset(args[0])
		if err != nil {
			return err
		}
		if presetOut == "" {
			return presets.Export(cmd.OutOrStdout(), p)
		}
		f, err := os.Create(presetOut)
		if err != nil {
			return err
		}
		if err := presets.Export(f, p); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

var presetImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import a preset exported by preset export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		p, err := presets.Import(r)
		if err != nil {
			return err
		}
		store, err := openPresets()
		if err != nil {
			return err
		}
		if err := store.Save(p); err != nil {
			return err
		}
		printf(cmd, "Imported preset %q (%s)\n", p.Name, p.ID)
		return nil
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPresets()
		if err != nil {
			return err
		}
		p, err := store.Find(args[0])
		if err != nil {
			return err
		}
		if err := store.Delete(p.ID); err != nil {
			return err
		}
		printf(cmd, "Deleted preset %q\n", p.Name)
		return nil
	},
}

func findPreset(ref string) (*presets.Preset, error) {
	store, err := openPresets()
	if err != nil {
		return nil, err
	}
	return store.Find(ref)
}
