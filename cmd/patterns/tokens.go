package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-patterns/pkg/customtokens"
	"github.com/ilkoid/poncho-patterns/pkg/tokens"
)

var (
	tokenDescription string
	tokenType        string
	tokenExamples    []string
)

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.AddCommand(tokensListCmd, tokensAddCmd, tokensRemoveCmd, tokensWatchCmd)
	tokensAddCmd.Flags().StringVar(&tokenDescription, "description", "", "token description")
	tokensAddCmd.Flags().StringVar(&tokenType, "type", string(tokens.TypeSuffix), "token type the examples map to")
	tokensAddCmd.Flags().StringSliceVar(&tokenExamples, "example", nil, "example value, repeatable or comma separated (required)")
	_ = tokensAddCmd.MarkFlagRequired("example")
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Manage custom tokens",
	Long: `Manage custom tokens: named segment values mapped to a token type.
Segments the analysis leaves UNKNOWN get the mapped type when they match an
example (case-insensitive).

The file is plain text, one token per line: name|description|TYPE|ex1,ex2

Examples:
  patterns tokens add lane --type SUFFIX --example lanea,laneb
  patterns tokens list`,
}

var tokensListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, toks, err := loadCustomTokens(cmd)
		if err != nil {
			return err
		}
		if len(toks) == 0 {
			printf(cmd, "No custom tokens in %s\n", m.Path())
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tEXAMPLES\tDESCRIPTION")
		for _, t := range toks {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name, t.MappedType, strings.Join(t.Examples, ","), t.Description)
		}
		return w.Flush()
	},
}

var tokensAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or replace a custom token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := loadCustomTokens(cmd)
		if err != nil {
			return err
		}
		typ, err := tokens.ParseType(tokenType)
		if err != nil {
			return err
		}
		t := tokens.CustomToken{
			Name:        args[0],
			Description: tokenDescription,
			MappedType:  typ,
			Examples:    tokenExamples,
		}
		if err := m.Add(t); err != nil {
			return err
		}
		if err := m.Save(); err != nil {
			return err
		}
		printf(cmd, "Saved custom token %q to %s\n", t.Name, m.Path())
		return nil
	},
}

var tokensRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a custom token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := loadCustomTokens(cmd)
		if err != nil {
			return err
		}
		if err := m.Remove(args[0]); err != nil {
			return err
		}
		return m.Save()
	},
}

var tokensWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the custom tokens every time the file changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := customTokensPath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		m := customtokens.NewManager(path)
		printf(cmd, "Watching %s (Ctrl+C to stop)\n", path)
		err = m.Watch(cmd.Context(), func(toks []tokens.CustomToken, invalid []*customtokens.LineError) {
			printf(cmd, "%d custom tokens loaded, %d invalid lines\n", len(toks), len(invalid))
			for _, e := range invalid {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", e)
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}
