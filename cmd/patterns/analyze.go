package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-patterns/pkg/tokens"
)

var (
	analyzeFlags  sourceFlags
	analyzeSample string
	analyzeJSON   bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeFlags.register(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeSample, "sample", "", "filename whose tokens are shown (defaults to the first sample)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output results as JSON")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Tokenize sample filenames and suggest token types",
	Long: `Tokenize the sample filenames and detect the role of every segment
(GROUP_ID, CAMERA_SIDE, DATE, INDEX, PREFIX, SUFFIX, EXTENSION).

Examples:
  patterns analyze --dir ./photos
  patterns analyze --s3 --prefix 2025/01/ --json`,
	RunE: runAnalyze,
}

type analyzeOutput struct {
	Files       int                      `json:"files"`
	Sample      string                   `json:"sample"`
	Tokens      []tokens.FilenameToken   `json:"tokens"`
	GroupID     *tokens.FilenameToken    `json:"group_id,omitempty"`
	Suggestions []tokens.TokenSuggestion `json:"suggestions"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, names, _, err := analyzeFlags.load(ctx)
	if err != nil {
		return err
	}
	_, custom, err := loadCustomTokens(cmd)
	if err != nil {
		return err
	}

	a, err := tokens.New(custom...).AnalyzeContext(ctx, names)
	if err != nil {
		return err
	}

	sample := analyzeSample
	if sample == "" {
		sample = names[0]
	}
	toks, ok := a.TokensFor(sample)
	if !ok {
		return fmt.Errorf("sample %q is not part of the analyzed files", sample)
	}

	out := analyzeOutput{
		Files:       len(names),
		Sample:      sample,
		Tokens:      toks,
		Suggestions: a.Suggestions(),
	}
	if gid, ok := tokens.GroupIDToken(toks); ok {
		out.GroupID = &gid
	}

	if analyzeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printf(cmd, "Analyzed %d files, sample %s\n\n", out.Files, out.Sample)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tVALUE\tTYPE\tCONFIDENCE")
	for _, t := range out.Tokens {
		marker := ""
		if out.GroupID != nil && t.Same(*out.GroupID) {
			marker = " <- group id"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f%s\n", t.Position, t.Value, t.SuggestedType, t.Confidence, marker)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(out.Suggestions) > 0 {
		printf(cmd, "\nSuggestions:\n")
		for _, s := range out.Suggestions {
			printf(cmd, "  %-12s %3.0f%%  %s (%s)\n", s.Type, s.Confidence*100, s.Description, strings.Join(s.Examples, ", "))
		}
	}
	return nil
}
