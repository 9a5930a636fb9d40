package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-patterns/pkg/grouping"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
	"github.com/ilkoid/poncho-patterns/pkg/session"
)

var (
	groupSrc         sourceFlags
	groupCfg         configFlags
	groupPattern     string
	groupRules       []string
	groupUnknownRole string
	groupJSON        bool
)

func init() {
	rootCmd.AddCommand(groupCmd)
	groupSrc.register(groupCmd)
	groupCfg.register(groupCmd)
	groupCmd.Flags().StringVar(&groupPattern, "pattern", "", "group pattern with one capturing group")
	groupCmd.Flags().StringArrayVar(&groupRules, "rule", nil, "role rule ROLE:TYPE[!]:VALUE, repeatable")
	groupCmd.Flags().StringVar(&groupUnknownRole, "unknown-role", "", "role assigned to grouped files no rule matched")
	groupCmd.Flags().BoolVar(&groupJSON, "json", false, "output results as JSON")
}

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Group sample files and assign image roles",
	Long: `Split the sample files into groups by the capturing group of a group
pattern and assign every file a role.

With --file or --preset the role patterns of the configuration are used
as is; with --pattern the roles come from --rule (or role_rules in config).

Examples:
  patterns group --dir ./photos --preset daily
  patterns group --dir ./photos --pattern '^(\d+)_' --rule FRONT:ENDS_WITH:_f.jpg`,
	RunE: runGroup,
}

type groupOutput struct {
	Pattern   string                  `json:"pattern"`
	Total     int                     `json:"total"`
	Matched   int                     `json:"matched"`
	Groups    []groupEntry            `json:"groups"`
	Unmatched []grouping.Unmatched    `json:"unmatched"`
	Roles     map[rules.ImageRole]int `json:"roles"`
}

type groupEntry struct {
	Key      string                     `json:"key"`
	Files    map[string]rules.ImageRole `json:"files"`
	Missing  []rules.ImageRole          `json:"missing,omitempty"`
	Complete bool                       `json:"complete"`
}

func runGroup(cmd *cobra.Command, args []string) error {
	var (
		pat       string
		roleRules []rules.RoleRule
	)
	switch {
	case groupCfg.set():
		c, err := groupCfg.load()
		if err != nil {
			return err
		}
		pat, roleRules = c.GroupPattern, session.PreviewRules(c)
	case groupPattern != "":
		var err error
		if roleRules, err = parseRules(groupRules); err != nil {
			return err
		}
		pat = groupPattern
	default:
		return fmt.Errorf("pass --pattern, --file or --preset")
	}

	if res := grouping.ValidateGroupPattern(pat); !res.IsValid() {
		printMessages(cmd, res)
		return fmt.Errorf("invalid group pattern %q", pat)
	}

	var handler grouping.UnknownSegmentHandler
	if groupUnknownRole != "" {
		role, err := rules.ParseRole(groupUnknownRole)
		if err != nil {
			return err
		}
		handler = func(string, string) (rules.ImageRole, bool) { return role, true }
	}

	_, names, _, err := groupSrc.load(cmd.Context())
	if err != nil {
		return err
	}
	res := grouping.GroupAndAssignRoles(names, pat, roleRules, handler)
	if err := res.RuleError(); err != nil {
		return err
	}

	out := groupOutput{
		Pattern:   res.Pattern(),
		Total:     res.TotalFiles(),
		Matched:   res.MatchedFiles(),
		Unmatched: res.Unmatched(),
		Roles:     res.RoleCounts(),
	}
	for _, key := range res.GroupKeys() {
		e := groupEntry{Key: key, Files: map[string]rules.ImageRole{}, Missing: res.MissingRoles(key), Complete: res.IsComplete(key)}
		for _, f := range res.Files(key) {
			role, _ := res.Role(f)
			e.Files[f] = role
		}
		out.Groups = append(out.Groups, e)
	}
	if groupJSON {
		return writeJSON(cmd, "", out)
	}

	printf(cmd, "%d groups, %d/%d files matched (%.0f%%)\n\n", res.GroupCount(), out.Matched, out.Total, res.MatchRate()*100)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tFILE\tROLE")
	for _, key := range res.GroupKeys() {
		for _, f := range res.Files(key) {
			role, ok := res.Role(f)
			label := string(role)
			if !ok {
				label = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", key, f, label)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if inc := res.IncompleteGroups(); len(inc) > 0 {
		printf(cmd, "\nIncomplete groups: %s\n", strings.Join(inc, ", "))
	}
	if len(out.Unmatched) > 0 {
		printf(cmd, "\nUnmatched files:\n")
		for _, u := range out.Unmatched {
			printf(cmd, "  %s: %s\n", u.Filename, u.Reason)
		}
	}
	return nil
}
