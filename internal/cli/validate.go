package cli

import (
	"fmt"
	"io"
	"os"

	"dotnet-quiz-service/internal/bank"
	"github.com/spf13/cobra"
)

// NewValidateCmd reports structural problems in a question bank file
// without modifying it.
func NewValidateCmd(configPath *string) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a question bank JSON file for malformed questions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := loadConfig(*configPath)
				if err != nil {
					return err
				}
				path = cfg.Bank.Path
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			issues, err := bank.Lint(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			var missing []string
			if b, err := bank.Parse(data); err == nil {
				missing = b.MissingTopics()
			}
			printIssues(cmd.OutOrStdout(), path, issues, missing)
			if strict && (len(issues) > 0 || len(missing) > 0) {
				return fmt.Errorf("%d invalid entries and %d empty topics in %s", len(issues), len(missing), path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any issue is found")
	return cmd
}

func printIssues(w io.Writer, path string, issues []bank.Issue, missing []string) {
	fmt.Fprintf(w, "Validating %s\n\n", path)
	if len(issues) == 0 && len(missing) == 0 {
		fmt.Fprintln(w, "No issues found. All questions passed validation.")
		return
	}
	if len(issues) > 0 {
		fmt.Fprintln(w, "Issues found:")
		for _, issue := range issues {
			fmt.Fprintf(w, "%s:\n", issue.Location())
			for _, p := range issue.Problems {
				fmt.Fprintf(w, "  - %s\n", p)
			}
		}
	}
	if len(missing) > 0 {
		fmt.Fprintln(w, "Topics without questions:")
		for _, label := range missing {
			fmt.Fprintf(w, "  - %s\n", label)
		}
	}
}
