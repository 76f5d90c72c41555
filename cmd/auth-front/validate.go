package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgellow/auth-front/internal/config"
)

func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a config file without resolving environment variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := config.ValidateFile(configPath)
			if err != nil {
				return fmt.Errorf("error during validation: %w", err)
			}
			return printValidation(cmd.OutOrStdout(), configPath, result)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func printValidation(w io.Writer, path string, result *config.ValidationResult) error {
	fmt.Fprintf(w, "Validating: %s\n", path)

	printIssues := func(title string, issues []config.ValidationError) {
		if len(issues) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s (%d):\n", title, len(issues))
		for _, issue := range issues {
			if issue.Path != "" {
				fmt.Fprintf(w, "  - %s: %s\n", issue.Path, issue.Message)
			} else {
				fmt.Fprintf(w, "  - %s\n", issue.Message)
			}
		}
	}
	printIssues("Errors", result.Errors)
	printIssues("Warnings", result.Warnings)

	fmt.Fprintln(w)
	switch {
	case len(result.Errors) > 0:
		fmt.Fprintln(w, "Result: FAIL")
		return fmt.Errorf("validation failed: %d error(s), %d warning(s)", len(result.Errors), len(result.Warnings))
	case len(result.Warnings) > 0:
		fmt.Fprintln(w, "Result: PASS (with warnings)")
	default:
		fmt.Fprintln(w, "Result: PASS")
	}
	return nil
}
