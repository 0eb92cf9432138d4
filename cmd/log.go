package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// logCmd represents the log command
var logCmd = &cobra.Command{
	Use:   "log <ref> <update text>",
	Short: "Log a case update and get the agent's assessment",
	Long: `Record a communication on a filed case, such as a company reply or a
deadline passing without one, and run the reasoning engine's assessment
over it. The assessment may extend the response deadline or escalate the
case with a drafted follow-up.

Example:
  legalease log LE-AB12-3456 "Airline replied offering a travel voucher instead of cash."`,
	Args: cobra.MinimumNArgs(2),
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx, "[log] ", true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, _, err := rt.controller.Select(ctx, rt.session, args[0]); err != nil {
		return err
	}

	analysis, err := rt.controller.LogUpdate(ctx, rt.session, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	fmt.Printf("Assessment: %s\n", analysis.Assessment)
	fmt.Printf("Recommended action: %s\n", analysis.RecommendedAction)
	fmt.Printf("Response quality: %s\n", analysis.ResponseQuality)
	if analysis.NewDeadlineDays > 0 {
		fmt.Printf("Response deadline reset to %d days from now.\n", analysis.NewDeadlineDays)
	}
	if analysis.ShouldEscalate {
		fmt.Printf("\nCase escalated. Drafted follow-up:\n\n%s\n", analysis.EscalationDraft)
	}
	return nil
}
