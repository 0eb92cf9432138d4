package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// fileCmd represents the file command
var fileCmd = &cobra.Command{
	Use:   "file <ref>",
	Short: "Mark a case as formally filed and start the response deadline",
	Long: `Mark the case as formally filed: the 14-day response window starts,
the escalation history is initialized and a log entry citing the
regulatory framework is appended to the status history.`,
	Args: cobra.ExactArgs(1),
	RunE: runFile,
}

func init() {
	rootCmd.AddCommand(fileCmd)
}

func runFile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx, "[file] ", false)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, _, err := rt.controller.Select(ctx, rt.session, args[0]); err != nil {
		return err
	}

	rec, err := rt.controller.File(ctx, rt.session)
	if err != nil {
		return err
	}

	fmt.Printf("Case %s filed under %s\n", rec.CaseRef, rec.Research.BaseJustification)
	if cd, ok := rt.controller.Deadline(); ok {
		fmt.Printf("Response deadline: %s\n", cd.Label)
	}
	return nil
}
