package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new empty case",
	Long: `Create a new empty case and print its reference.

The case starts in the intake phase with no complaint attached. Use
'legalease classify <ref>' to attach and classify the complaint narrative.`,
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx, "[new] ", false)
	if err != nil {
		return err
	}
	defer rt.Close()

	rec, err := rt.controller.Create(ctx, rt.session)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}

	fmt.Printf("Created case %s\n", rec.CaseRef)
	return nil
}
