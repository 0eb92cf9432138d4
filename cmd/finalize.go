package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// finalizeCmd represents the finalize command
var finalizeCmd = &cobra.Command{
	Use:   "finalize <ref>",
	Short: "Generate the case dossier and drafted correspondence",
	Long: `Generate the full case dossier from the classification and the
collected intake fields: a procedural timeline, the drafted claim
correspondence and an evidence checklist.

Missing intake fields do not block finalization; the draft carries
placeholders for them.`,
	Args: cobra.ExactArgs(1),
	RunE: runFinalize,
}

func init() {
	rootCmd.AddCommand(finalizeCmd)
}

func runFinalize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx, "[finalize] ", true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, _, err := rt.controller.Select(ctx, rt.session, args[0]); err != nil {
		return err
	}

	rec, err := rt.controller.Finalize(ctx, rt.session)
	if err != nil {
		return fmt.Errorf("dossier generation failed: %w", err)
	}

	fmt.Printf("Dossier generated for %s\n\n", rec.CaseRef)
	fmt.Printf("Timeline:\n")
	for i, step := range rec.CaseData.Timeline {
		fmt.Printf("  %d. %s (%s)\n", i+1, step.Title, step.Timeframe)
		fmt.Printf("     %s\n", step.Description)
	}
	fmt.Printf("\nDraft correspondence to %s <%s>:\n", rec.CaseData.Email.RecipientName, rec.CaseData.Email.RecipientAddress)
	fmt.Printf("Subject: %s\n\n%s\n", rec.CaseData.Email.Subject, rec.CaseData.Email.Body)
	fmt.Printf("\nEvidence checklist:\n")
	for _, item := range rec.CaseData.Checklist {
		fmt.Printf("  - %s\n", item)
	}
	fmt.Printf("\nRun 'legalease file %s' once the correspondence has been sent.\n", rec.CaseRef)
	return nil
}
