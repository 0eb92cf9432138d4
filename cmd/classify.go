package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/legalease/legalease/internal/casefile"
)

var (
	classifyText string
	classifyFile string
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <ref>",
	Short: "Classify a complaint narrative into a structured case",
	Long: `Run the reasoning engine over a complaint narrative and attach the
classification to the case: dispute type, regulatory framework, required
information fields and compensation estimates.

Re-running classify with a revised narrative replaces the classification.
Values already entered for fields that survive the re-classification are
kept; values for removed fields are dropped.

Examples:
  # Classify from the command line
  legalease classify LE-AB12-3456 --text "My flight BA855 was cancelled..."

  # Classify from a file
  legalease classify LE-AB12-3456 -f complaint.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&classifyText, "text", "", "Complaint narrative")
	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "", "Read the complaint narrative from a file")
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	narrative := classifyText
	if classifyFile != "" {
		data, err := os.ReadFile(classifyFile)
		if err != nil {
			return fmt.Errorf("failed to read complaint file: %w", err)
		}
		narrative = string(data)
	}
	if strings.TrimSpace(narrative) == "" {
		return fmt.Errorf("provide the complaint narrative via --text or --file")
	}

	rt, err := newRuntime(ctx, "[classify] ", true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, _, err := rt.controller.Select(ctx, rt.session, args[0]); err != nil {
		return err
	}

	rec, err := rt.controller.Classify(ctx, rt.session, narrative)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	fmt.Printf("Classified %s as %s\n", rec.CaseRef, casefile.HumanizeType(rec.Research.Type))
	fmt.Printf("Framework: %s\n", rec.Research.BaseJustification)
	fmt.Printf("Summary: %s\n", rec.Research.Summary)
	if len(rec.Research.RequiredInfo) > 0 {
		fmt.Printf("\nRequired information (fill with 'legalease fill %s <field>=<value>'):\n", rec.CaseRef)
		for _, f := range rec.Research.RequiredInfo {
			marker := " "
			if rec.FormData[f.ID] != "" {
				marker = "*"
			}
			fmt.Printf("  %s %s (%s)\n", marker, f.ID, f.Label)
		}
	}
	return nil
}
