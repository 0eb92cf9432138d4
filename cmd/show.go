package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/legalease/legalease/internal/casefile"
	"github.com/legalease/legalease/internal/policy"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show a case with its dossier and status history",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx, "[show] ", false)
	if err != nil {
		return err
	}
	defer rt.Close()

	rec, phase, err := rt.controller.Select(ctx, rt.session, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s  [%s]\n", rec.DisplayTitle(), strings.ToUpper(string(rec.Status())))
	fmt.Printf("Ref: %s\n", rec.CaseRef)
	fmt.Printf("Phase: %s\n", phase)
	fmt.Printf("Created: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))

	if rec.Research != nil {
		fmt.Printf("\nClassification\n")
		fmt.Printf("  Type: %s\n", casefile.HumanizeType(rec.Research.Type))
		fmt.Printf("  Framework: %s\n", rec.Research.BaseJustification)
		fmt.Printf("  Summary: %s\n", rec.Research.Summary)
		for _, est := range rec.Research.Compensation {
			fmt.Printf("  Compensation (%s): %s\n", est.Area, est.Estimate)
		}
		if len(rec.Research.RequiredInfo) > 0 {
			fmt.Printf("\nRequired information\n")
			for _, f := range rec.Research.RequiredInfo {
				value := rec.FormData[f.ID]
				if value == "" {
					value = "(empty)"
				}
				fmt.Printf("  %s: %s\n", f.Label, value)
			}
		}
	}

	if rec.CaseData != nil {
		fmt.Printf("\nDossier\n")
		for i, step := range rec.CaseData.Timeline {
			fmt.Printf("  %d. %s (%s)\n", i+1, step.Title, step.Timeframe)
		}
		fmt.Printf("\nCorrespondence\n")
		fmt.Printf("  To: %s <%s>\n", rec.CaseData.Email.RecipientName, rec.CaseData.Email.RecipientAddress)
		fmt.Printf("  Subject: %s\n", rec.CaseData.Email.Subject)
		if rec.CaseData.ResponseDeadline != nil {
			cd := policy.DaysUntil(*rec.CaseData.ResponseDeadline, time.Now())
			fmt.Printf("\nResponse deadline: %s (%s)\n",
				rec.CaseData.ResponseDeadline.Format("2006-01-02"), cd.Label)
		}
		for _, esc := range rec.CaseData.EscalationHistory {
			fmt.Printf("Escalated %s (response quality: %s)\n",
				esc.TriggeredAt.Format("2006-01-02"), esc.ResponseQuality)
		}
	}

	if len(rec.StatusLogs) > 0 {
		fmt.Printf("\nStatus history\n")
		for _, entry := range rec.StatusLogs {
			actor := "user"
			if entry.IsAgent {
				actor = "agent"
			}
			fmt.Printf("  %s [%s] %s\n", entry.Timestamp.Format("2006-01-02 15:04"), actor, entry.Message)
		}
	}

	return nil
}
