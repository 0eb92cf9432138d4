package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/legalease/legalease/internal/casefile"
	"github.com/legalease/legalease/internal/lifecycle"
	"github.com/legalease/legalease/internal/policy"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases",
	Long: `List the acting user's cases in a simple text format, newest first,
with draft and filed counts and the response deadline countdown for filed cases.

Examples:
  # List all cases
  legalease list

  # List only filed cases
  legalease list --status filed`,
	RunE: runList,
}

var listStatus string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status: draft, filed, closed")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx, "[list] ", false)
	if err != nil {
		return err
	}
	defer rt.Close()

	cases, err := rt.controller.List(ctx, rt.session)
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}

	var drafts, filed, closed int
	for _, rec := range cases {
		switch rec.Status() {
		case casefile.StatusDraft:
			drafts++
		case casefile.StatusSubmitted:
			filed++
		case casefile.StatusClosed:
			closed++
		}
	}

	if listStatus != "" {
		var want casefile.Status
		switch strings.ToLower(listStatus) {
		case "draft":
			want = casefile.StatusDraft
		case "filed", "submitted":
			want = casefile.StatusSubmitted
		case "closed":
			want = casefile.StatusClosed
		default:
			return fmt.Errorf("unknown status filter: %s (use 'draft', 'filed' or 'closed')", listStatus)
		}
		filtered := cases[:0]
		for _, rec := range cases {
			if rec.Status() == want {
				filtered = append(filtered, rec)
			}
		}
		cases = filtered
	}

	if len(cases) == 0 {
		fmt.Println("No cases found.")
		return nil
	}

	fmt.Printf("%d cases (%d draft, %d filed, %d closed):\n\n", drafts+filed+closed, drafts, filed, closed)

	for i, rec := range cases {
		fmt.Printf("%d. [%s] %s\n", i+1, strings.ToUpper(string(rec.Status())), rec.DisplayTitle())
		fmt.Printf("   Ref: %s\n", rec.CaseRef)
		fmt.Printf("   Phase: %s\n", lifecycle.RouteFor(rec))
		fmt.Printf("   Created: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
		if rec.CaseData != nil && rec.CaseData.ResponseDeadline != nil && rec.Status() == casefile.StatusSubmitted {
			cd := policy.DaysUntil(*rec.CaseData.ResponseDeadline, time.Now())
			fmt.Printf("   Deadline: %s\n", cd.Label)
		}
		fmt.Println()
	}

	return nil
}
