package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/legalease/legalease/internal/casefile"
)

// fillCmd represents the fill command
var fillCmd = &cobra.Command{
	Use:   "fill <ref> <field>=<value> ...",
	Short: "Fill intake fields on a classified case",
	Long: `Set one or more of the fields the classification declared as required
information. Unknown fields are rejected; each accepted value is saved as
it is applied.

Example:
  legalease fill LE-AB12-3456 flight_number=BA855 departure_date=2026-03-14`,
	Args: cobra.MinimumNArgs(2),
	RunE: runFill,
}

func init() {
	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx, "[fill] ", false)
	if err != nil {
		return err
	}
	defer rt.Close()

	rec, _, err := rt.controller.Select(ctx, rt.session, args[0])
	if err != nil {
		return err
	}

	for _, pair := range args[1:] {
		field, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid assignment %q (want <field>=<value>)", pair)
		}
		if err := rt.controller.SaveField(ctx, rt.session, field, value); err != nil {
			return err
		}
		fmt.Printf("Set %s\n", field)
	}

	if rec.Research != nil {
		if missing := casefile.MissingFields(rt.controller.Current().FormData, rec.Research.RequiredInfo); len(missing) > 0 {
			fmt.Printf("Still missing: %s\n", strings.Join(missing, ", "))
		} else {
			fmt.Printf("All required fields filled. Run 'legalease finalize %s' to generate the dossier.\n", rec.CaseRef)
		}
	}
	return nil
}
