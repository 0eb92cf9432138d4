package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var confirmDelete bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete a case and its status history",
	Long: `Delete a case and all of its status history.

WARNING: This operation is irreversible.

Examples:
  # Delete with interactive confirmation
  legalease delete LE-AB12-3456

  # Delete with automatic confirmation
  legalease delete LE-AB12-3456 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&confirmDelete, "yes", "y", false, "Automatically confirm deletion")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !confirmDelete {
		fmt.Printf("Delete case %s and its history? This cannot be undone. [y/N]: ", args[0])
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	rt, err := newRuntime(ctx, "[delete] ", false)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.controller.Delete(ctx, rt.session, args[0], true); err != nil {
		return err
	}

	fmt.Printf("Deleted case %s\n", args[0])
	return nil
}
