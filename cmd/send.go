package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/legalease/legalease/internal/mailer"
)

var (
	sendTo     string
	sendDryRun bool
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <ref>",
	Short: "Send the drafted claim correspondence",
	Long: `Send the case's drafted correspondence through Resend. The recipient
defaults to the address the dossier names; override it with --to.

Requires RESEND_API_KEY (or mail configuration in the config file).
Use --dry-run to validate and log the message without sending.`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVar(&sendTo, "to", "", "Recipient address (defaults to the dossier's recipient)")
	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "Validate and log without sending")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	rt, err := newRuntime(ctx, "[send] ", false)
	if err != nil {
		return err
	}
	defer rt.Close()

	var m mailer.Mailer
	if sendDryRun {
		m = mailer.NewNull(rt.logger)
	} else {
		m, err = mailer.NewResend(config.Mail.Endpoint, "", config.Mail.From, rt.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize mailer: %w", err)
		}
	}

	if _, _, err := rt.controller.Select(ctx, rt.session, args[0]); err != nil {
		return err
	}

	receipt, err := rt.controller.SendClaim(ctx, rt.session, m, sendTo)
	if err != nil {
		return err
	}

	fmt.Printf("Claim correspondence sent (id %s)\n", receipt.ID)
	return nil
}
