package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/legalease/legalease/internal/engine"
)

var (
	engineEndpoint string
	engineModel    string
	engineAPIKey   string
)

// engineCmd groups reasoning engine settings subcommands.
var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Inspect and change reasoning engine settings",
}

var engineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active reasoning engine settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		config := GetConfig()
		settings, err := engine.LoadSettings(config.Engine.Settings)
		if err != nil {
			return err
		}
		fmt.Printf("Provider: %s\n", settings.Active.Provider)
		fmt.Printf("Endpoint: %s\n", settings.Active.Endpoint)
		fmt.Printf("Model: %s\n", settings.Active.Model)
		if settings.Active.APIKey != "" {
			fmt.Println("API key: (set)")
		} else {
			fmt.Println("API key: (from environment)")
		}
		return nil
	},
}

var engineUseCmd = &cobra.Command{
	Use:   "use <provider>",
	Short: "Switch the active reasoning engine provider",
	Long: `Switch the active provider (gemini or ollama) and persist the settings.
Running commands pick the change up without a restart.

Examples:
  legalease engine use ollama --model llama3.1
  legalease engine use gemini --model gemini-2.5-flash-lite`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config := GetConfig()
		logger := newLogger("[engine] ")

		settings, err := engine.LoadSettings(config.Engine.Settings)
		if err != nil {
			return err
		}
		settings.Active.Provider = args[0]
		if engineEndpoint != "" {
			settings.Active.Endpoint = engineEndpoint
		}
		if engineModel != "" {
			settings.Active.Model = engineModel
		}
		if engineAPIKey != "" {
			settings.Active.APIKey = engineAPIKey
		}

		if err := engine.TryHealthCheck(ctx, settings.Active, logger); err != nil {
			logger.Printf("provider health check failed: %v", err)
		}
		if err := engine.SaveSettings(config.Engine.Settings, settings); err != nil {
			return err
		}
		fmt.Printf("Active provider set to %s (%s)\n", settings.Active.Provider, settings.Active.Model)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(engineCmd)
	engineCmd.AddCommand(engineShowCmd)
	engineCmd.AddCommand(engineUseCmd)

	engineUseCmd.Flags().StringVar(&engineEndpoint, "endpoint", "", "Provider endpoint override")
	engineUseCmd.Flags().StringVar(&engineModel, "model", "", "Model name")
	engineUseCmd.Flags().StringVar(&engineAPIKey, "api-key", "", "API key to persist in the settings file")
}
