package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeplan/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage the tradeplan configuration file.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  tradeplan config init -o tradeplan.yaml
  tradeplan config validate -f tradeplan.yaml`,
		// Config commands must work even when the current file is broken.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Default()
			return loadEnvFile(a.flags.EnvFile)
		},
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := cfg.SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ Created default configuration: %s\n", output)
			fmt.Fprintln(w, "\nEdit the file and run with:")
			fmt.Fprintf(w, "  tradeplan --config %s progress\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", defaultConfigPath, "output config file path")

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(w, "  Account: %s %s (risk %.2f%% per trade)\n", money(cfg.Account.Balance), cfg.Account.Currency, cfg.Account.RiskPercent)
			fmt.Fprintf(w, "  Daily goal: %s, max daily loss: %s\n", money(cfg.Rules.DailyGoal), money(cfg.Rules.MaxDailyLoss))
			fmt.Fprintf(w, "  Journal: %s\n", cfg.Journal.Type)
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("file")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
