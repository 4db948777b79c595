package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manifold-cm/manifold/pkg/config"
	"github.com/manifold-cm/manifold/pkg/logger"
)

// RootCmd builds the manifold command tree. Logging and the settings registry
// are resolved once in the persistent pre-run and carried on the command
// context for every subcommand.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "manifold",
		Short:             "Manifold configuration management CLI",
		SilenceUsage:      true,
		PersistentPreRunE: setupContext,
	}

	root.PersistentFlags().String("config", "/etc/manifold/manifold.yaml", "Path to the installation settings file")
	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	root.AddCommand(
		EnvironmentCmd(),
		ConfigCmd(),
	)

	return root
}

// setupContext wires the logger and the settings registry into the command
// context before any subcommand runs.
func setupContext(cmd *cobra.Command, _ []string) error {
	logLevel, logJSON, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	ctx := logger.ContextWithLogger(cmd.Context(), logger.SetupLogger(logLevel, logJSON))

	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.NewService().Load(ctx, config.NewYAMLProvider(configFile))
	if err != nil {
		return fmt.Errorf("failed to load settings registry: %w", err)
	}
	cmd.SetContext(config.ContextWithConfig(ctx, cfg))
	return nil
}
