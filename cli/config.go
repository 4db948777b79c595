package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/manifold-cm/manifold/pkg/config"
)

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Settings registry diagnostics",
	}
	cmd.AddCommand(configShowCmd())
	return cmd
}

// configShowCmd shows the resolved settings registry
func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved installation settings",
		Long: `Display the settings registry after applying defaults, the settings
file and environment variable overrides.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to render settings: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
