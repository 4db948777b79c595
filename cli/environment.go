package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/manifold-cm/manifold/engine/environment"
	"github.com/manifold-cm/manifold/pkg/config"
)

// EnvironmentCmd returns the environment command
func EnvironmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "environment",
		Short: "Directory environment operations",
	}
	cmd.AddCommand(environmentResolveCmd())
	return cmd
}

// environmentResolveCmd resolves the effective configuration of one
// directory environment.
func environmentResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name|path>",
		Short: "Resolve the effective configuration for a directory environment",
		Long: `Resolve the effective configuration for a directory environment.

Bare names are looked up under the installation's environmentpath; paths are
used as given. A broken environment.conf degrades to installation defaults
with a warning, except for syntax errors, which fail the resolution.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvironmentResolve(cmd, args[0])
		},
	}
}

// runEnvironmentResolve executes the environment resolve command
func runEnvironmentResolve(cmd *cobra.Command, target string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	pathToEnv := target
	if !filepath.IsAbs(target) && !strings.ContainsRune(target, os.PathSeparator) {
		pathToEnv = filepath.Join(cfg.Environments.EnvironmentPath, target)
	}

	registry := environment.Registry{
		DefaultManifest:               cfg.Environments.DefaultManifest,
		DisablePerEnvironmentManifest: cfg.Environments.DisablePerEnvironmentManifest,
		EnvironmentTimeout:            cfg.Environments.EnvironmentTimeout,
		EnvironmentDataProvider:       cfg.Environments.EnvironmentDataProvider,
	}
	envConfig, err := environment.NewLoader(nil).Load(ctx, pathToEnv, registry, cfg.Environments.BaseModulePath)
	if err != nil {
		return err
	}
	timeout, err := envConfig.Timeout(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "environment\t%s\n", envConfig.Path())
	fmt.Fprintf(w, "manifest\t%s\n", envConfig.Manifest(ctx))
	fmt.Fprintf(w, "modulepath\t%s\n", envConfig.ModulePath(ctx))
	if version := envConfig.ConfigVersion(ctx); version != "" {
		fmt.Fprintf(w, "config_version\t%s\n", version)
	}
	fmt.Fprintf(w, "environment_timeout\t%s\n", timeout)
	fmt.Fprintf(w, "environment_data_provider\t%s\n", envConfig.DataProvider(ctx))
	return w.Flush()
}
