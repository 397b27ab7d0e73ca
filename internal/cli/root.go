// Package cli holds the metalrates command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"metalrates/internal/config"
)

// NewRootCmd builds the command tree around its own viper instance.
func NewRootCmd(deps Deps) *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:           "metalrates",
		Short:         "metalrates polls Maybank's gold and silver counter rates and republishes them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Config file (default ./config.yaml or $HOME/.metalrates/config.yaml)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	root.PersistentFlags().String("log-format", "text", "Log format: text or json")
	_ = v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log_format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(newServeCmd(v, deps), newFetchCmd(v, deps))
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := NewRootCmd(DefaultDeps()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the config file named by --config, if any, and validates the result.
func load(cmd *cobra.Command, v *viper.Viper) (*config.Config, *slog.Logger, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	}
	if err := config.ReadFile(v); err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return nil, nil, err
	}
	logger := NewLogger(cfg, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return cfg, logger, nil
}
