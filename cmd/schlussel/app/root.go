// Package app builds the schlussel command tree.
package app

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pepicrft/schlussel/internal/appconfig"
	"github.com/pepicrft/schlussel/internal/formula"
	"github.com/pepicrft/schlussel/internal/logging"
)

// state is threaded through every subcommand's RunE rather than kept in a
// package-level global: it's constructed once here and resolved once the
// root command's persistent flags have been parsed.
type state struct {
	cfg      appconfig.Config
	registry *formula.Registry
}

// NewRootCmd creates the root "schlussel" command. registry holds any
// built-in formulas the embedding process wants resolvable by id, in
// addition to formula documents loaded from a file path.
func NewRootCmd(registry *formula.Registry) *cobra.Command {
	s := &state{registry: registry}
	v := viper.New()
	v.SetEnvPrefix("SCHLUSSEL")
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:               "schlussel",
		DisableAutoGenTag: true,
		Short:             "schlussel turns declarative OAuth formulas into refreshed access tokens",
		Long: `schlussel is an authentication runtime for command-line tools and agents.
It resolves a declarative provider "formula" into an OAuth 2.0 exchange,
stores the resulting credentials in an OS-appropriate secret store, and
serves valid access tokens, refreshing them transparently when multiple
processes compete for the same credential.`,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				logging.Errorf("error displaying help: %v", err)
			}
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := appconfig.Load(v, configPath)
			if err != nil {
				return err
			}
			s.cfg = cfg
			if cfg.Debug {
				os.Setenv("SCHLUSSEL_DEBUG", "1")
			}
			logging.Initialize()
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/schlussel/config.yaml)")
	if err := v.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logging.Errorf("error binding debug flag: %v", err)
	}

	rootCmd.AddCommand(newLoginCmd(s))
	rootCmd.AddCommand(newTokenCmd(s))
	rootCmd.AddCommand(newFormulasCmd(s))
	rootCmd.AddCommand(newLogoutCmd(s))

	rootCmd.SilenceUsage = true

	return rootCmd
}
