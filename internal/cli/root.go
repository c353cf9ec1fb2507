// Package cli implements the orderctl command tree.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the configuration and logger shared by every command.
type app struct {
	config *viper.Viper
	log    *logrus.Logger
}

// NewRootCommand builds orderctl with its subcommands.
func NewRootCommand() *cobra.Command {
	a := &app{config: viper.New(), log: logrus.New()}

	root := &cobra.Command{
		Use:   "orderctl",
		Short: "Inspect order option catalogs and replay option changes",
		Long: `orderctl loads order option catalogs, publishes their selection
schema and replays option change events through the order form to show the
resulting selection and price.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is ./orderctl.yaml)")
	root.PersistentFlags().String("catalog", "", "catalog file (.json, .yaml or .yml)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.config.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = a.config.BindPFlag("catalog", root.PersistentFlags().Lookup("catalog"))
	_ = a.config.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(a.validateCommand(), a.schemaCommand(), a.replayCommand())
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.config.SetDefault("log.level", "info")
	a.config.SetDefault("evaluator", "expr")
	a.config.SetDefault("base_price", "0")

	if cfgFile := a.config.GetString("config"); cfgFile != "" {
		a.config.SetConfigFile(cfgFile)
	} else {
		a.config.SetConfigName("orderctl")
		a.config.SetConfigType("yaml")
		a.config.AddConfigPath(".")
	}

	a.config.AutomaticEnv()
	a.config.SetEnvPrefix("ORDERCTL")
	// ORDERCTL_LOG_LEVEL for log.level
	a.config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; a broken one is not.
	if err := a.config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("orderctl: read config: %w", err)
		}
	}

	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	level, err := logrus.ParseLevel(a.config.GetString("log.level"))
	if err != nil {
		level = logrus.InfoLevel
	}
	a.log.SetLevel(level)
	return nil
}
