package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"voting-settlement/config"
)

var configFile string

var v = viper.New()

func init() {
	config.SetDefaults(v)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json or console)")
	v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	addServeFlags(rootCmd.Flags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(proposalCmd)
}

var rootCmd = &cobra.Command{
	Use:           "private-voting",
	Short:         "Ballot tally service settling results on the PrivateVoting contract",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
