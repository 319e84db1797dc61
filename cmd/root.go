// Package cmd is for command line interactions with the genesim application
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HarrisKClark/Genesim-sub001/config"
	"github.com/HarrisKClark/Genesim-sub001/internal/store"
)

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)

	// conf is loaded before any command runs
	conf *config.Config

	// logger is for the library packages, debug level with --verbose
	logger = slog.Default()

	settingsFile string
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "genesim",
	Short: `Lay out genetic circuits, check them and simulate their expression.
Circuits are parts placed on a DNA strand, grouped into operons and sent to a solver`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(viper.GetViper(), settingsFile)
		if err != nil {
			return err
		}
		conf = c

		level := slog.LevelInfo
		if conf.Verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&settingsFile, "settings", "s", "", "settings file (default genesim.yaml in . or the user config dir)")
	RootCmd.PersistentFlags().String("store", "", "path to the circuit database")
	RootCmd.PersistentFlags().String("proxy", "", "solver proxy base URL, tried first")
	RootCmd.PersistentFlags().String("host", "", "solver host")
	RootCmd.PersistentFlags().Int("port", 0, "solver port")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug messages")

	viper.BindPFlag("store.path", RootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("solver.proxy", RootCmd.PersistentFlags().Lookup("proxy"))
	viper.BindPFlag("solver.host", RootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("solver.port", RootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		stderr.Fatalf("%v", err)
	}
}

// openStore opens the configured circuit database
func openStore() (*store.SQLiteStore, error) {
	s, err := store.NewSQLiteStore(conf.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", conf.Store.Path, err)
	}
	return s, nil
}

// printJSON writes v as indented JSON to the command's stdout
func printJSON(cmd *cobra.Command, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
