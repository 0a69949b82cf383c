package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose bool
}

// logger writes text records to stderr, at debug level when verbose.
func (c *rootCmdConfig) logger() *slog.Logger {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := cliParser().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "extratree",
		Short:         "extratree grows extremely randomized classification trees",
		Long:          `A tool to grow extra trees and forests of them from CSV data and use them to make predictions`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log debug records")
	rootCmd.AddCommand(versionCmd(), trainCmd(config), predictCmd(config))
	return rootCmd
}
