// Package cmd provides the command-line interface for pipesim.
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// Environment variables that provide flag defaults. They can also be set in
// a .env file in the working directory.
const (
	EnvReport      = "PIPESIM_REPORT"
	EnvMonitorPort = "PIPESIM_MONITOR_PORT"
	EnvLogLevel    = "PIPESIM_LOG_LEVEL"
	EnvRecord      = "PIPESIM_RECORD"
	EnvFlowReport  = "PIPESIM_FCT_REPORT"
)

// NewRootCmd creates the pipesim command with all its subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pipesim",
		Short: "pipesim simulates packet networks built from fixed-latency pipes.",
		Long: `pipesim simulates packet networks built from fixed-latency ` +
			`pipes. It can generate leaf-spine topologies, run traffic over ` +
			`them and report the bytes carried by every core link.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd)
		},
	}

	rootCmd.PersistentFlags().String("log-level", "",
		"Log level: panic, fatal, error, warn, info, debug or trace. "+
			"Defaults to $"+EnvLogLevel+" or info.")
	rootCmd.PersistentFlags().String("log-format", "text",
		"Log format: text or json.")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newLeafSpineCmd())
	rootCmd.AddCommand(newReportCmd())

	return rootCmd
}

// Execute runs the root command and exits with a non-zero code on failure.
func Execute() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to load .env")
	}

	err = NewRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func setupLogging(cmd *cobra.Command) error {
	levelName := stringFlagOrEnv(cmd, "log-level", EnvLogLevel, "info")

	level, err := log.ParseLevel(levelName)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	format, _ := cmd.Flags().GetString("log-format")
	switch format {
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.StampMicro})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	log.SetOutput(cmd.ErrOrStderr())

	return nil
}

// stringFlagOrEnv returns the flag value if the flag is set on the command
// line, the environment variable if it is set, and def otherwise.
func stringFlagOrEnv(cmd *cobra.Command, flag, env, def string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}

	if v, ok := os.LookupEnv(env); ok {
		return v
	}

	return def
}

func intFlagOrEnv(cmd *cobra.Command, flag, env string, def int) (int, error) {
	if cmd.Flags().Changed(flag) {
		return cmd.Flags().GetInt(flag)
	}

	if v, ok := os.LookupEnv(env); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("$%s: %w", env, err)
		}

		return n, nil
	}

	return def, nil
}
