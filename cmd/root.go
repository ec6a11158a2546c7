package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// CLI flags shared by the subcommands
	logLevel   string // Log verbosity level
	deviceType string // Device type to calibrate against (h100, a100-80, cpu)
	calibFile  string // Optional YAML file overriding the built-in calibration table
	seed       int64  // Seed for the measurement jitter stream
	batchSize  int    // Batch size of the reference graph
	numDevices int    // Number of devices available for partitioning
	capacityMB int64  // Per-device memory capacity in MiB (0 = unbounded)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "shardflow",
	Short: "Operator cost estimation and execution for distributed training",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&deviceType, "device", "h100", "device type for cost calibration")
	rootCmd.PersistentFlags().StringVar(&calibFile, "calib-file", "", "YAML file with device calibration overrides")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "seed for measurement jitter")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch", 8, "batch size of the reference graph")
	rootCmd.PersistentFlags().IntVar(&numDevices, "devices", 4, "number of devices available")
	rootCmd.PersistentFlags().Int64Var(&capacityMB, "capacity-mb", 0, "per-device memory capacity in MiB (0 = unbounded)")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(stepCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
