package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var debugMode bool

var rootCmd = &cobra.Command{
	Use:   "drone-convert-cache",
	Short: "Conversion extension: caches → drone-cache steps",
	Long: "drone-convert-cache is a Drone conversion extension that wraps cache-declaring " +
		"pipeline steps with restore and rebuild steps backed by a shared host volume",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugMode {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	registerServeCommand(rootCmd)
	registerConvertCommand(rootCmd)
	registerLintCommand(rootCmd)
	registerCachesCommand(rootCmd)
}
