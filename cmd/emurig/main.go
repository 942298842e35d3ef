package main

import (
	"github.com/spf13/cobra"

	"emurig/internal/config"
	"emurig/internal/logging"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "emurig [command]",
	Short: "emurig: emulated hardware-wallet device manager",
	Long:  `emurig resolves which app binary satisfies a device request and manages the emulator instances used to test against it.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetDebug(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.L.Fatal(err)
	}
}
