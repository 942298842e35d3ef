package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emurig/internal/device"
)

func init() {
	rootCmd.AddCommand(cmdResolve)
}

var cmdResolve = &cobra.Command{
	Use:   "resolve <query>",
	Short: "Show which binary a device query would launch, without launching it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mgr := device.NewManager(cfg, device.DockerRunner{})

		spec, err := mgr.Resolve(args[0])
		if err != nil {
			return err
		}
		c := spec.Candidate
		fmt.Fprintf(os.Stdout, "Model:    %s\n", c.Model)
		fmt.Fprintf(os.Stdout, "Firmware: %s\n", c.FirmwareVersion)
		fmt.Fprintf(os.Stdout, "App:      %s@%s\n", c.AppName, c.AppVersion)
		fmt.Fprintf(os.Stdout, "Binary:   %s\n", c.Path)
		if spec.DependencyName != "" {
			fmt.Fprintf(os.Stdout, "Dependency: %s (%s)\n", spec.DependencyName, spec.DependencyPath)
		}
		return nil
	},
}
