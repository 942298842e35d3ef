package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"emurig/internal/device"
	"emurig/internal/tui"
)

func init() {
	rootCmd.AddCommand(cmdTUI)
}

var cmdTUI = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive device browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mgr := device.NewManager(cfg, device.DockerRunner{})

		err = tui.Run(mgr)

		// Devices live only as long as this process; clean up on the way out.
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		mgr.ReleaseAll(ctx)

		if err != nil {
			return fmt.Errorf("tui exited with error: %w", err)
		}
		return nil
	},
}
