package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emurig/internal/device"
)

func init() {
	rootCmd.AddCommand(cmdRm)
}

var cmdRm = &cobra.Command{
	Use:   "rm <instance-id>",
	Short: "Force-remove a leftover emulator container by instance id",
	Long:  "Removes the named emulator container directly. Useful for cleaning up instances a crashed session left behind.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := (device.DockerRunner{}).Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Removed %s\n", args[0])
		return nil
	},
}
