package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"emurig/internal/device"
)

func init() {
	rootCmd.AddCommand(cmdRun)
}

var cmdRun = &cobra.Command{
	Use:   "run <query>",
	Short: "Launch an emulated device from a query and hold it until interrupted",
	Long:  "Resolves the query (e.g. speculos:nanos:bitcoin@1.3.x) against the coinapps tree, launches the emulator, waits for readiness, and keeps the device alive until Ctrl-C.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mgr := device.NewManager(cfg, device.DockerRunner{})

		spin := spinner.New(spinner.CharSets[21], 120*time.Millisecond, spinner.WithWriter(os.Stdout))
		spin.Suffix = " waiting for emulator readiness"
		spin.Start()
		inst, err := mgr.Open(cmd.Context(), device.NewFromQuery{Query: args[0]})
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Device %s ready: %s %s %s@%s\n",
			inst.ID, inst.Candidate.Model, inst.Candidate.FirmwareVersion,
			inst.Candidate.AppName, inst.Candidate.AppVersion)
		fmt.Fprintf(os.Stdout, "Ports: apdu=%d vnc=%d button=%d automation=%d\n",
			inst.Ports.APDU, inst.Ports.VNC, inst.Ports.Button, inst.Ports.Automation)
		fmt.Fprintln(os.Stdout, "Press Ctrl-C to destroy the device and exit.")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		mgr.ReleaseAll(ctx)
		return nil
	},
}
