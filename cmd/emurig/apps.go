package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emurig/internal/catalog"
)

var (
	appsModel    string
	appsFirmware string
	appsName     string
	appsVersion  string
)

func init() {
	rootCmd.AddCommand(cmdApps)
	cmdApps.Flags().StringVar(&appsModel, "model", "", "Filter by device model (e.g. nanos)")
	cmdApps.Flags().StringVar(&appsFirmware, "firmware", "", "Filter by firmware (exact or semver range)")
	cmdApps.Flags().StringVar(&appsName, "app", "", "Filter by app name (exact)")
	cmdApps.Flags().StringVar(&appsVersion, "app-version", "", "Filter by app version range")
}

var cmdApps = &cobra.Command{
	Use:   "apps",
	Short: "List app candidates discovered under the coinapps tree",
	Long:  "Scans the COINAPPS directory and prints every discovered binary in resolution order: model priority, then firmware descending, then app version descending.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		search := catalog.AppSearch{
			Firmware:   appsFirmware,
			AppName:    appsName,
			AppVersion: appsVersion,
		}
		if appsModel != "" {
			model, ok := catalog.CanonicalModel(appsModel)
			if !ok {
				return fmt.Errorf("unknown device model %q", appsModel)
			}
			search.Model = model
		}

		candidates, err := catalog.Scan(cfg.CoinappsRoot)
		if err != nil {
			return err
		}

		shown := 0
		for _, c := range candidates {
			if !catalog.Matches(c, search) {
				continue
			}
			fmt.Fprintf(os.Stdout, "%-8s %-10s %-24s %-10s %s\n",
				c.Model, c.FirmwareVersion, c.AppName, c.AppVersion, c.Path)
			shown++
		}
		if shown == 0 {
			fmt.Fprintln(os.Stdout, "No matching app candidates")
		}
		return nil
	},
}
