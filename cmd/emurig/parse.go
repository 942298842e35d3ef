package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"emurig/internal/catalog"
)

func init() {
	rootCmd.AddCommand(cmdParse)
}

var cmdParse = &cobra.Command{
	Use:   "parse <query>",
	Short: "Show how a device query string is interpreted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, ok := catalog.ParseQuery(args[0])
		if !ok {
			return fmt.Errorf("invalid device query %q", args[0])
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Model:       %s\n", orAny(q.Search.Model))
		fmt.Fprintf(out, "Firmware:    %s\n", orAny(q.Search.Firmware))
		fmt.Fprintf(out, "App:         %s\n", q.AppName)
		fmt.Fprintf(out, "App version: %s\n", orAny(q.Search.AppVersion))
		if q.Dependency != "" {
			fmt.Fprintf(out, "Dependency:  %s\n", q.Dependency)
		}
		return nil
	},
}

// orAny renders an unconstrained query field as a wildcard.
func orAny(s string) string {
	if s == "" {
		return "*"
	}
	return s
}
