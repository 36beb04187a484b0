package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func keysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Show which provider credentials are configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			ks := a.cfg.KeyStatus()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "GoPlus API key:      %s\n", configured(ks.GoPlusConfigured))
			fmt.Fprintf(out, "RugCheck API token:  %s\n", configured(ks.RugCheckConfigured))
			fmt.Fprintf(out, "RugCheck on Solana:  %s\n", enabled(ks.RugCheckEnabled))
			fmt.Fprintf(out, "RugCheck active:     %t\n", ks.RugCheckActive)
			for _, w := range ks.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "missing"
}

func enabled(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled"
}
