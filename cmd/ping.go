package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// pingCmd checks that the configured API answers.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the blog API is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		start := time.Now()
		if err := a.API.Ping(cmd.Context()); err != nil {
			return reportError(a, "pinging the blog", err)
		}
		fmt.Fprintf(a.Toast.Writer(), "✅ %s is reachable (%d ms)\n", a.API.BaseURL(), time.Since(start).Milliseconds())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
