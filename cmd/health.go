package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// healthCmd is for checking that a solver is reachable
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check which solver endpoint is reachable",
	Long: `
Probe the solver endpoints in the order simulations try them and print the first
that answers its health check.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, err := newClient().Health(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "solver is up at %s\n", endpoint)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(healthCmd)
}
