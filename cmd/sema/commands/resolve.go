package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the dependency graph and write the lock document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := c.app.Resolve(cmd.Context())
			if !result.OK() {
				return resultErr(result)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tREFERENCE\tCOMMIT")
			for dep := range result.Resolved.Walk() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", dep.Name, dep.Reference, short(dep.Commit))
			}
			return w.Flush()
		},
	}
}
