package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.trai.ch/sema/internal/app"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compare the lock document against the actual checkout state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			strict, _ := cmd.Flags().GetBool("strict")

			result := c.app.Status(cmd.Context(), app.StatusOptions{Strict: strict})

			// Reports are printed even when strict mode fails the command.
			if len(result.Integrity) > 0 {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tSTATE\tLOCKED\tACTUAL")
				for _, report := range result.Integrity {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						report.Name, report.State, short(report.Locked), short(report.Actual))
				}
				if err := w.Flush(); err != nil {
					return err
				}
			} else if result.OK() {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing locked")
			}

			return resultErr(result)
		},
	}
	cmd.Flags().Bool("strict", false, "Fail when any checkout drifted from the lock document")
	return cmd
}
