package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/sema/internal/app"
)

func (c *CLI) newUpgradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade <name> [reference]",
		Short: "Transactionally move a dependency to a new reference",
		Long: "Upgrade resolves the graph with the dependency at the given reference,\n" +
			"snapshots the mutable state, applies the changes the upstream declared\n" +
			"between the locked state and the new one, and commits the new lock\n" +
			"document only if every change verifies. Any failure rolls back.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			reference := ""
			if len(args) == 2 {
				reference = args[1]
			}

			timeout, _ := cmd.Flags().GetDuration("timeout")
			commit, _ := cmd.Flags().GetBool("commit")

			result := c.app.Upgrade(cmd.Context(), name, reference, app.UpgradeOptions{
				Timeout: timeout,
				Commit:  commit,
			})
			if !result.OK() {
				return resultErr(result)
			}

			out := cmd.OutOrStdout()
			dep := result.Resolved.Get(name)
			fmt.Fprintf(out, "upgraded %s to %s\n", name, short(dep.Commit))
			for _, id := range result.Applied {
				fmt.Fprintf(out, "applied %s\n", id)
			}
			return nil
		},
	}
	cmd.Flags().Duration("timeout", 10*time.Minute, "Per-command timeout for migrations and verifications")
	cmd.Flags().Bool("commit", false, "Record a git commit in the consuming repository on success")
	return cmd
}
