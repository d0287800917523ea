package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [file]",
		Short: "Drop cached results for a file and its dependents, or the whole index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}

			evicted, err := c.app.Clear(cmd.Context(), c.root, file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.jsonOut {
				if evicted == nil {
					evicted = []string{}
				}
				return writeJSON(out, map[string]any{"all": file == "", "evicted": evicted})
			}
			if file == "" {
				_, _ = fmt.Fprintln(out, "Cleared the index")
				return nil
			}
			_, _ = fmt.Fprintf(out, "Evicted %d file(s)\n", len(evicted))
			for _, path := range evicted {
				_, _ = fmt.Fprintln(out, "  "+path)
			}
			return nil
		},
	}
}
