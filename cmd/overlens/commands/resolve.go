package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/overlens/internal/app"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [files or directories...]",
		Short: "Print the override relations of files",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			results, err := c.app.Resolve(cmd.Context(), app.ResolveOptions{Root: c.root, Paths: args})
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			for _, r := range results {
				renderResult(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
}
