package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newPeersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "peers <file> <line>",
		Short: "Print the locations overriding or overridden by the method on a line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil || line < 1 {
				return zerr.Wrap(domain.ErrInvalidLine, "invalid line "+strconv.Quote(args[1]))
			}

			peers, err := c.app.Peers(cmd.Context(), c.root, args[0], line)
			if err != nil {
				return err
			}
			if c.jsonOut {
				if peers == nil {
					peers = []domain.Location{}
				}
				return writeJSON(cmd.OutOrStdout(), peers)
			}
			for _, p := range peers {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s:%d\n", p.FilePath, p.Line)
			}
			return nil
		},
	}
}
