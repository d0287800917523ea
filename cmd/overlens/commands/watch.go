package commands

import (
	"encoding/json"
	"sync"

	"github.com/spf13/cobra"
	"go.trai.ch/overlens/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the index fresh while files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scan, _ := cmd.Flags().GetBool("scan")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			var mu sync.Mutex

			return c.app.Watch(cmd.Context(), app.WatchOptions{
				Root:        c.root,
				Scan:        scan,
				MetricsAddr: metricsAddr,
				OnResolved: func(r app.Result) {
					mu.Lock()
					defer mu.Unlock()
					if c.jsonOut {
						_ = enc.Encode(r)
						return
					}
					renderResult(out, r)
				},
			})
		},
	}
	cmd.Flags().Bool("scan", false, "Analyze every watched file on startup")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	return cmd
}
