// Package commands implements the CLI commands for overlens.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/overlens/internal/app"
	"go.trai.ch/overlens/internal/build"
	"go.trai.ch/overlens/internal/core/domain"
)

// CLI represents the command line interface for overlens.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	root     string
	jsonOut  bool
	verbose  bool
	jsonLogs bool
}

// Application represents the application logic interface.
type Application interface {
	ConfigureLogging(verbose, jsonLogs bool)
	Resolve(ctx context.Context, opts app.ResolveOptions) ([]app.Result, error)
	Peers(ctx context.Context, root, file string, line int) ([]domain.Location, error)
	Clear(ctx context.Context, root, file string) ([]string, error)
	Status(ctx context.Context, root string, probe bool) (*app.StatusReport, error)
	Watch(ctx context.Context, opts app.WatchOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "overlens",
		Short:         "Index method override relationships between classes",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.root, "root", "C", ".", "Project directory to search for "+domain.ConfigFileName)
	flags.BoolVar(&c.jsonOut, "json", false, "Write results as JSON")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&c.jsonLogs, "json-logs", false, "Write logs as JSON")

	rootCmd.PersistentPreRun = func(*cobra.Command, []string) {
		c.app.ConfigureLogging(c.verbose, c.jsonLogs)
	}

	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newPeersCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newClearCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
