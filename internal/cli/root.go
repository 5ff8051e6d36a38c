// Package cli implements portfolioctl, an operator tool over the cached
// portfolio client.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-portfolio-client/config"
	"github.com/goliatone/go-portfolio-client/pkg/di"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	APIURL     string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ContainerFactory builds the container a command runs against.
type ContainerFactory func(ctx context.Context, opts *RootOptions) (*di.Container, error)

// DefaultContainerFactory loads the configuration named by the flags.
func DefaultContainerFactory(ctx context.Context, opts *RootOptions) (*di.Container, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.APIURL != "" {
		cfg.API.BaseURL = opts.APIURL
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	return di.NewContainer(ctx, *cfg)
}

// App is one invocation of the CLI.
type App struct {
	opts      *RootOptions
	factory   ContainerFactory
	root      *cobra.Command
	container *di.Container
}

// NewApp builds the command tree. A nil factory selects
// DefaultContainerFactory.
func NewApp(factory ContainerFactory) *App {
	if factory == nil {
		factory = DefaultContainerFactory
	}
	a := &App{opts: &RootOptions{}, factory: factory}
	a.root = a.newRootCommand()
	return a
}

// NewRootCommand creates the root command for portfolioctl.
func NewRootCommand() *cobra.Command {
	return NewApp(nil).Command()
}

func (a *App) Command() *cobra.Command { return a.root }

// Execute runs args and returns the process exit code. Errors are printed
// in the selected format.
func (a *App) Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a.root.SetArgs(args)
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)

	err := a.root.ExecuteContext(ctx)
	if a.container != nil {
		_ = a.container.Close()
		a.container = nil
	}
	if err == nil {
		return ExitSuccess
	}

	a.formatter(a.root).Error(err)
	return GetExitCode(err)
}

func (a *App) newRootCommand() *cobra.Command {
	opts := a.opts

	cmd := &cobra.Command{
		Use:           "portfolioctl",
		Short:         "Operate the portfolio API from the command line",
		Long:          "Query and edit portfolio content through the cached portfolio client.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to the YAML config file (default $PORTFOLIO_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "API base URL (overrides config and $PORTFOLIO_API_URL)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(a.newLoginCommand())
	cmd.AddCommand(a.newLogoutCommand())
	cmd.AddCommand(a.newStatusCommand())
	cmd.AddCommand(a.newSkillsCommand())
	cmd.AddCommand(a.newProjectsCommand())
	cmd.AddCommand(a.newBlogCommand())
	cmd.AddCommand(a.newUploadCommand())
	cmd.AddCommand(a.newCacheCommand())

	return cmd
}

// containerFor builds the container on first use within an invocation.
func (a *App) containerFor(cmd *cobra.Command) (*di.Container, error) {
	if a.container != nil {
		return a.container, nil
	}
	c, err := a.factory(cmd.Context(), a.opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "initialise client", err)
	}
	a.container = c
	return c, nil
}

func (a *App) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    a.opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   a.opts.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
