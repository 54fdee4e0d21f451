// Package cli implements the outdated command-line interface.
//
// The command checks the declared dependencies of a project against the npm
// registry and reports which installed versions differ from the wanted and
// latest versions. Logging goes to stderr via charmbracelet/log; the report
// goes to stdout.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/git-pkgs/outdated"
	"github.com/git-pkgs/outdated/client"
)

// ErrOutdated signals that at least one dependency is outdated. The report
// has already been written; main maps this to exit status 1 without printing
// an error.
var ErrOutdated = errors.New("outdated packages found")

var version = "dev"

// SetVersion sets the version string displayed by --version, typically
// injected via ldflags at build time.
func SetVersion(v string) {
	version = v
}

// defaultGlobalPrefix is where global installs live when no prefix is
// configured.
const defaultGlobalPrefix = "/usr/local"

type options struct {
	global    bool
	json      bool
	parseable bool
	long      bool
	color     bool
	workers   int
	registry  string
	prefix    string
}

// Execute runs the outdated CLI and returns an error if the check fails or
// finds outdated packages.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	cfg := loadConfig()

	var verbose bool
	opts := options{
		color:    cfg.Color,
		workers:  cfg.Workers,
		registry: cfg.Registry,
		prefix:   cfg.Prefix,
	}

	cmd := &cobra.Command{
		Use:           "outdated [package...]",
		Short:         "Check for outdated npm dependencies",
		Long:          `Outdated compares the installed versions of a project's dependencies against the versions satisfying their declared ranges and the latest published versions, and reports every discrepancy.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.WarnLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	cmd.Flags().BoolVarP(&opts.global, "global", "g", false, "check the global install location")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output a JSON object")
	cmd.Flags().BoolVar(&opts.parseable, "parseable", false, "output colon-delimited lines")
	cmd.Flags().BoolVarP(&opts.long, "long", "l", false, "show package type and homepage")
	cmd.Flags().BoolVar(&opts.color, "color", opts.color, "enable colored table output")
	cmd.Flags().IntVar(&opts.workers, "workers", opts.workers, "maximum concurrent registry requests")
	cmd.Flags().StringVar(&opts.registry, "registry", opts.registry, "registry base URL")
	cmd.Flags().StringVar(&opts.prefix, "prefix", opts.prefix, "project directory to inspect")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts options) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	dir := opts.prefix
	if dir == "" {
		dir = "."
	}
	if opts.global {
		prefix := opts.prefix
		if prefix == "" {
			prefix = defaultGlobalPrefix
		}
		dir = filepath.Join(prefix, "lib")
	}

	logger.Debug("loading installed tree", "dir", dir)
	tree, err := outdated.LoadTree(dir)
	if err != nil {
		return err
	}

	registry := outdated.NewRegistry(opts.registry, client.NewBreaker(client.NewClient(
		client.WithUserAgent("outdated/"+version),
	)))

	checkOpts := outdated.Options{
		Names:     args,
		Global:    opts.global,
		JSON:      opts.json,
		Parseable: opts.parseable,
		Long:      opts.long,
		Color:     opts.color,
		Workers:   opts.workers,
		Logger:    logger,
	}
	if opts.global && tree.Name == "" {
		checkOpts.Location = "global"
	}

	records, err := outdated.CheckTree(ctx, tree, registry, checkOpts)
	if err != nil {
		return err
	}

	if out := outdated.Render(records, checkOpts); out != "" {
		fmt.Fprint(cmd.OutOrStdout(), out)
	}

	if outdated.ExitStatus(records) != 0 {
		return ErrOutdated
	}
	return nil
}

// newLogger creates a logger with timestamp formatting that writes to w and
// filters messages at the specified level.
func newLogger(w io.Writer, level charmlog.Level) *charmlog.Logger {
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *charmlog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to a silent
// logger so library paths never log unasked.
func loggerFromContext(ctx context.Context) *charmlog.Logger {
	if l, ok := ctx.Value(loggerKey).(*charmlog.Logger); ok {
		return l
	}
	return charmlog.New(io.Discard)
}
