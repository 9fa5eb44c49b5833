package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/leafwire/leafwire/internal/errors"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		errors.PrintError(errors.FromSession(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "leafwire",
		Short: "Read documents from a collaborative LaTeX server",
		Long: `leafwire joins a project on a collaborative LaTeX server over its
real-time socket protocol and reads documents the way the web editor does.

It needs the server URL and the session cookie of a logged-in browser,
taken from leafwire.json, LEAFWIRE_COOKIE or the flags below.

Examples:
  leafwire info 5f2a...
  leafwire cat 5f2a... chapters/intro.tex
  leafwire export 5f2a... --dir thesis`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to leafwire.json (default ./leafwire.json if present)")
	flags.StringVar(&opts.server, "server", "", "Server base URL")
	flags.StringVar(&opts.cookie, "cookie", "", "Session cookie header value")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")

	rootCmd.AddCommand(
		infoCmd(opts),
		catCmd(opts),
		exportCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
