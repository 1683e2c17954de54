// Package cli implements shopctl, the storefront's command line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	APIURL      string
	StorePath   string // sqlite file; empty keeps state in memory for one run
	Timeout     time.Duration
	RabbitMQURL string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for shopctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopctl",
		Short: "shopctl - storefront from the terminal",
		Long: `Browse the catalog, keep a cart and place orders against the storefront API.

The cart and the admin login are kept in a local SQLite file (--store), so
they survive between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api", getenv("STOREFRONT_API_URL", "http://localhost:8080/api"), "storefront API base URL")
	cmd.PersistentFlags().StringVar(&opts.StorePath, "store", getenv("SHOPCTL_STORE", "shopctl.db"), "local state file")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "API request timeout")
	cmd.PersistentFlags().StringVar(&opts.RabbitMQURL, "rabbitmq-url", os.Getenv("RABBITMQ_URL"), "publish OrderPlaced events to this broker")

	cmd.AddCommand(NewCategoriesCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewAdminCommand(opts))

	return cmd
}

// Execute runs shopctl with args and returns the process exit code. Errors
// are reported through the formatter selected by --format.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	f := &OutputFormatter{Format: opts.Format, Writer: stdout, ErrWriter: stderr, Verbose: opts.Verbose}
	if !isValidFormat(f.Format) {
		f.Format = "text"
	}
	exit, code, message, details := classify(err)
	_ = f.Error(code, message, details)
	return exit
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

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(k, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
