package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	baseURL  string
	timezone string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "invitectl",
		Short: "Offline tooling for invitation records",
		Long: `Prepares invitation records exactly as the API serves them, renders guest
pages and builds sitemaps from exported record files.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "public site base URL (overrides GINVITE_SITE_BASE_URL)")
	root.PersistentFlags().StringVar(&opts.timezone, "timezone", "", "zone used for event instants (overrides GINVITE_SITE_TIMEZONE)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides GINVITE_LOG_LEVEL)")

	root.AddCommand(newPrepareCmd(opts))
	root.AddCommand(newSitemapCmd(opts))
	root.AddCommand(newThemesCmd())
	return root
}
