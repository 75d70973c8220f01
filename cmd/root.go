package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mysticcoders/freshbooks-tools/internal/config"
	"github.com/mysticcoders/freshbooks-tools/internal/freshbooks"
	"github.com/mysticcoders/freshbooks-tools/internal/identity"
	"github.com/mysticcoders/freshbooks-tools/internal/rates"
)

var verbose bool

// logger is shared by every command. Warnings and up by default so
// tables stay clean; --verbose raises it to debug.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "fb",
	Level:           log.WarnLevel,
})

var rootCmd = &cobra.Command{
	Use:   "fb",
	Short: "FreshBooks command-line client for consulting teams",
	Long: `fb is a command-line client for the FreshBooks APIs: team time
tracking with billable and cost rates, invoices, expenses, and
receivables reporting.

Credentials come from FRESHBOOKS_CLIENT_ID and FRESHBOOKS_CLIENT_SECRET
(a .env file in the working directory is read if present). Run
'fb auth login' once to authorize.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(timeCmd)
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(expensesCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(ratesInitCmd)
}

// newClient builds an authenticated API client from saved credentials
// and tokens.
func newClient(ctx context.Context) (*freshbooks.Client, error) {
	return freshbooks.NewFromSaved(ctx, logger)
}

// newResolvers wires the identity and rate resolvers over one client.
func newResolvers(client *freshbooks.Client) (*identity.Resolver, *rates.Resolver, error) {
	cfg, err := config.LoadRates()
	if err != nil {
		return nil, nil, err
	}
	ident := identity.NewResolver(client, logger)
	return ident, rates.NewResolver(client, ident, cfg, logger), nil
}

// jsonIndent marshals v as indented JSON with a trailing newline.
func jsonIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}
	return append(data, '\n'), nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	data, err := jsonIndent(v)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
