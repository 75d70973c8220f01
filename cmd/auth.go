package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mysticcoders/freshbooks-tools/internal/config"
	"github.com/mysticcoders/freshbooks-tools/internal/freshbooks"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage FreshBooks authorization",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize fb against your FreshBooks account",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is logged in and when the token expires",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove saved tokens and cached account info",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	tok, err := freshbooks.Login(cmd.Context(), creds)
	if err != nil {
		return err
	}

	// Verify the token and cache the account ids while we are at it.
	client := freshbooks.NewClient(cmd.Context(), tok, freshbooks.OAuthConfig(creds), logger)
	me, err := client.CurrentUser(cmd.Context())
	if err != nil {
		return fmt.Errorf("verifying new token: %w", err)
	}
	if _, _, err := client.EnsureAccountInfo(cmd.Context()); err != nil {
		logger.Warn("could not resolve account info", "err", err)
	}

	fmt.Printf("Logged in as %s.\n", me.DisplayName())
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	tok, err := config.LoadTokens()
	if err != nil {
		return err
	}
	if tok == nil {
		fmt.Println("Not authenticated. Run 'fb auth login' first.")
		return nil
	}

	switch {
	case tok.Expiry.IsZero():
		fmt.Println("Authenticated (token has no recorded expiry).")
	case tok.Valid():
		fmt.Printf("Authenticated. Access token expires %s.\n", tok.Expiry.Local().Format(time.RFC1123))
	default:
		fmt.Println("Access token expired; it will refresh on next use.")
	}

	client, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	me, err := client.CurrentUser(cmd.Context())
	if err != nil {
		return err
	}
	accountID, businessID, err := client.EnsureAccountInfo(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("User:     %s\n", me.DisplayName())
	fmt.Printf("Account:  %s\n", accountID)
	fmt.Printf("Business: %d\n", businessID)
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	if err := config.DeleteTokens(); err != nil {
		return err
	}
	if err := config.DeleteAccountInfo(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}
