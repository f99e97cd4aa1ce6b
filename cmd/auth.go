package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmcampanini/bb-cli/internal/auth"
	"github.com/jmcampanini/bb-cli/internal/bitbucket"
	"github.com/jmcampanini/bb-cli/internal/config"
)

var authUsernameFlag string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Bitbucket credentials",
	Long: `Manage Bitbucket credentials.

App passwords are kept in the system keyring, keyed by username. The
username itself is stored on the active profile.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with a Bitbucket username and app password",
	Long: `Log in with a Bitbucket username and app password.

The credentials are checked against the API before anything is saved.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored app password",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured user and check the stored credentials",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authLoginCmd.Flags().StringVarP(&authUsernameFlag, "username", "u", "", "Bitbucket username (default: the profile's user)")
	authLogoutCmd.Flags().StringVarP(&authUsernameFlag, "username", "u", "", "Bitbucket username (default: the profile's user)")
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	return runAuthLoginWithApp(cmd, app)
}

func runAuthLoginWithApp(cmd *cobra.Command, app *appContext) error {
	username := strings.TrimSpace(authUsernameFlag)
	if username == "" {
		var err error
		username, err = app.prompter.Input("Bitbucket username", app.resolved.User)
		if err != nil {
			return err
		}
	}

	secret, err := app.prompter.Password("App password")
	if err != nil {
		return err
	}

	verify := func(ctx context.Context, username, secret string) (string, error) {
		user, err := app.newClient(app.resolved.APIURL, username, secret).GetCurrentUser(ctx)
		if err != nil {
			return "", err
		}
		return user.Name(), nil
	}

	displayName, err := auth.Login(commandContext(cmd), verify, app.credentials, username, secret)
	if err != nil {
		return err
	}

	if username != app.resolved.User {
		key := config.ExpandKey("user", app.resolved.ProfileName)
		if err := app.store.Set(key, username); err != nil {
			return fmt.Errorf("logged in, but failed to save username to config: %w", err)
		}
		app.log.Debug("Saved username to profile", "key", key)
	}

	app.printer.Success("Logged in as %s (%s)", displayName, username)
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	return runAuthLogoutWithApp(app)
}

func runAuthLogoutWithApp(app *appContext) error {
	username := strings.TrimSpace(authUsernameFlag)
	if username == "" {
		username = app.resolved.User
	}
	if username == "" {
		return fmt.Errorf("%w: no user configured on profile %q", auth.ErrNoCredentials, app.resolved.ProfileName)
	}

	if err := app.credentials.Delete(username); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			app.printer.Info("No stored credentials for %s", username)
			return nil
		}
		return err
	}

	app.printer.Success("Logged out %s", username)
	return nil
}

// authStatus is the structured form of `auth status`.
type authStatus struct {
	APIURL      string `json:"api_url" yaml:"api_url"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
	Profile     string `json:"profile" yaml:"profile"`
	Stored      bool   `json:"stored" yaml:"stored"`
	User        string `json:"user,omitempty" yaml:"user,omitempty"`
	Valid       bool   `json:"valid" yaml:"valid"`
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	return runAuthStatusWithApp(cmd, app)
}

func runAuthStatusWithApp(cmd *cobra.Command, app *appContext) error {
	status := authStatus{
		APIURL:  app.resolved.APIURL,
		Profile: app.resolved.ProfileName,
		Stored:  app.resolved.HasCredentials(),
		User:    app.resolved.User,
	}

	if status.Stored {
		client, err := app.Client()
		if err != nil {
			return err
		}
		user, err := client.GetCurrentUser(commandContext(cmd))
		switch {
		case err == nil:
			status.Valid = true
			status.DisplayName = user.Name()
		case bitbucket.IsUnauthorized(err):
			status.Error = "stored credentials were rejected"
		default:
			status.Error = err.Error()
		}
	}

	if ok, err := app.structured(status); ok {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Profile:  %s\n", status.Profile)
	_, _ = fmt.Fprintf(out, "API:      %s\n", status.APIURL)
	if status.User == "" {
		_, _ = fmt.Fprintln(out, "User:     not configured")
		app.printer.Warning("Run 'bb auth login' to log in")
		return nil
	}
	_, _ = fmt.Fprintf(out, "User:     %s\n", status.User)
	if !status.Stored {
		_, _ = fmt.Fprintln(out, "Keyring:  no app password stored")
		app.printer.Warning("Run 'bb auth login' to log in")
		return nil
	}
	_, _ = fmt.Fprintln(out, "Keyring:  app password stored")

	if status.Valid {
		app.printer.Success("Logged in as %s", status.DisplayName)
		return nil
	}
	app.printer.Error("Credential check failed: %s", status.Error)
	return nil
}
