package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/jmcampanini/bb-cli/internal/auth"
	"github.com/jmcampanini/bb-cli/internal/bitbucket"
	"github.com/jmcampanini/bb-cli/internal/config"
	"github.com/jmcampanini/bb-cli/internal/git"
	"github.com/jmcampanini/bb-cli/internal/resolve"
	"github.com/jmcampanini/bb-cli/internal/terminal"
)

const gitTimeout = 10 * time.Second

// appDeps holds injectable dependencies for testing.
type appDeps struct {
	credentials auth.Store
	cwd         string
	git         git.Git
	in          io.Reader
	newClient   clientFactory
	openURL     func(string) error
	store       *config.Store
}

// clientFactory creates an API client for a base URL and credentials.
type clientFactory func(apiURL, username, secret string) bitbucket.Bitbucket

// appContext is built once per command from the flags, config files,
// git checkout and keyring.
type appContext struct {
	credentials auth.Store
	cwd         string
	format      terminal.Format
	git         git.Git
	global      config.GlobalConfig
	log         *clog.Logger
	newClient   clientFactory
	openURL     func(string) error
	out         io.Writer
	pager       *terminal.Pager
	printer     *terminal.Printer
	prompter    *terminal.Prompter
	repoRoot    string
	resolved    resolve.Context
	store       *config.Store

	client bitbucket.Bitbucket
}

// newLogger maps --verbose and --quiet onto a log level.
func newLogger(w io.Writer) *clog.Logger {
	level := clog.WarnLevel
	switch {
	case verboseFlag:
		level = clog.DebugLevel
	case quietFlag:
		level = clog.ErrorLevel
	}
	return clog.NewWithOptions(w, clog.Options{Level: level})
}

// newAppContext initializes the context from deps (for testing) or from environment.
func newAppContext(cmd *cobra.Command, deps *appDeps) (*appContext, error) {
	logger := newLogger(cmd.ErrOrStderr())

	if deps == nil {
		var err error
		deps, err = defaultDeps(logger)
		if err != nil {
			return nil, err
		}
	}

	app := &appContext{
		credentials: deps.credentials,
		cwd:         deps.cwd,
		git:         deps.git,
		log:         logger,
		newClient:   deps.newClient,
		openURL:     deps.openURL,
		out:         cmd.OutOrStdout(),
		pager:       terminal.NewPager(logger, cmd.OutOrStdout(), cmd.ErrOrStderr()),
		printer:     terminal.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		prompter:    terminal.NewPrompter(deps.in, cmd.ErrOrStderr()),
		store:       deps.store,
	}
	if app.openURL == nil {
		app.openURL = browser.OpenURL
	}
	if app.newClient == nil {
		app.newClient = func(apiURL, username, secret string) bitbucket.Bitbucket {
			return bitbucket.New(logger, apiURL, username, secret)
		}
	}

	global, err := app.store.LoadGlobal()
	if err != nil {
		app.printer.Warning("Failed to load global config: %v", err)
	}
	app.global = global

	if app.git != nil {
		root, err := app.git.GetWorktreeRoot()
		if err != nil {
			logger.Debug("Could not detect repository root", "error", err)
		}
		app.repoRoot = root
	}

	local, _, err := app.store.LoadLocal(app.cwd, app.repoRoot)
	if err != nil {
		app.printer.Warning("Failed to load local config: %v", err)
	}

	var lookup resolve.RemoteLookup
	if app.git != nil {
		lookup = app.git.GetRemoteURL
	}

	app.resolved, err = resolve.Resolve(resolve.Inputs{
		Credentials:  app.credentials,
		Global:       app.global,
		Local:        local,
		Logger:       logger,
		LookupRemote: lookup,
		Overrides: resolve.Overrides{
			Profile: profileFlag,
			Remote:  remoteFlag,
			Repo:    repoFlag,
		},
		RepoRoot: app.repoRoot,
	})
	if err != nil {
		return nil, err
	}

	app.format = terminal.FormatJSON
	if !jsonFlag {
		app.format, err = terminal.ParseFormat(app.resolved.OutputFormat)
		if err != nil {
			app.printer.Warning("%v, using table output", err)
			app.format = terminal.FormatTable
		}
	}

	return app, nil
}

func defaultDeps(logger *clog.Logger) (*appDeps, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	store, err := config.NewDefaultStore(logger)
	if err != nil {
		return nil, err
	}

	return &appDeps{
		credentials: auth.NewKeyringStore(config.AppName),
		cwd:         cwd,
		git:         git.New(logger, cwd, gitTimeout),
		in:          os.Stdin,
		store:       store,
	}, nil
}

// Client returns an authenticated API client, failing with
// auth.ErrNoCredentials when no login is stored for the active profile.
func (a *appContext) Client() (bitbucket.Bitbucket, error) {
	if a.client != nil {
		return a.client, nil
	}
	user, secret, err := a.resolved.Credentials()
	if err != nil {
		return nil, fmt.Errorf("%w (run 'bb auth login')", err)
	}
	a.client = a.newClient(a.resolved.APIURL, user, secret)
	return a.client, nil
}

// structured writes v in the selected structured format and reports
// whether it did so.
func (a *appContext) structured(v any) (bool, error) {
	if !a.format.IsStructured() {
		return false, nil
	}
	return true, terminal.WriteStructured(a.out, a.format, v)
}

// currentBranch returns the checked-out branch or an error explaining why
// it is needed.
func (a *appContext) currentBranch() (string, error) {
	if a.git == nil || a.repoRoot == "" {
		return "", errors.New("no pull request id given and not inside a git repository")
	}
	branch, err := a.git.GetCurrentBranch()
	if err != nil {
		return "", err
	}
	if branch == "" || branch == "HEAD" {
		return "", errors.New("no pull request id given and HEAD is detached")
	}
	return branch, nil
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
