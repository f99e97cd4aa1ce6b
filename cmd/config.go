package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jmcampanini/bb-cli/internal/config"
)

var configInitLocalFlag bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write configuration",
	Long: `Read and write bb configuration.

Global settings live in config.toml under the user config directory
(override with BB_CONFIG_DIR). Keys are:

  default_profile
  profile.<name>.{api_url,output_format,remote,repository,user,workspace}

A bare field name such as "workspace" refers to the active profile, and
"profile" refers to default_profile.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:     "set <key> <value>",
	Short:   "Set a configuration value",
	Example: "  bb config set workspace acme\n  bb config set profile.work.api_url https://api.bitbucket.org/2.0",
	Args:    cobra.ExactArgs(2),
	RunE:    runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration interactively",
	Long: `Create a configuration interactively.

Without --local, the answers are written to a profile in the global config
and that profile becomes the default. With --local, a .bb-cli file pinning
the workspace, repository and remote is written to the repository root
(or the current directory outside a repository).`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitLocalFlag, "local", false, "Write a .bb-cli file for this checkout")
	configCmd.AddCommand(configGetCmd, configSetCmd, configListCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	return runConfigGetWithApp(cmd, app, args[0])
}

func runConfigGetWithApp(cmd *cobra.Command, app *appContext, key string) error {
	key = config.ExpandKey(key, app.resolved.ProfileName)
	value, ok, err := app.store.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not set", key)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	return runConfigSetWithApp(app, args[0], args[1])
}

func runConfigSetWithApp(app *appContext, key, value string) error {
	key = config.ExpandKey(key, app.resolved.ProfileName)
	if err := app.store.Set(key, value); err != nil {
		return err
	}
	app.printer.Success("Set %s = %s", key, value)
	return nil
}

// configEntry is one line of `config list`.
type configEntry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	return runConfigListWithApp(cmd, app)
}

func runConfigListWithApp(cmd *cobra.Command, app *appContext) error {
	r := app.resolved
	entries := []configEntry{
		{"config_file", app.store.GlobalPath()},
		{"profile", r.ProfileName},
		{"profiles", strings.Join(app.global.ProfileNames(), ",")},
		{"user", r.User},
		{"workspace", r.Workspace},
		{"repository", r.Repository},
		{"remote", r.RemoteName},
		{"api_url", r.APIURL},
		{"output_format", r.OutputFormat},
	}

	if ok, err := app.structured(entries); ok {
		return err
	}

	keyStyle := lipgloss.NewRenderer(cmd.OutOrStdout()).NewStyle().Foreground(lipgloss.Color("99")).Width(14)
	for _, e := range entries {
		if e.Value == "" {
			continue
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", keyStyle.Render(e.Key), e.Value); err != nil {
			return err
		}
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	if configInitLocalFlag {
		return runConfigInitLocalWithApp(app)
	}
	return runConfigInitGlobalWithApp(app)
}

func runConfigInitLocalWithApp(app *appContext) error {
	workspace, err := app.prompter.Input("Workspace", app.resolved.Workspace)
	if err != nil {
		return err
	}
	repository, err := app.prompter.Input("Repository", app.resolved.Repository)
	if err != nil {
		return err
	}
	remoteName, err := app.prompter.Input("Remote", app.resolved.RemoteName)
	if err != nil {
		return err
	}

	dir := app.repoRoot
	if dir == "" {
		dir = app.cwd
	}

	path, err := app.store.InitLocal(dir, config.ProjectConfig{
		Remote:     remoteName,
		Repository: repository,
		Workspace:  workspace,
	})
	if err != nil {
		return err
	}
	app.printer.Success("Local configuration written to %s", path)
	return nil
}

func runConfigInitGlobalWithApp(app *appContext) error {
	profile, err := app.prompter.Input("Profile name", app.resolved.ProfileName)
	if err != nil {
		return err
	}
	existing, exists := app.global.Profiles[profile]
	if exists {
		update, err := app.prompter.Confirm(fmt.Sprintf("Profile %q already exists. Update it?", profile), true)
		if err != nil {
			return err
		}
		if !update {
			app.printer.Info("Left profile %s unchanged", profile)
			return nil
		}
	}

	workspace, err := app.prompter.Input("Workspace (e.g. myworkspace)", existing.Workspace)
	if err != nil {
		return err
	}
	user, err := app.prompter.Input("Bitbucket username (optional)", existing.User)
	if err != nil {
		return err
	}
	remoteName, err := app.prompter.Input("Default remote", firstNonEmptyString(existing.Remote, config.DefaultRemote))
	if err != nil {
		return err
	}

	settings := []configEntry{
		{"default_profile", profile},
		{"profile." + profile + ".workspace", workspace},
		{"profile." + profile + ".user", user},
		{"profile." + profile + ".remote", remoteName},
	}
	for _, s := range settings {
		if s.Value == "" {
			continue
		}
		if err := app.store.Set(s.Key, s.Value); err != nil {
			return err
		}
	}

	app.printer.Success("Configuration written to %s", app.store.GlobalPath())
	if user != "" {
		app.printer.Info("Run 'bb auth login' to store an app password for %s", user)
	}
	return nil
}

func firstNonEmptyString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
