package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmcampanini/bb-cli/internal/bitbucket"
)

const defaultRepoListLimit = 100

var (
	repoListLimitFlag     int
	repoListWorkspaceFlag string
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Work with repositories",
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List repositories in a workspace",
	Long: `List repositories in a workspace.

The workspace defaults to the one resolved for the current directory or
the active profile.`,
	Args: cobra.NoArgs,
	RunE: runRepoList,
}

func init() {
	repoListCmd.Flags().StringVarP(&repoListWorkspaceFlag, "workspace", "w", "", "Workspace to list (default: resolved workspace)")
	repoListCmd.Flags().IntVarP(&repoListLimitFlag, "limit", "L", defaultRepoListLimit, "Maximum number of repositories to fetch (0 for all)")
	repoCmd.AddCommand(repoListCmd)
	rootCmd.AddCommand(repoCmd)
}

func runRepoList(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	return runRepoListWithApp(cmd, app)
}

func runRepoListWithApp(cmd *cobra.Command, app *appContext) error {
	workspace := repoListWorkspaceFlag
	if workspace == "" {
		var err error
		workspace, err = app.resolved.RequireWorkspace()
		if err != nil {
			return err
		}
	}

	client, err := app.Client()
	if err != nil {
		return err
	}

	repos, err := client.ListRepositories(commandContext(cmd), workspace, repoListLimitFlag)
	if err != nil {
		return err
	}

	if ok, err := app.structured(repos); ok {
		return err
	}
	return outputRepoListTable(cmd, workspace, repos)
}

// outputRepoListTable renders a lipgloss table to stdout.
func outputRepoListTable(cmd *cobra.Command, workspace string, repos []bitbucket.Repository) error {
	if len(repos) == 0 {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "No repositories found in %s.\n", workspace)
		return err
	}

	r := lipgloss.NewRenderer(cmd.OutOrStdout())
	purple := lipgloss.Color("99")
	headerStyle := r.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
	cellStyle := r.NewStyle().Padding(0, 1)

	rows := make([][]string, len(repos))
	for i, repo := range repos {
		visibility := "public"
		if repo.IsPrivate {
			visibility = "private"
		}
		updated := ""
		if !repo.UpdatedOn.IsZero() {
			updated = humanize.Time(repo.UpdatedOn)
		}
		rows[i] = []string{
			repo.Name,
			truncateString(repo.Description, 50),
			visibility,
			repo.Language,
			updated,
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Name", "Description", "Visibility", "Language", "Updated").
		Rows(rows...)

	_, err := fmt.Fprintln(cmd.OutOrStdout(), t)
	return err
}
