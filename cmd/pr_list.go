package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmcampanini/bb-cli/internal/bitbucket"
	"github.com/jmcampanini/bb-cli/internal/pr"
)

const defaultPRListLimit = 50

var (
	prListLimitFlag int
	prListStateFlag string
)

var prListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pull requests",
	Long: `List pull requests for the current repository.

By default, outputs a formatted table of open pull requests.

The "Local" column shows a checkmark when a local branch exists for the
pull request's source branch (or tracks it on the configured remote).`,
	Args: cobra.NoArgs,
	RunE: runPRList,
}

func init() {
	prListCmd.Flags().StringVarP(&prListStateFlag, "state", "s", string(bitbucket.PRStateOpen), "Filter by state: OPEN, MERGED, DECLINED or SUPERSEDED")
	prListCmd.Flags().IntVarP(&prListLimitFlag, "limit", "L", defaultPRListLimit, "Maximum number of pull requests to fetch (0 for all)")
	prCmd.AddCommand(prListCmd)
}

func runPRList(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	return runPRListWithApp(cmd, app)
}

func runPRListWithApp(cmd *cobra.Command, app *appContext) error {
	state, err := bitbucket.ParsePRState(prListStateFlag)
	if err != nil {
		return err
	}

	repo, err := app.resolved.Require()
	if err != nil {
		return err
	}

	client, err := app.Client()
	if err != nil {
		return err
	}

	prs, err := client.ListPullRequests(commandContext(cmd), repo, state, prListLimitFlag)
	if err != nil {
		return err
	}

	if ok, err := app.structured(prs); ok {
		return err
	}

	// Fetch local branches for matching; a failure only hides the Local column values.
	var matches []pr.BranchMatch
	matcher := pr.NewMatcher(app.resolved.RemoteName)
	if app.git != nil && app.repoRoot != "" {
		branches, err := app.git.ListLocalBranches()
		if err != nil {
			app.log.Debug("Could not list local branches", "error", err)
		}
		matches = matcher.Match(prs, branches)
	} else {
		matches = matcher.Match(prs, nil)
	}

	return outputPRListTable(cmd, state, matches)
}

// outputPRListTable renders a lipgloss table to stdout.
func outputPRListTable(cmd *cobra.Command, state bitbucket.PRState, matches []pr.BranchMatch) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "No %s pull requests found.\n", strings.ToLower(state.String()))
		return err
	}

	r := lipgloss.NewRenderer(cmd.OutOrStdout())

	// Define colors
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	// Define styles
	headerStyle := r.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
	cellStyle := r.NewStyle().Padding(0, 1)
	oddRowStyle := cellStyle.Foreground(gray)
	evenRowStyle := cellStyle.Foreground(lightGray)

	rows := make([][]string, len(matches))
	for i, match := range matches {
		localMarker := ""
		if match.IsCheckedOut {
			localMarker = "✓*" // checkmark, current branch
		} else if match.HasLocalBranch {
			localMarker = "✓" // checkmark
		}

		rows[i] = []string{
			fmt.Sprintf("%d", match.PR.ID),
			truncateString(match.PR.Title, 40),
			match.PR.Author.Name(),
			truncateString(match.PR.SourceBranch(), 30),
			strings.ToLower(match.PR.State.String()),
			localMarker,
			humanize.Time(match.PR.UpdatedOn),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers("#", "Title", "Author", "Branch", "State", "Local", "Updated").
		Rows(rows...)

	_, err := fmt.Fprintln(cmd.OutOrStdout(), t)
	return err
}
