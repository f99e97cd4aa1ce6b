package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmcampanini/bb-cli/internal/bitbucket"
)

var prCommentsLimitFlag int

var prCommentsCmd = &cobra.Command{
	Use:   "comments [id]",
	Short: "List comments on a pull request",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPRComments,
}

func init() {
	prCommentsCmd.Flags().IntVarP(&prCommentsLimitFlag, "limit", "L", 0, "Maximum number of comments to fetch (0 for all)")
	prCmd.AddCommand(prCommentsCmd)
}

func runPRComments(cmd *cobra.Command, args []string) error {
	id, err := optionalPRID(args)
	if err != nil {
		return err
	}
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	return runPRCommentsWithApp(cmd, app, id)
}

func runPRCommentsWithApp(cmd *cobra.Command, app *appContext, id int) error {
	ctx := commandContext(cmd)

	repo, err := app.resolved.Require()
	if err != nil {
		return err
	}
	client, err := app.Client()
	if err != nil {
		return err
	}

	id, err = resolvePRID(ctx, app, client, repo, id)
	if err != nil {
		return err
	}

	comments, err := client.ListPullRequestComments(ctx, repo, id, prCommentsLimitFlag)
	if err != nil {
		return err
	}

	if ok, err := app.structured(comments); ok {
		return err
	}

	if len(comments) == 0 {
		app.printer.Info("No comments found for PR #%d", id)
		return nil
	}

	return app.pager.Page(formatComments(lipgloss.NewRenderer(cmd.OutOrStdout()), comments))
}

// formatComments renders comments oldest first, skipping deleted ones.
func formatComments(r *lipgloss.Renderer, comments []bitbucket.Comment) string {
	var sb strings.Builder

	author := r.NewStyle().Bold(true)
	meta := r.NewStyle().Foreground(lipgloss.Color("245"))
	location := r.NewStyle().Foreground(lipgloss.Color("6"))

	shown := 0
	for _, c := range comments {
		if c.Deleted {
			continue
		}
		if shown > 0 {
			sb.WriteString("\n")
		}
		shown++

		sb.WriteString(author.Render(c.User.Name()))
		sb.WriteString(" ")
		sb.WriteString(meta.Render(humanize.Time(c.CreatedOn)))
		if c.Inline != nil {
			loc := c.Inline.Path
			if line, ok := c.Inline.Line(); ok {
				loc = fmt.Sprintf("%s:%d", loc, line)
			}
			sb.WriteString(" ")
			sb.WriteString(location.Render(loc))
		}
		sb.WriteString("\n")

		for _, line := range strings.Split(strings.TrimRight(c.Content.Raw, "\n"), "\n") {
			sb.WriteString("  ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
