package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmcampanini/bb-cli/internal/bitbucket"
)

var (
	prViewCommentsFlag bool
	prViewWebFlag      bool
)

var prViewCmd = &cobra.Command{
	Use:   "view [id]",
	Short: "Show pull request details",
	Long: `Show a pull request's metadata, approvals, build statuses and description.

With --comments, the pull request's comments are listed as well.
With --web, the pull request is opened in the browser instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPRView,
}

func init() {
	prViewCmd.Flags().BoolVarP(&prViewWebFlag, "web", "w", false, "Open the pull request in the browser")
	prViewCmd.Flags().BoolVarP(&prViewCommentsFlag, "comments", "c", false, "Include comments")
	prCmd.AddCommand(prViewCmd)
}

// prView is the structured form of `pr view`.
type prView struct {
	Comments    []bitbucket.Comment      `json:"comments,omitempty" yaml:"comments,omitempty"`
	PullRequest bitbucket.PullRequest    `json:"pull_request" yaml:"pull_request"`
	Statuses    []bitbucket.CommitStatus `json:"statuses" yaml:"statuses"`
}

func runPRView(cmd *cobra.Command, args []string) error {
	id, err := optionalPRID(args)
	if err != nil {
		return err
	}
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	return runPRViewWithApp(cmd, app, id)
}

func runPRViewWithApp(cmd *cobra.Command, app *appContext, id int) error {
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

	pr, err := getPullRequest(ctx, client, repo, id)
	if err != nil {
		return err
	}

	if prViewWebFlag {
		if err := app.openURL(pr.Links.HTML.Href); err != nil {
			return fmt.Errorf("failed to open browser: %w", err)
		}
		app.printer.Success("Opened PR #%d in browser", id)
		return nil
	}

	view := prView{PullRequest: pr}

	if hash := pr.Source.Commit.Hash; hash != "" {
		view.Statuses, err = client.ListCommitStatuses(ctx, repo, hash, 0)
		if err != nil {
			app.printer.Warning("Could not load build statuses: %v", err)
		}
	}

	if prViewCommentsFlag {
		view.Comments, err = client.ListPullRequestComments(ctx, repo, id, 0)
		if err != nil {
			return err
		}
	}

	if ok, err := app.structured(view); ok {
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), formatPRView(lipgloss.NewRenderer(cmd.OutOrStdout()), view))
	return err
}

// formatPRView renders the human-readable form of a pull request.
func formatPRView(r *lipgloss.Renderer, view prView) string {
	pr := view.PullRequest
	var sb strings.Builder

	title := r.NewStyle().Bold(true)
	label := r.NewStyle().Foreground(lipgloss.Color("245"))
	green := r.NewStyle().Foreground(lipgloss.Color("2"))
	red := r.NewStyle().Foreground(lipgloss.Color("1"))
	yellow := r.NewStyle().Foreground(lipgloss.Color("3"))

	// Header
	sb.WriteString(title.Render(fmt.Sprintf("#%d %s", pr.ID, pr.Title)))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", 29)) // horizontal line
	sb.WriteString("\n")

	// Metadata
	sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("State:  "), strings.ToLower(pr.State.String())))
	sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("Author: "), pr.Author.Name()))
	sb.WriteString(fmt.Sprintf("%s %s → %s\n", label.Render("Branch: "), pr.SourceBranch(), pr.DestinationBranch()))
	sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("Created:"), humanize.Time(pr.CreatedOn)))
	sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("Updated:"), humanize.Time(pr.UpdatedOn)))
	if pr.Links.HTML.Href != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("URL:    "), pr.Links.HTML.Href))
	}

	// Reviews
	sb.WriteString("\n")
	approvers := pr.Approvers()
	sb.WriteString(fmt.Sprintf("Approvals (%d):\n", len(approvers)))
	for _, u := range approvers {
		sb.WriteString(fmt.Sprintf("  %s %s\n", green.Render("✓"), u.Name()))
	}
	for _, u := range pr.ChangesRequestedBy() {
		sb.WriteString(fmt.Sprintf("  %s %s requested changes\n", red.Render("✗"), u.Name()))
	}

	// Builds
	if len(view.Statuses) > 0 {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Builds (%d):\n", len(view.Statuses)))
		for _, s := range view.Statuses {
			var marker string
			switch s.State {
			case "SUCCESSFUL":
				marker = green.Render("✓")
			case "FAILED", "STOPPED":
				marker = red.Render("✗")
			default:
				marker = yellow.Render("●")
			}
			name := s.Name
			if name == "" {
				name = s.Key
			}
			sb.WriteString(fmt.Sprintf("  %s %s (%s)\n", marker, name, strings.ToLower(s.State)))
		}
	}

	// Body
	if desc := strings.TrimSpace(pr.Description); desc != "" {
		sb.WriteString("\n")
		sb.WriteString(desc)
		sb.WriteString("\n")
	}

	if len(view.Comments) > 0 {
		sb.WriteString("\n")
		sb.WriteString(formatComments(r, view.Comments))
	}

	return sb.String()
}
