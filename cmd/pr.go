package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmcampanini/bb-cli/internal/bitbucket"
	"github.com/jmcampanini/bb-cli/internal/remote"
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Work with pull requests",
	Long: `List, view, diff, comment on and review pull requests.

Commands that take an optional pull request id use the open pull request
for the current branch when the id is omitted.`,
}

func init() {
	rootCmd.AddCommand(prCmd)
}

// parsePRID parses a pull request id argument.
func parsePRID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid pull request id: %s", arg)
	}
	return id, nil
}

// resolvePRID returns id when set, otherwise the open pull request whose
// source branch is the current branch.
func resolvePRID(ctx context.Context, app *appContext, client bitbucket.Bitbucket, repo remote.Coordinates, id int) (int, error) {
	if id > 0 {
		return id, nil
	}

	branch, err := app.currentBranch()
	if err != nil {
		return 0, err
	}

	pr, err := client.FindPullRequestByBranch(ctx, repo, branch)
	if err != nil {
		return 0, err
	}
	if pr == nil {
		return 0, fmt.Errorf("no open pull request found for branch %q", branch)
	}
	app.log.Debug("Using pull request for current branch", "branch", branch, "id", pr.ID)
	return pr.ID, nil
}

// getPullRequest fetches a pull request, naming the id and repository when
// it does not exist.
func getPullRequest(ctx context.Context, client bitbucket.Bitbucket, repo remote.Coordinates, id int) (bitbucket.PullRequest, error) {
	pr, err := client.GetPullRequest(ctx, repo, id)
	if bitbucket.IsNotFound(err) {
		return bitbucket.PullRequest{}, fmt.Errorf("pull request #%d not found in %s: %w", id, repo, err)
	}
	return pr, err
}

// optionalPRID parses the first argument if present.
func optionalPRID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	return parsePRID(args[0])
}

// truncateString truncates a string to maxLen characters, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
