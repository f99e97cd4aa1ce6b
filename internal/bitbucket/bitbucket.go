package bitbucket

import (
	"context"

	"github.com/jmcampanini/bb-cli/internal/remote"
)

// Bitbucket is the subset of the Bitbucket Cloud REST API the CLI uses.
type Bitbucket interface {

	// GetCurrentUser returns the account the client is authenticated as.
	GetCurrentUser(ctx context.Context) (User, error)

	// ListPullRequests returns up to limit pull requests in the given state.
	// A limit of 0 or less returns every page.
	ListPullRequests(ctx context.Context, repo remote.Coordinates, state PRState, limit int) ([]PullRequest, error)

	// GetPullRequest returns a single pull request by id.
	GetPullRequest(ctx context.Context, repo remote.Coordinates, id int) (PullRequest, error)

	// GetPullRequestDiff returns the raw unified diff of a pull request.
	GetPullRequestDiff(ctx context.Context, repo remote.Coordinates, id int) (string, error)

	// FindPullRequestByBranch returns the first open pull request whose source
	// branch is branch, or nil when there is none.
	FindPullRequestByBranch(ctx context.Context, repo remote.Coordinates, branch string) (*PullRequest, error)

	// ListPullRequestComments returns up to limit comments on a pull request.
	ListPullRequestComments(ctx context.Context, repo remote.Coordinates, id int, limit int) ([]Comment, error)

	// ListCommitStatuses returns up to limit build statuses for a commit.
	ListCommitStatuses(ctx context.Context, repo remote.Coordinates, commit string, limit int) ([]CommitStatus, error)

	// ListRepositories returns up to limit repositories in a workspace.
	ListRepositories(ctx context.Context, workspace string, limit int) ([]Repository, error)

	// Approve approves a pull request as the current user.
	Approve(ctx context.Context, repo remote.Coordinates, id int) error

	// RequestChanges marks a pull request as needing changes.
	RequestChanges(ctx context.Context, repo remote.Coordinates, id int) error

	// PostComment adds a top-level comment to a pull request.
	PostComment(ctx context.Context, repo remote.Coordinates, id int, body string) (Comment, error)
}
