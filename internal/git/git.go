package git

import "errors"

// ErrRemoteNotFound is returned when the named remote is not configured.
var ErrRemoteNotFound = errors.New("remote not found")

type LocalBranch struct {
	Ahead        int // Commits ahead of upstream
	Behind       int // Commits behind upstream
	IsCheckedOut bool
	Name         string // Short branch name (e.g., "main", not "refs/heads/main")
	SHA          string // Short commit SHA
	UpstreamName string // Short upstream name (e.g., "origin/main"), empty if no upstream
}

type Git interface {

	// GetCurrentBranch returns the current branch name.
	// Returns "HEAD" if in detached HEAD state.
	GetCurrentBranch() (string, error)

	// GetWorktreeRoot returns the absolute path to the root of the git tree.
	// If not in a git repository, returns ("", nil).
	// Returns an error only if the git command itself fails (e.g., git not installed).
	GetWorktreeRoot() (string, error)

	// GetRemoteURL returns the first fetch URL of the named remote.
	// Returns ErrRemoteNotFound if the remote is not configured.
	GetRemoteURL(remoteName string) (string, error)

	// ListLocalBranches returns all local branches with upstream tracking info.
	ListLocalBranches() ([]LocalBranch, error)
}
