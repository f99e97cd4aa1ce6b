package pr

import (
	"github.com/jmcampanini/bb-cli/internal/bitbucket"
	"github.com/jmcampanini/bb-cli/internal/git"
)

// BranchMatch represents a PR with its local branch matching status.
type BranchMatch struct {
	HasLocalBranch bool
	IsCheckedOut   bool
	LocalBranch    string
	PR             bitbucket.PullRequest
}

// Matcher matches pull requests to local branches.
type Matcher struct {
	remoteName string
}

// NewMatcher creates a Matcher that also recognises branches tracking
// remoteName/<source branch>.
func NewMatcher(remoteName string) *Matcher {
	return &Matcher{
		remoteName: remoteName,
	}
}

// Match returns a BranchMatch for each PR, indicating whether a local branch exists.
func (m *Matcher) Match(prs []bitbucket.PullRequest, branches []git.LocalBranch) []BranchMatch {
	result := make([]BranchMatch, len(prs))
	for i, pr := range prs {
		match := BranchMatch{
			PR: pr,
		}
		if b := m.FindBranchForPR(pr, branches); b != nil {
			match.HasLocalBranch = true
			match.IsCheckedOut = b.IsCheckedOut
			match.LocalBranch = b.Name
		}
		result[i] = match
	}
	return result
}

// FindBranchForPR searches branches for one that matches the given PR.
// It uses a dual-match strategy:
// 1. A local branch with the same name as the PR's source branch
// 2. A local branch whose upstream is <remote>/<source branch>
// Returns nil if no match is found.
func (m *Matcher) FindBranchForPR(pr bitbucket.PullRequest, branches []git.LocalBranch) *git.LocalBranch {
	source := pr.SourceBranch()
	if source == "" {
		return nil
	}

	for i := range branches {
		if branches[i].Name == source {
			return &branches[i]
		}
	}

	if m.remoteName == "" {
		return nil
	}
	upstream := m.remoteName + "/" + source
	for i := range branches {
		if branches[i].UpstreamName == upstream {
			return &branches[i]
		}
	}
	return nil
}
