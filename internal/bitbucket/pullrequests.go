package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jmcampanini/bb-cli/internal/remote"
)

func (c *Client) GetCurrentUser(ctx context.Context) (User, error) {
	var user User
	if err := c.getJSON(ctx, "/user", &user); err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return user, nil
}

func (c *Client) ListPullRequests(ctx context.Context, repo remote.Coordinates, state PRState, limit int) ([]PullRequest, error) {
	if state == "" {
		state = PRStateOpen
	}
	path := withQuery(repoPath(repo, "pullrequests"), url.Values{"state": {state.String()}})

	prs, err := List[PullRequest](ctx, c, path, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests for %s: %w", repo, err)
	}
	return prs, nil
}

func (c *Client) GetPullRequest(ctx context.Context, repo remote.Coordinates, id int) (PullRequest, error) {
	var pr PullRequest
	if err := c.getJSON(ctx, repoPath(repo, "pullrequests", strconv.Itoa(id)), &pr); err != nil {
		return PullRequest{}, fmt.Errorf("failed to get pull request #%d: %w", id, err)
	}
	return pr, nil
}

func (c *Client) GetPullRequestDiff(ctx context.Context, repo remote.Coordinates, id int) (string, error) {
	data, err := c.do(ctx, http.MethodGet, repoPath(repo, "pullrequests", strconv.Itoa(id), "diff"), nil)
	if err != nil {
		return "", fmt.Errorf("failed to get diff for pull request #%d: %w", id, err)
	}
	return string(data), nil
}

func (c *Client) FindPullRequestByBranch(ctx context.Context, repo remote.Coordinates, branch string) (*PullRequest, error) {
	query := url.Values{
		"q":     {fmt.Sprintf("source.branch.name=%q", branch)},
		"state": {PRStateOpen.String()},
	}
	path := withQuery(repoPath(repo, "pullrequests"), query)

	var page Page[PullRequest]
	if err := c.getJSON(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("failed to find pull request for branch %q: %w", branch, err)
	}
	if len(page.Values) == 0 {
		c.log.Debug("No open pull request for branch", "branch", branch)
		return nil, nil
	}
	pr := page.Values[0]
	return &pr, nil
}

func (c *Client) ListPullRequestComments(ctx context.Context, repo remote.Coordinates, id int, limit int) ([]Comment, error) {
	comments, err := List[Comment](ctx, c, repoPath(repo, "pullrequests", strconv.Itoa(id), "comments"), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments on pull request #%d: %w", id, err)
	}
	return comments, nil
}

func (c *Client) ListCommitStatuses(ctx context.Context, repo remote.Coordinates, commit string, limit int) ([]CommitStatus, error) {
	statuses, err := List[CommitStatus](ctx, c, repoPath(repo, "commit", commit, "statuses"), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses for commit %s: %w", commit, err)
	}
	return statuses, nil
}

func (c *Client) ListRepositories(ctx context.Context, workspace string, limit int) ([]Repository, error) {
	repos, err := List[Repository](ctx, c, "/repositories/"+url.PathEscape(workspace), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories in %s: %w", workspace, err)
	}
	return repos, nil
}

func (c *Client) Approve(ctx context.Context, repo remote.Coordinates, id int) error {
	if err := c.sendJSON(ctx, http.MethodPost, repoPath(repo, "pullrequests", strconv.Itoa(id), "approve"), nil, nil); err != nil {
		return fmt.Errorf("failed to approve pull request #%d: %w", id, err)
	}
	return nil
}

func (c *Client) RequestChanges(ctx context.Context, repo remote.Coordinates, id int) error {
	if err := c.sendJSON(ctx, http.MethodPost, repoPath(repo, "pullrequests", strconv.Itoa(id), "request-changes"), nil, nil); err != nil {
		return fmt.Errorf("failed to request changes on pull request #%d: %w", id, err)
	}
	return nil
}

type newComment struct {
	Content Content `json:"content"`
}

func (c *Client) PostComment(ctx context.Context, repo remote.Coordinates, id int, body string) (Comment, error) {
	var comment Comment
	payload := newComment{Content: Content{Raw: body}}
	if err := c.sendJSON(ctx, http.MethodPost, repoPath(repo, "pullrequests", strconv.Itoa(id), "comments"), payload, &comment); err != nil {
		return Comment{}, fmt.Errorf("failed to comment on pull request #%d: %w", id, err)
	}
	return comment, nil
}
