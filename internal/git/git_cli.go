package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	gogit "github.com/go-git/go-git/v5"
)

// branchFormat prints one NUL-separated record per local branch:
// name, HEAD marker, short SHA, upstream, upstream tracking state.
const branchFormat = "%(refname:short)%00%(HEAD)%00%(objectname:short)%00%(upstream:short)%00%(upstream:track,nobracket)"

const branchFieldCount = 5

// GitCli runs the git binary for branch queries and reads remote URLs from
// the repository config in-process.
type GitCli struct {
	log        *clog.Logger
	timeout    time.Duration
	workingDir string
}

var _ Git = &GitCli{}

// New creates a GitCli rooted at workingDir. Each git invocation is bounded by timeout.
func New(logger *clog.Logger, workingDir string, timeout time.Duration) Git {
	return &GitCli{
		log:        logger.WithPrefix("git"),
		timeout:    timeout,
		workingDir: workingDir,
	}
}

func (g *GitCli) run(args ...string) (string, error) {
	g.log.Debug("Executing git command", "args", args, "workingDir", g.workingDir)

	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.workingDir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		joined := strings.Join(args, " ")
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("git %s timed out after %s", joined, g.timeout)
		}
		g.log.Debug("Git command failed", "args", args, "stderr", stderr.String(), "error", err)
		return "", fmt.Errorf("git %s failed: %w: %s", joined, err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (g *GitCli) GetWorktreeRoot() (string, error) {
	root, err := g.run("rev-parse", "--show-toplevel")
	if err != nil {
		if strings.Contains(err.Error(), "not a git repo") {
			return "", nil
		}
		return "", err
	}
	g.log.Debug("Found repository root", "root", root)
	return root, nil
}

func (g *GitCli) GetCurrentBranch() (string, error) {
	branch, err := g.run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return branch, nil
}

func (g *GitCli) GetRemoteURL(remoteName string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(g.workingDir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to open repository at %s: %w", g.workingDir, err)
	}

	remote, err := repo.Remote(remoteName)
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		return "", fmt.Errorf("%w: %s", ErrRemoteNotFound, remoteName)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read remote %s: %w", remoteName, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL configured", remoteName)
	}

	g.log.Debug("Resolved remote URL", "remote", remoteName, "url", urls[0])
	return urls[0], nil
}

func (g *GitCli) ListLocalBranches() ([]LocalBranch, error) {
	output, err := g.run("for-each-ref", "--format="+branchFormat, "refs/heads/")
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	branches := parseBranchList(output)
	g.log.Debug("Listed local branches", "count", len(branches))
	return branches, nil
}

// parseBranchList parses branchFormat output, skipping malformed records.
func parseBranchList(output string) []LocalBranch {
	branches := []LocalBranch{}
	for _, line := range strings.Split(output, "\n") {
		if b, ok := parseBranchRecord(line); ok {
			branches = append(branches, b)
		}
	}
	return branches
}

func parseBranchRecord(line string) (LocalBranch, bool) {
	fields := strings.Split(line, "\x00")
	if len(fields) != branchFieldCount || fields[0] == "" {
		return LocalBranch{}, false
	}

	b := LocalBranch{
		IsCheckedOut: fields[1] == "*",
		Name:         fields[0],
		SHA:          fields[2],
		UpstreamName: fields[3],
	}
	b.Ahead, b.Behind = parseTrack(fields[4])
	return b, true
}

// parseTrack reads "ahead N", "behind N", "ahead N, behind M" or "gone".
func parseTrack(track string) (ahead, behind int) {
	for _, part := range strings.Split(track, ",") {
		kind, count, ok := strings.Cut(strings.TrimSpace(part), " ")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(count)
		if err != nil {
			continue
		}
		switch kind {
		case "ahead":
			ahead = n
		case "behind":
			behind = n
		}
	}
	return ahead, behind
}
