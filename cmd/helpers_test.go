package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/jmcampanini/bb-cli/internal/auth"
	"github.com/jmcampanini/bb-cli/internal/bitbucket"
	"github.com/jmcampanini/bb-cli/internal/config"
	"github.com/jmcampanini/bb-cli/internal/git"
	"github.com/jmcampanini/bb-cli/internal/remote"
)

// mockBitbucket implements bitbucket.Bitbucket for testing
type mockBitbucket struct {
	approveFn                 func(repo remote.Coordinates, id int) error
	findPullRequestByBranchFn func(repo remote.Coordinates, branch string) (*bitbucket.PullRequest, error)
	getCurrentUserFn          func() (bitbucket.User, error)
	getPullRequestDiffFn      func(repo remote.Coordinates, id int) (string, error)
	getPullRequestFn          func(repo remote.Coordinates, id int) (bitbucket.PullRequest, error)
	listCommitStatusesFn      func(repo remote.Coordinates, commit string, limit int) ([]bitbucket.CommitStatus, error)
	listCommentsFn            func(repo remote.Coordinates, id int, limit int) ([]bitbucket.Comment, error)
	listPullRequestsFn        func(repo remote.Coordinates, state bitbucket.PRState, limit int) ([]bitbucket.PullRequest, error)
	listRepositoriesFn        func(workspace string, limit int) ([]bitbucket.Repository, error)
	postCommentFn             func(repo remote.Coordinates, id int, body string) (bitbucket.Comment, error)
	requestChangesFn          func(repo remote.Coordinates, id int) error
}

var _ bitbucket.Bitbucket = &mockBitbucket{}

func (m *mockBitbucket) GetCurrentUser(_ context.Context) (bitbucket.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn()
	}
	return bitbucket.User{}, nil
}

func (m *mockBitbucket) ListPullRequests(_ context.Context, repo remote.Coordinates, state bitbucket.PRState, limit int) ([]bitbucket.PullRequest, error) {
	if m.listPullRequestsFn != nil {
		return m.listPullRequestsFn(repo, state, limit)
	}
	return nil, nil
}

func (m *mockBitbucket) GetPullRequest(_ context.Context, repo remote.Coordinates, id int) (bitbucket.PullRequest, error) {
	if m.getPullRequestFn != nil {
		return m.getPullRequestFn(repo, id)
	}
	return bitbucket.PullRequest{ID: id}, nil
}

func (m *mockBitbucket) GetPullRequestDiff(_ context.Context, repo remote.Coordinates, id int) (string, error) {
	if m.getPullRequestDiffFn != nil {
		return m.getPullRequestDiffFn(repo, id)
	}
	return "", nil
}

func (m *mockBitbucket) FindPullRequestByBranch(_ context.Context, repo remote.Coordinates, branch string) (*bitbucket.PullRequest, error) {
	if m.findPullRequestByBranchFn != nil {
		return m.findPullRequestByBranchFn(repo, branch)
	}
	return nil, nil
}

func (m *mockBitbucket) ListPullRequestComments(_ context.Context, repo remote.Coordinates, id int, limit int) ([]bitbucket.Comment, error) {
	if m.listCommentsFn != nil {
		return m.listCommentsFn(repo, id, limit)
	}
	return nil, nil
}

func (m *mockBitbucket) ListCommitStatuses(_ context.Context, repo remote.Coordinates, commit string, limit int) ([]bitbucket.CommitStatus, error) {
	if m.listCommitStatusesFn != nil {
		return m.listCommitStatusesFn(repo, commit, limit)
	}
	return nil, nil
}

func (m *mockBitbucket) ListRepositories(_ context.Context, workspace string, limit int) ([]bitbucket.Repository, error) {
	if m.listRepositoriesFn != nil {
		return m.listRepositoriesFn(workspace, limit)
	}
	return nil, nil
}

func (m *mockBitbucket) Approve(_ context.Context, repo remote.Coordinates, id int) error {
	if m.approveFn != nil {
		return m.approveFn(repo, id)
	}
	return nil
}

func (m *mockBitbucket) RequestChanges(_ context.Context, repo remote.Coordinates, id int) error {
	if m.requestChangesFn != nil {
		return m.requestChangesFn(repo, id)
	}
	return nil
}

func (m *mockBitbucket) PostComment(_ context.Context, repo remote.Coordinates, id int, body string) (bitbucket.Comment, error) {
	if m.postCommentFn != nil {
		return m.postCommentFn(repo, id, body)
	}
	return bitbucket.Comment{}, nil
}

// mockGit implements git.Git for testing
type mockGit struct {
	branch     string
	branches   []git.LocalBranch
	remoteURLs map[string]string
	root       string
}

var _ git.Git = &mockGit{}

func (m *mockGit) GetCurrentBranch() (string, error) {
	return m.branch, nil
}

func (m *mockGit) GetWorktreeRoot() (string, error) {
	return m.root, nil
}

func (m *mockGit) GetRemoteURL(remoteName string) (string, error) {
	if url, ok := m.remoteURLs[remoteName]; ok {
		return url, nil
	}
	return "", git.ErrRemoteNotFound
}

func (m *mockGit) ListLocalBranches() ([]git.LocalBranch, error) {
	return m.branches, nil
}

const testGlobalConfig = `default_profile = "work"

[profile.work]
user = "alice"
workspace = "acme"
`

// testEnv wires an appContext to fakes and captures its output.
type testEnv struct {
	bb          *mockBitbucket
	configPath  string
	credentials *auth.MemoryStore
	dir         string
	git         *mockGit
	input       string
	opened      []string
	stderr      *bytes.Buffer
	stdout      *bytes.Buffer

	clientUser   string
	clientSecret string
}

func resetFlags() {
	jsonFlag = false
	profileFlag = ""
	quietFlag = false
	remoteFlag = ""
	repoFlag = ""
	verboseFlag = false

	authUsernameFlag = ""
	configInitLocalFlag = false
	prCommentsLimitFlag = 0
	prDiffMaxSizeFlag = 0
	prDiffNameOnlyFlag = false
	prDiffWebFlag = false
	prListLimitFlag = defaultPRListLimit
	prListStateFlag = string(bitbucket.PRStateOpen)
	prReviewApproveFlag = false
	prReviewBodyFlag = ""
	prReviewCommentFlag = false
	prReviewRequestChangesFlag = false
	prViewCommentsFlag = false
	prViewWebFlag = false
	repoListLimitFlag = defaultRepoListLimit
	repoListWorkspaceFlag = ""
}

// newTestEnv creates a checkout of acme/widgets on feature/login with
// stored credentials for alice.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	require.NoError(t, os.WriteFile(configPath, []byte(testGlobalConfig), 0o644))

	repoRoot := filepath.Join(dir, "widgets")
	require.NoError(t, os.MkdirAll(repoRoot, 0o755))

	credentials := auth.NewMemoryStore()
	require.NoError(t, credentials.Save("alice", "app-password"))

	return &testEnv{
		bb:          &mockBitbucket{},
		configPath:  configPath,
		credentials: credentials,
		dir:         dir,
		git: &mockGit{
			branch:     "feature/login",
			remoteURLs: map[string]string{"origin": "git@bitbucket.org:acme/widgets.git"},
			root:       repoRoot,
		},
		stderr: &bytes.Buffer{},
		stdout: &bytes.Buffer{},
	}
}

// build creates the command and appContext. Flags and env fields must be
// set before calling it.
func (e *testEnv) build(t *testing.T) (*cobra.Command, *appContext) {
	t.Helper()

	cmd := &cobra.Command{}
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)
	cmd.SetContext(context.Background())

	logger := clog.NewWithOptions(e.stderr, clog.Options{Level: clog.ErrorLevel})

	var g git.Git
	cwd := e.dir
	if e.git != nil {
		g = e.git
		cwd = e.git.root
	}

	app, err := newAppContext(cmd, &appDeps{
		credentials: e.credentials,
		cwd:         cwd,
		git:         g,
		in:          strings.NewReader(e.input),
		newClient: func(_, username, secret string) bitbucket.Bitbucket {
			e.clientUser = username
			e.clientSecret = secret
			return e.bb
		},
		openURL: func(url string) error {
			e.opened = append(e.opened, url)
			return nil
		},
		store: config.NewStore(config.OSFileSystem{}, e.configPath, logger),
	})
	require.NoError(t, err)
	return cmd, app
}

func (e *testEnv) readConfig(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.configPath)
	require.NoError(t, err)
	return string(data)
}

func testPR(id int, title, branch string) bitbucket.PullRequest {
	return bitbucket.PullRequest{
		Author:      bitbucket.User{DisplayName: "Bob Builder", Nickname: "bob"},
		CreatedOn:   time.Now().Add(-48 * time.Hour),
		Description: "Adds the login form.",
		Destination: bitbucket.Endpoint{Branch: bitbucket.Branch{Name: "main"}},
		ID:          id,
		Links:       bitbucket.Links{HTML: bitbucket.Link{Href: fmt.Sprintf("https://bitbucket.org/acme/widgets/pull-requests/%d", id)}},
		Source: bitbucket.Endpoint{
			Branch: bitbucket.Branch{Name: branch},
			Commit: bitbucket.Commit{Hash: "abc123"},
		},
		State:     bitbucket.PRStateOpen,
		Title:     title,
		UpdatedOn: time.Now().Add(-2 * time.Hour),
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
