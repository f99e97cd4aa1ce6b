package git

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

const testTimeout = 30 * time.Second

// testRepo is a throwaway checkout for integration tests.
type testRepo struct {
	Git     *GitCli
	rootDir string
	t       *testing.T
}

// newTestRepo initializes a repository on branch main with one commit.
// The test is skipped when git is not installed.
func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGit(t, dir, "init", "-b", "main")
	runGit(t, dir, "config", "user.email", "dev@example.com")
	runGit(t, dir, "config", "user.name", "Dev")

	r := &testRepo{
		Git:     newQuietGit(dir),
		rootDir: dir,
		t:       t,
	}
	r.commit("initial commit")
	return r
}

func newQuietGit(dir string) *GitCli {
	return New(clog.New(io.Discard), dir, testTimeout).(*GitCli)
}

func (r *testRepo) commit(message string) {
	r.t.Helper()
	f, err := os.OpenFile(filepath.Join(r.rootDir, "CHANGELOG"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(r.t, err)
	_, err = f.WriteString(message + "\n")
	require.NoError(r.t, err)
	require.NoError(r.t, f.Close())

	r.git("add", "-A")
	r.git("commit", "-q", "-m", message)
}

func (r *testRepo) git(args ...string) string {
	r.t.Helper()
	return runGit(r.t, r.rootDir, args...)
}

// addBareRemote creates a bare repository and registers it as name.
func (r *testRepo) addBareRemote(name string) string {
	r.t.Helper()
	bare := filepath.Join(r.t.TempDir(), name+".git")
	runGit(r.t, r.rootDir, "init", "--bare", "-q", bare)
	r.git("remote", "add", name, bare)
	return bare
}

// path returns the repository root with symlinks resolved, matching what
// git reports on systems where the temp dir is a symlink.
func (r *testRepo) path() string {
	resolved, err := filepath.EvalSymlinks(r.rootDir)
	if err != nil {
		return r.rootDir
	}
	return resolved
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "git %v failed: %s", args, stderr.String())
	return stdout.String()
}

func branchNames(branches []LocalBranch) []string {
	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Name
	}
	return names
}

func findBranch(branches []LocalBranch, name string) *LocalBranch {
	for i := range branches {
		if branches[i].Name == name {
			return &branches[i]
		}
	}
	return nil
}
