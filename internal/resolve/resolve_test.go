package resolve

import (
	"errors"
	"io"
	"testing"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcampanini/bb-cli/internal/auth"
	"github.com/jmcampanini/bb-cli/internal/config"
	"github.com/jmcampanini/bb-cli/internal/remote"
)

type fakeRemotes struct {
	calls int
	urls  map[string]string
}

func (f *fakeRemotes) lookup(name string) (string, error) {
	f.calls++
	url, ok := f.urls[name]
	if !ok {
		return "", errors.New("no such remote")
	}
	return url, nil
}

func testLogger() *clog.Logger {
	return clog.New(io.Discard)
}

func globalWithWorkspace(ws string) config.GlobalConfig {
	return config.GlobalConfig{
		Profiles: map[string]config.Profile{
			config.DefaultProfileName: {Workspace: ws, User: "alice"},
		},
	}
}

func TestParseRepoOverride(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		want   remote.Coordinates
		wantOK bool
	}{
		{"workspace and repo", "acme/widgets", remote.Coordinates{Workspace: "acme", Repository: "widgets"}, true},
		{"repo only", "widgets", remote.Coordinates{Repository: "widgets"}, true},
		{"two slashes", "a/b/c", remote.Coordinates{}, false},
		{"empty workspace", "/widgets", remote.Coordinates{}, false},
		{"empty repo", "acme/", remote.Coordinates{}, false},
		{"empty", "", remote.Coordinates{}, false},
		{"whitespace", "  ", remote.Coordinates{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRepoOverride(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Precedence(t *testing.T) {
	remotes := map[string]string{
		"origin":   "git@bitbucket.org:gitws/gitrepo.git",
		"upstream": "https://bitbucket.org/upws/uprepo.git",
	}

	tests := []struct {
		name          string
		overrides     Overrides
		local         *config.ProjectConfig
		repoRoot      string
		wantWorkspace string
		wantRepo      string
		wantRemote    string
	}{
		{
			name:          "cli override wins over everything",
			overrides:     Overrides{Repo: "cliws/clirepo"},
			local:         &config.ProjectConfig{Workspace: "localws", Repository: "localrepo"},
			repoRoot:      "/repo",
			wantWorkspace: "cliws",
			wantRepo:      "clirepo",
			wantRemote:    "origin",
		},
		{
			name:          "local wins over git remote",
			local:         &config.ProjectConfig{Workspace: "localws", Repository: "localrepo"},
			repoRoot:      "/repo",
			wantWorkspace: "localws",
			wantRepo:      "localrepo",
			wantRemote:    "origin",
		},
		{
			name:          "git remote wins over profile",
			repoRoot:      "/repo",
			wantWorkspace: "gitws",
			wantRepo:      "gitrepo",
			wantRemote:    "origin",
		},
		{
			name:          "profile is the last workspace source",
			wantWorkspace: "profilews",
			wantRepo:      "",
			wantRemote:    "origin",
		},
		{
			name:          "repo-only override takes workspace from git",
			overrides:     Overrides{Repo: "clirepo"},
			repoRoot:      "/repo",
			wantWorkspace: "gitws",
			wantRepo:      "clirepo",
			wantRemote:    "origin",
		},
		{
			name:          "malformed override falls through",
			overrides:     Overrides{Repo: "a/b/c"},
			repoRoot:      "/repo",
			wantWorkspace: "gitws",
			wantRepo:      "gitrepo",
			wantRemote:    "origin",
		},
		{
			name:          "local remote name selects the remote",
			local:         &config.ProjectConfig{Remote: "upstream"},
			repoRoot:      "/repo",
			wantWorkspace: "upws",
			wantRepo:      "uprepo",
			wantRemote:    "upstream",
		},
		{
			name:          "cli remote name beats local remote name",
			overrides:     Overrides{Remote: "origin"},
			local:         &config.ProjectConfig{Remote: "upstream"},
			repoRoot:      "/repo",
			wantWorkspace: "gitws",
			wantRepo:      "gitrepo",
			wantRemote:    "origin",
		},
		{
			name:          "partial local config mixes with git",
			local:         &config.ProjectConfig{Repository: "localrepo"},
			repoRoot:      "/repo",
			wantWorkspace: "gitws",
			wantRepo:      "localrepo",
			wantRemote:    "origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRemotes{urls: remotes}
			ctx, err := Resolve(Inputs{
				Credentials:  auth.NewMemoryStore(),
				Global:       globalWithWorkspace("profilews"),
				Local:        tt.local,
				Logger:       testLogger(),
				LookupRemote: fake.lookup,
				Overrides:    tt.overrides,
				RepoRoot:     tt.repoRoot,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantWorkspace, ctx.Workspace)
			assert.Equal(t, tt.wantRepo, ctx.Repository)
			assert.Equal(t, tt.wantRemote, ctx.RemoteName)
		})
	}
}

func TestResolve_GitNotConsultedWithoutRepoRoot(t *testing.T) {
	fake := &fakeRemotes{urls: map[string]string{"origin": "git@bitbucket.org:gitws/gitrepo.git"}}

	ctx, err := Resolve(Inputs{
		Global:       globalWithWorkspace("profilews"),
		Logger:       testLogger(),
		LookupRemote: fake.lookup,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, fake.calls)
	assert.Equal(t, "profilews", ctx.Workspace)
	assert.Empty(t, ctx.Repository)
}

func TestResolve_GitNotConsultedWhenOverrideIsComplete(t *testing.T) {
	fake := &fakeRemotes{urls: map[string]string{"origin": "git@bitbucket.org:gitws/gitrepo.git"}}

	_, err := Resolve(Inputs{
		Logger:       testLogger(),
		LookupRemote: fake.lookup,
		Overrides:    Overrides{Repo: "acme/widgets"},
		RepoRoot:     "/repo",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, fake.calls)
}

func TestResolve_GitFailuresAreNotFatal(t *testing.T) {
	tests := []struct {
		name string
		urls map[string]string
	}{
		{"missing remote", map[string]string{}},
		{"foreign host", map[string]string{"origin": "git@github.com:acme/widgets.git"}},
		{"malformed path", map[string]string{"origin": "https://bitbucket.org/acme"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRemotes{urls: tt.urls}
			ctx, err := Resolve(Inputs{
				Global:       globalWithWorkspace("profilews"),
				Logger:       testLogger(),
				LookupRemote: fake.lookup,
				RepoRoot:     "/repo",
			})

			require.NoError(t, err)
			assert.Equal(t, 1, fake.calls)
			assert.Equal(t, "profilews", ctx.Workspace)
			assert.Empty(t, ctx.Repository)
		})
	}
}

func TestResolve_Profiles(t *testing.T) {
	global := config.GlobalConfig{
		DefaultProfile: "work",
		Profiles: map[string]config.Profile{
			"work":     {Workspace: "workws", User: "alice", APIURL: "https://bb.internal/2.0", OutputFormat: "json"},
			"personal": {Workspace: "homews", User: "bob"},
		},
	}

	t.Run("stored default profile", func(t *testing.T) {
		ctx, err := Resolve(Inputs{Global: global, Logger: testLogger()})
		require.NoError(t, err)
		assert.Equal(t, "work", ctx.ProfileName)
		assert.Equal(t, "workws", ctx.Workspace)
		assert.Equal(t, "https://bb.internal/2.0", ctx.APIURL)
		assert.Equal(t, "json", ctx.OutputFormat)
		assert.Equal(t, "alice", ctx.User)
	})

	t.Run("override selects another profile", func(t *testing.T) {
		ctx, err := Resolve(Inputs{Global: global, Logger: testLogger(), Overrides: Overrides{Profile: "personal"}})
		require.NoError(t, err)
		assert.Equal(t, "personal", ctx.ProfileName)
		assert.Equal(t, "homews", ctx.Workspace)
		assert.Equal(t, config.DefaultAPIURL, ctx.APIURL)
		assert.Equal(t, config.OutputFormatTable, ctx.OutputFormat)
	})

	t.Run("unknown override is an error", func(t *testing.T) {
		_, err := Resolve(Inputs{Global: global, Logger: testLogger(), Overrides: Overrides{Profile: "nope"}})
		assert.ErrorIs(t, err, ErrUnknownProfile)
	})

	t.Run("no profiles at all", func(t *testing.T) {
		ctx, err := Resolve(Inputs{Logger: testLogger()})
		require.NoError(t, err)
		assert.Equal(t, config.DefaultProfileName, ctx.ProfileName)
		assert.Equal(t, config.DefaultAPIURL, ctx.APIURL)
		assert.Empty(t, ctx.Workspace)
	})
}

func TestResolve_Credentials(t *testing.T) {
	t.Run("stored secret is available", func(t *testing.T) {
		store := auth.NewMemoryStore()
		require.NoError(t, store.Save("alice", "s3cret"))

		ctx, err := Resolve(Inputs{Credentials: store, Global: globalWithWorkspace("ws"), Logger: testLogger()})
		require.NoError(t, err)

		user, secret, err := ctx.Credentials()
		require.NoError(t, err)
		assert.True(t, ctx.HasCredentials())
		assert.Equal(t, "alice", user)
		assert.Equal(t, "s3cret", secret)
	})

	t.Run("missing secret is deferred", func(t *testing.T) {
		ctx, err := Resolve(Inputs{Credentials: auth.NewMemoryStore(), Global: globalWithWorkspace("ws"), Logger: testLogger()})
		require.NoError(t, err)

		assert.False(t, ctx.HasCredentials())
		_, _, err = ctx.Credentials()
		assert.ErrorIs(t, err, auth.ErrNoCredentials)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("missing user is deferred", func(t *testing.T) {
		ctx, err := Resolve(Inputs{Credentials: auth.NewMemoryStore(), Logger: testLogger()})
		require.NoError(t, err)

		_, _, err = ctx.Credentials()
		assert.ErrorIs(t, err, auth.ErrNoCredentials)
	})
}

func TestContext_Require(t *testing.T) {
	tests := []struct {
		name    string
		ctx     Context
		wantErr error
	}{
		{"complete", Context{Workspace: "acme", Repository: "widgets"}, nil},
		{"no repository", Context{Workspace: "acme"}, ErrNoRepository},
		{"no workspace", Context{Repository: "widgets"}, ErrNoWorkspace},
		{"nothing", Context{}, ErrNoRepository},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coords, err := tt.ctx.Require()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "acme/widgets", coords.String())
		})
	}
}

func TestContext_RequireWorkspace(t *testing.T) {
	ws, err := Context{Workspace: "acme"}.RequireWorkspace()
	require.NoError(t, err)
	assert.Equal(t, "acme", ws)

	_, err = Context{Repository: "widgets"}.RequireWorkspace()
	assert.ErrorIs(t, err, ErrNoWorkspace)
}
