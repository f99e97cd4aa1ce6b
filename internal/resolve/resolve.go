package resolve

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	clog "github.com/charmbracelet/log"

	"github.com/jmcampanini/bb-cli/internal/auth"
	"github.com/jmcampanini/bb-cli/internal/config"
	"github.com/jmcampanini/bb-cli/internal/remote"
)

var (
	// ErrNoRepository is returned by Require when no source named a repository.
	ErrNoRepository = errors.New("no repository found: pass --repo workspace/repo, add a .bb-cli file or run inside a Bitbucket checkout")
	// ErrNoWorkspace is returned by Require when no source named a workspace.
	ErrNoWorkspace = errors.New("no workspace found: pass --repo workspace/repo or set a workspace on the active profile")
	// ErrUnknownProfile is returned when --profile names a profile that is not configured.
	ErrUnknownProfile = errors.New("profile not found")
)

// RemoteLookup returns the URL configured for a named git remote.
type RemoteLookup func(remoteName string) (string, error)

// Overrides are the values given on the command line.
type Overrides struct {
	Profile string
	Remote  string
	Repo    string // "workspace/repo" or "repo"
}

// Inputs is everything Resolve reads from.
type Inputs struct {
	Credentials  auth.Store
	Global       config.GlobalConfig
	Local        *config.ProjectConfig
	Logger       *clog.Logger
	LookupRemote RemoteLookup
	Overrides    Overrides
	RepoRoot     string
}

// Context is the resolved set of coordinates and credentials for one invocation.
type Context struct {
	APIURL       string
	OutputFormat string
	Profile      config.Profile
	ProfileName  string
	RemoteName   string
	Repository   string
	User         string
	Workspace    string

	secret        string
	credentialErr error
}

type source func() string

// firstNonEmpty folds over sources in order and stops at the first hit.
func firstNonEmpty(sources ...source) string {
	for _, s := range sources {
		if v := s(); v != "" {
			return v
		}
	}
	return ""
}

// Resolve merges overrides, local config, the git remote and the active
// profile into a Context. Missing coordinates and credentials are not
// errors here; see Require and Credentials.
func Resolve(in Inputs) (Context, error) {
	log := in.Logger
	if log == nil {
		log = clog.Default()
	}
	log = log.WithPrefix("resolve")

	if in.Overrides.Profile != "" {
		if _, ok := in.Global.Profiles[in.Overrides.Profile]; !ok {
			return Context{}, fmt.Errorf("%w: %q", ErrUnknownProfile, in.Overrides.Profile)
		}
	}
	profileName, profile, _ := in.Global.ActiveProfile(in.Overrides.Profile)

	local := config.ProjectConfig{}
	if in.Local != nil {
		local = *in.Local
	}

	cli, cliOK := ParseRepoOverride(in.Overrides.Repo)
	if in.Overrides.Repo != "" && !cliOK {
		log.Debug("ignoring malformed repo override", "value", in.Overrides.Repo)
	}

	remoteName := firstNonEmpty(
		constant(in.Overrides.Remote),
		constant(local.Remote),
		constant(config.DefaultRemote),
	)

	detected := sync.OnceValue(func() remote.Coordinates {
		return detectFromRemote(log, in.RepoRoot, remoteName, in.LookupRemote)
	})

	ctx := Context{
		Profile:     profile,
		ProfileName: profileName,
		RemoteName:  remoteName,
		User:        profile.User,
	}

	ctx.Workspace = firstNonEmpty(
		constant(cli.Workspace),
		constant(local.Workspace),
		func() string { return detected().Workspace },
		constant(profile.Workspace),
	)
	ctx.Repository = firstNonEmpty(
		constant(cli.Repository),
		constant(local.Repository),
		func() string { return detected().Repository },
	)
	ctx.APIURL = firstNonEmpty(constant(profile.APIURL), constant(config.DefaultAPIURL))
	ctx.OutputFormat = firstNonEmpty(constant(profile.OutputFormat), constant(config.OutputFormatTable))

	ctx.secret, ctx.credentialErr = lookupSecret(in.Credentials, profile.User)
	if ctx.credentialErr != nil {
		log.Debug("credentials unavailable", "profile", profileName, "err", ctx.credentialErr)
	}

	log.Debug("context resolved",
		"profile", profileName,
		"workspace", ctx.Workspace,
		"repository", ctx.Repository,
		"remote", remoteName)

	return ctx, nil
}

// ParseRepoOverride interprets a --repo value. Exactly one "/" yields both
// coordinates, no "/" yields only the repository. Anything else, including
// an empty half, is not an override.
func ParseRepoOverride(value string) (remote.Coordinates, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return remote.Coordinates{}, false
	}

	switch strings.Count(value, "/") {
	case 0:
		return remote.Coordinates{Repository: value}, true
	case 1:
		ws, repo, _ := strings.Cut(value, "/")
		if ws == "" || repo == "" {
			return remote.Coordinates{}, false
		}
		return remote.Coordinates{Workspace: ws, Repository: repo}, true
	default:
		return remote.Coordinates{}, false
	}
}

func detectFromRemote(log *clog.Logger, repoRoot, remoteName string, lookup RemoteLookup) remote.Coordinates {
	if repoRoot == "" || lookup == nil {
		return remote.Coordinates{}
	}

	url, err := lookup(remoteName)
	if err != nil {
		log.Debug("git remote lookup failed", "remote", remoteName, "err", err)
		return remote.Coordinates{}
	}

	coords, err := remote.Parse(url)
	if err != nil {
		log.Debug("git remote is not a Bitbucket URL", "remote", remoteName, "err", err)
		return remote.Coordinates{}
	}
	return coords
}

func lookupSecret(store auth.Store, user string) (string, error) {
	if user == "" {
		return "", fmt.Errorf("%w: no user configured on the active profile", auth.ErrNoCredentials)
	}
	if store == nil {
		return "", fmt.Errorf("%w: no credential store", auth.ErrNoCredentials)
	}
	secret, err := store.Get(user)
	if err != nil {
		return "", fmt.Errorf("%w: %w", auth.ErrNoCredentials, err)
	}
	return secret, nil
}

func constant(v string) source {
	return func() string { return v }
}

// Coordinates returns the resolved workspace and repository, which may be partial.
func (c Context) Coordinates() remote.Coordinates {
	return remote.Coordinates{Workspace: c.Workspace, Repository: c.Repository}
}

// Require returns the coordinates or an error naming the missing one.
func (c Context) Require() (remote.Coordinates, error) {
	if c.Repository == "" {
		return remote.Coordinates{}, ErrNoRepository
	}
	if c.Workspace == "" {
		return remote.Coordinates{}, ErrNoWorkspace
	}
	return c.Coordinates(), nil
}

// RequireWorkspace is Require for commands that work on a whole workspace.
func (c Context) RequireWorkspace() (string, error) {
	if c.Workspace == "" {
		return "", ErrNoWorkspace
	}
	return c.Workspace, nil
}

// Credentials returns the user and secret, or an error wrapping
// auth.ErrNoCredentials when either is missing.
func (c Context) Credentials() (string, string, error) {
	if c.credentialErr != nil {
		return "", "", c.credentialErr
	}
	return c.User, c.secret, nil
}

// HasCredentials reports whether Credentials would succeed.
func (c Context) HasCredentials() bool {
	return c.credentialErr == nil
}
