package remote

import (
	"errors"
	"fmt"
	"strings"
)

// Host is the hostname every supported remote must point at.
const Host = "bitbucket.org"

var (
	// ErrUnrecognizedHost is returned when the URL does not point at Host.
	ErrUnrecognizedHost = errors.New("unrecognized host")
	// ErrMalformedPath is returned when workspace and repository cannot be split.
	ErrMalformedPath = errors.New("malformed repository path")
)

// Coordinates identifies a repository within a workspace.
type Coordinates struct {
	Workspace  string
	Repository string
}

// String returns the "workspace/repository" form.
func (c Coordinates) String() string {
	return c.Workspace + "/" + c.Repository
}

// ParseError describes why a remote URL could not be parsed.
type ParseError struct {
	Kind error // ErrUnrecognizedHost or ErrMalformedPath
	URL  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse remote URL %q: %v", e.URL, e.Kind)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

// transportPrefixes are stripped in order; only the first match is removed.
var transportPrefixes = []string{"ssh://", "git@", "https://", "http://"}

// Parse extracts workspace and repository from a git remote URL.
//
// Supported forms:
//
//	https://bitbucket.org/ws/repo(.git)
//	https://user@bitbucket.org/ws/repo(.git)
//	git@bitbucket.org:ws/repo(.git)
//	ssh://git@bitbucket.org/ws/repo(.git)
func Parse(url string) (Coordinates, error) {
	rest := strings.TrimSpace(url)

	for _, prefix := range transportPrefixes {
		if strings.HasPrefix(rest, prefix) {
			rest = rest[len(prefix):]
			break
		}
	}

	// Embedded usernames, e.g. "user@bitbucket.org/..." or "git@bitbucket.org:..."
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}

	if !strings.HasPrefix(rest, Host) || len(rest) == len(Host) {
		return Coordinates{}, &ParseError{Kind: ErrUnrecognizedHost, URL: url}
	}
	switch rest[len(Host)] {
	case '/', ':':
		rest = rest[len(Host)+1:]
	default:
		return Coordinates{}, &ParseError{Kind: ErrUnrecognizedHost, URL: url}
	}

	workspace, repoWithExt, found := strings.Cut(rest, "/")
	if !found {
		return Coordinates{}, &ParseError{Kind: ErrMalformedPath, URL: url}
	}

	repo := strings.TrimSuffix(strings.TrimSuffix(repoWithExt, "/"), ".git")
	if workspace == "" || repo == "" || strings.Contains(repo, "/") {
		return Coordinates{}, &ParseError{Kind: ErrMalformedPath, URL: url}
	}

	return Coordinates{Workspace: workspace, Repository: repo}, nil
}
