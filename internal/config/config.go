package config

import (
	"fmt"
	"net/url"
	"sort"
)

// GlobalConfig is the user-wide configuration file.
type GlobalConfig struct {
	// DefaultProfile names the profile used when --profile is not given.
	DefaultProfile string             `toml:"default_profile,omitempty"`
	Profiles       map[string]Profile `toml:"profile,omitempty"`
}

// Profile is a named bundle of defaults.
type Profile struct {
	APIURL       string `toml:"api_url,omitempty"`
	OutputFormat string `toml:"output_format,omitempty"` // table, json or yaml
	Remote       string `toml:"remote,omitempty"`
	Repository   string `toml:"repository,omitempty"`
	User         string `toml:"user,omitempty"`
	Workspace    string `toml:"workspace,omitempty"`
}

// LocalConfig is the per-checkout marker file.
type LocalConfig struct {
	Project *ProjectConfig `toml:"project,omitempty"`
}

// ProjectConfig pins a checkout to a workspace and repository.
type ProjectConfig struct {
	Remote     string `toml:"remote,omitempty"`
	Repository string `toml:"repository,omitempty"`
	Workspace  string `toml:"workspace,omitempty"`
}

// ActiveProfileName returns the override if set, then the stored default,
// then DefaultProfileName.
func (c GlobalConfig) ActiveProfileName(override string) string {
	if override != "" {
		return override
	}
	if c.DefaultProfile != "" {
		return c.DefaultProfile
	}
	return DefaultProfileName
}

// ActiveProfile returns the active profile and whether it exists.
func (c GlobalConfig) ActiveProfile(override string) (string, Profile, bool) {
	name := c.ActiveProfileName(override)
	p, ok := c.Profiles[name]
	return name, p, ok
}

// ProfileNames returns the configured profile names in sorted order.
func (c GlobalConfig) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that all config values are valid.
// Returns an error describing the first invalid value found.
func (c GlobalConfig) Validate() error {
	for _, name := range c.ProfileNames() {
		p := c.Profiles[name]
		if !IsValidOutputFormat(p.OutputFormat) {
			return fmt.Errorf("profile.%s.output_format must be one of %v, got %q", name, OutputFormats, p.OutputFormat)
		}
		if p.APIURL != "" {
			u, err := url.Parse(p.APIURL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("profile.%s.api_url must be an absolute http(s) URL, got %q", name, p.APIURL)
			}
		}
	}
	return nil
}

// IsValidOutputFormat reports whether f is empty or a known format.
func IsValidOutputFormat(f string) bool {
	if f == "" {
		return true
	}
	for _, known := range OutputFormats {
		if f == known {
			return true
		}
	}
	return false
}
