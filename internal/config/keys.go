package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned for keys outside the allow-list.
var ErrUnknownKey = errors.New("unknown config key")

// ProfileFields are the keys accepted under profile.<name>.
var ProfileFields = []string{"api_url", "output_format", "remote", "repository", "user", "workspace"}

// ValidateKey checks a dotted key against the allow-list:
//
//	default_profile
//	profile.<name>.<field>
func ValidateKey(key string) error {
	if key == "default_profile" {
		return nil
	}

	parts := strings.Split(key, ".")
	if len(parts) == 3 && parts[0] == "profile" && parts[1] != "" && isProfileField(parts[2]) {
		return nil
	}

	return fmt.Errorf("%w: %q (valid keys: default_profile, profile.<name>.{%s})",
		ErrUnknownKey, key, strings.Join(ProfileFields, ","))
}

// ExpandKey maps a short key such as "workspace" onto the active profile
// ("profile.<active>.workspace"). "profile" maps to default_profile. Other
// keys are returned unchanged.
func ExpandKey(key, activeProfile string) string {
	if key == "profile" {
		return "default_profile"
	}
	if isProfileField(key) {
		return "profile." + activeProfile + "." + key
	}
	return key
}

func isProfileField(field string) bool {
	for _, f := range ProfileFields {
		if f == field {
			return true
		}
	}
	return false
}
