package config

const (
	// AppName identifies the tool in config directories and the keyring.
	AppName = "bb-cli"

	// DefaultAPIURL is the Bitbucket Cloud REST API base.
	DefaultAPIURL = "https://api.bitbucket.org/2.0"

	// DefaultProfileName is used when no profile is selected.
	DefaultProfileName = "default"

	// DefaultRemote is the git remote inspected when none is configured.
	DefaultRemote = "origin"

	globalConfigFileName = "config.toml"
	localConfigFileName  = ".bb-cli"

	// configDirEnv overrides the global config directory.
	configDirEnv = "BB_CONFIG_DIR"
)

const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)

// OutputFormats lists the accepted values of profile.<name>.output_format.
var OutputFormats = []string{OutputFormatTable, OutputFormatJSON, OutputFormatYAML}
