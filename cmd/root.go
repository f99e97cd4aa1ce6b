package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "n/a"

var (
	jsonFlag    bool
	profileFlag string
	quietFlag   bool
	remoteFlag  string
	repoFlag    string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "bb",
	Short: "Bitbucket Cloud pull requests from the terminal",
	Long: `bb works with Bitbucket Cloud pull requests without leaving the terminal.

The workspace and repository are taken from --repo, a .bb-cli file, the git
remote of the current checkout, or the active profile, in that order.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "Show debug logging")
	flags.BoolVarP(&quietFlag, "quiet", "q", false, "Only log errors")
	flags.StringVar(&profileFlag, "profile", "", "Config profile to use")
	flags.StringVarP(&repoFlag, "repo", "R", "", "Repository as workspace/repo (or just repo)")
	flags.StringVar(&remoteFlag, "remote", "", "Git remote used to detect the repository (default \"origin\")")
	flags.BoolVar(&jsonFlag, "json", false, "Output JSON")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
