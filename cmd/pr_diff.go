package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jmcampanini/bb-cli/internal/diff"
)

var (
	prDiffMaxSizeFlag  int
	prDiffNameOnlyFlag bool
	prDiffWebFlag      bool
)

var prDiffCmd = &cobra.Command{
	Use:   "diff [id] [patterns...]",
	Short: "Show the diff of a pull request",
	Long: `Show the diff of a pull request, optionally limited to files matching
glob patterns.

A leading numeric argument is taken as the pull request id; the remaining
arguments are patterns. Patterns support ** and are matched against both the
full path and the file name, so "*.go" matches every Go file. A pattern
ending in "/" matches everything below that directory.

Files with more lines than --max-diff-size are replaced by a one-line note.`,
	Example: `  bb pr diff
  bb pr diff 42 '*.go'
  bb pr diff 'src/**/*.ts' --max-diff-size 500
  bb pr diff 42 --name-only`,
	RunE: runPRDiff,
}

func init() {
	prDiffCmd.Flags().BoolVar(&prDiffNameOnlyFlag, "name-only", false, "Show only the names of changed files")
	prDiffCmd.Flags().BoolVarP(&prDiffWebFlag, "web", "w", false, "Open the pull request diff in the browser")
	prDiffCmd.Flags().IntVar(&prDiffMaxSizeFlag, "max-diff-size", 0, "Collapse files with more than this many lines (0 for no limit)")
	prCmd.AddCommand(prDiffCmd)
}

// parseDiffArgs splits off a leading unsigned integer as the pull request id.
func parseDiffArgs(args []string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, nil
	}
	if _, err := strconv.ParseUint(args[0], 10, 32); err != nil {
		return 0, args, nil
	}
	id, err := parsePRID(args[0])
	if err != nil {
		return 0, nil, err
	}
	return id, args[1:], nil
}

// diffFile is the structured form of one file in `pr diff`.
type diffFile struct {
	Diff string `json:"diff" yaml:"diff"`
	Path string `json:"path" yaml:"path"`
}

func runPRDiff(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	return runPRDiffWithApp(cmd, app, args)
}

func runPRDiffWithApp(cmd *cobra.Command, app *appContext, args []string) error {
	ctx := commandContext(cmd)

	id, patterns, err := parseDiffArgs(args)
	if err != nil {
		return err
	}
	if err := diff.ValidatePatterns(patterns); err != nil {
		return err
	}
	if prDiffMaxSizeFlag < 0 {
		return fmt.Errorf("--max-diff-size must not be negative")
	}

	repo, err := app.resolved.Require()
	if err != nil {
		return err
	}
	client, err := app.Client()
	if err != nil {
		return err
	}

	id, err = resolvePRID(ctx, app, client, repo, id)
	if err != nil {
		return err
	}

	if prDiffWebFlag {
		pr, err := getPullRequest(ctx, client, repo, id)
		if err != nil {
			return err
		}
		if err := app.openURL(pr.Links.HTML.Href + "/diff"); err != nil {
			return fmt.Errorf("failed to open browser: %w", err)
		}
		app.printer.Success("Opened PR #%d diff in browser", id)
		return nil
	}

	raw, err := client.GetPullRequestDiff(ctx, repo, id)
	if err != nil {
		return err
	}
	doc := diff.Parse(raw)

	if prDiffNameOnlyFlag {
		names := diff.FilenamesOnly(doc, patterns)
		if ok, err := app.structured(names); ok {
			return err
		}
		for _, name := range names {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
				return err
			}
		}
		return nil
	}

	filtered := diff.Filter(doc, patterns, prDiffMaxSizeFlag)

	if app.format.IsStructured() {
		files := make([]diffFile, 0, len(filtered.Files))
		for _, f := range filtered.Files {
			if !f.IsPreamble() {
				files = append(files, diffFile{Diff: f.String(), Path: f.Path})
			}
		}
		_, err := app.structured(files)
		return err
	}

	if len(filtered.Paths()) == 0 {
		if len(patterns) > 0 {
			app.printer.Info("No changed files match %v", patterns)
		} else {
			app.printer.Info("PR #%d has no changes", id)
		}
		return nil
	}

	styles := diff.DefaultStyles(lipgloss.NewRenderer(cmd.OutOrStdout()))
	return app.pager.Page(styles.Colorize(filtered))
}
