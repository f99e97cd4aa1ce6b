package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmcampanini/bb-cli/internal/bitbucket"
	"github.com/jmcampanini/bb-cli/internal/remote"
)

var (
	prReviewApproveFlag        bool
	prReviewBodyFlag           string
	prReviewCommentFlag        bool
	prReviewRequestChangesFlag bool
)

var prReviewCmd = &cobra.Command{
	Use:   "review [id]",
	Short: "Approve, request changes on, or comment on a pull request",
	Long: `Review a pull request.

Flags may be combined and are applied in the order approve, request changes,
comment. Without any flag, the review action is chosen interactively.`,
	Example: `  bb pr review 42 --approve
  bb pr review --comment --body "Looks good, one nit inline"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPRReview,
}

func init() {
	prReviewCmd.Flags().BoolVarP(&prReviewApproveFlag, "approve", "a", false, "Approve the pull request")
	prReviewCmd.Flags().BoolVarP(&prReviewRequestChangesFlag, "request-changes", "r", false, "Request changes on the pull request")
	prReviewCmd.Flags().BoolVarP(&prReviewCommentFlag, "comment", "c", false, "Comment on the pull request")
	prReviewCmd.Flags().StringVarP(&prReviewBodyFlag, "body", "b", "", "Comment body")
	prCmd.AddCommand(prReviewCmd)
}

type reviewAction int

const (
	reviewApprove reviewAction = iota
	reviewRequestChanges
	reviewComment
)

var reviewActionLabels = []string{"Approve", "Request changes", "Comment"}

func runPRReview(cmd *cobra.Command, args []string) error {
	id, err := optionalPRID(args)
	if err != nil {
		return err
	}
	app, err := newAppContext(cmd, nil)
	if err != nil {
		return err
	}
	return runPRReviewWithApp(cmd, app, id)
}

func runPRReviewWithApp(cmd *cobra.Command, app *appContext, id int) error {
	ctx := commandContext(cmd)

	if prReviewCommentFlag && strings.TrimSpace(prReviewBodyFlag) == "" {
		return errors.New("a comment body is required with --comment (use --body)")
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

	var actions []reviewAction
	if prReviewApproveFlag {
		actions = append(actions, reviewApprove)
	}
	if prReviewRequestChangesFlag {
		actions = append(actions, reviewRequestChanges)
	}
	if prReviewCommentFlag {
		actions = append(actions, reviewComment)
	}

	body := prReviewBodyFlag
	if len(actions) == 0 {
		choice, err := app.prompter.Select(fmt.Sprintf("Review PR #%d:", id), reviewActionLabels, 0)
		if err != nil {
			return err
		}
		actions = []reviewAction{reviewAction(choice)}
		if actions[0] == reviewComment {
			body, err = app.prompter.Input("Comment body", "")
			if err != nil {
				return err
			}
			if body == "" {
				return errors.New("comment body must not be empty")
			}
		}
	}

	for _, action := range actions {
		if err := applyReview(ctx, app, client, repo, id, action, body); err != nil {
			return err
		}
	}
	return nil
}

func applyReview(ctx context.Context, app *appContext, client bitbucket.Bitbucket, repo remote.Coordinates, id int, action reviewAction, body string) error {
	switch action {
	case reviewApprove:
		if err := client.Approve(ctx, repo, id); err != nil {
			return err
		}
		app.printer.Success("Approved pull request #%d", id)
	case reviewRequestChanges:
		if err := client.RequestChanges(ctx, repo, id); err != nil {
			return err
		}
		app.printer.Success("Requested changes on pull request #%d", id)
	case reviewComment:
		if _, err := client.PostComment(ctx, repo, id, body); err != nil {
			return err
		}
		app.printer.Success("Commented on pull request #%d", id)
	}
	return nil
}
