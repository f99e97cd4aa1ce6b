package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcampanini/bb-cli/internal/bitbucket"
	"github.com/jmcampanini/bb-cli/internal/remote"
	"github.com/jmcampanini/bb-cli/internal/terminal"
)

// recordReviews captures review calls on the mock in order.
func recordReviews(bb *mockBitbucket) *[]string {
	var calls []string
	bb.approveFn = func(_ remote.Coordinates, id int) error {
		calls = append(calls, "approve")
		return nil
	}
	bb.requestChangesFn = func(_ remote.Coordinates, id int) error {
		calls = append(calls, "request-changes")
		return nil
	}
	bb.postCommentFn = func(_ remote.Coordinates, id int, body string) (bitbucket.Comment, error) {
		calls = append(calls, "comment:"+body)
		return bitbucket.Comment{ID: 1}, nil
	}
	return &calls
}

func TestRunPRReviewWithApp_Flags(t *testing.T) {
	tests := []struct {
		name           string
		approve        bool
		requestChanges bool
		comment        bool
		body           string
		wantCalls      []string
		wantOutput     []string
	}{
		{
			name:       "approve",
			approve:    true,
			wantCalls:  []string{"approve"},
			wantOutput: []string{"Approved pull request #7"},
		},
		{
			name:           "request changes",
			requestChanges: true,
			wantCalls:      []string{"request-changes"},
			wantOutput:     []string{"Requested changes on pull request #7"},
		},
		{
			name:       "comment",
			comment:    true,
			body:       "Nice work",
			wantCalls:  []string{"comment:Nice work"},
			wantOutput: []string{"Commented on pull request #7"},
		},
		{
			name:       "approve and comment in order",
			approve:    true,
			comment:    true,
			body:       "Ship it",
			wantCalls:  []string{"approve", "comment:Ship it"},
			wantOutput: []string{"Approved pull request #7", "Commented on pull request #7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			calls := recordReviews(env.bb)
			prReviewApproveFlag = tt.approve
			prReviewRequestChangesFlag = tt.requestChanges
			prReviewCommentFlag = tt.comment
			prReviewBodyFlag = tt.body

			cmd, app := env.build(t)
			require.NoError(t, runPRReviewWithApp(cmd, app, 7))

			assert.Equal(t, tt.wantCalls, *calls)
			for _, w := range tt.wantOutput {
				assert.Contains(t, env.stdout.String(), w)
			}
		})
	}
}

func TestRunPRReviewWithApp_CommentRequiresBody(t *testing.T) {
	env := newTestEnv(t)
	calls := recordReviews(env.bb)
	prReviewCommentFlag = true
	prReviewBodyFlag = "   "

	cmd, app := env.build(t)
	err := runPRReviewWithApp(cmd, app, 7)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--body")
	assert.Empty(t, *calls)
}

func TestRunPRReviewWithApp_Interactive(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCalls []string
		wantErr   error
	}{
		{name: "default choice approves", input: "\n", wantCalls: []string{"approve"}},
		{name: "request changes", input: "2\n", wantCalls: []string{"request-changes"}},
		{name: "comment prompts for body", input: "3\nPlease add tests\n", wantCalls: []string{"comment:Please add tests"}},
		{name: "invalid choice retried", input: "9\n1\n", wantCalls: []string{"approve"}},
		{name: "no input", input: "", wantErr: terminal.ErrNoInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.input = tt.input
			calls := recordReviews(env.bb)

			cmd, app := env.build(t)
			err := runPRReviewWithApp(cmd, app, 7)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, *calls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, *calls)
			assert.Contains(t, env.stderr.String(), "Review PR #7:")
		})
	}
}

func TestRunPRReviewWithApp_APIError(t *testing.T) {
	env := newTestEnv(t)
	prReviewApproveFlag = true
	prReviewCommentFlag = true
	prReviewBodyFlag = "never sent"

	apiErr := errors.New("forbidden")
	commented := false
	env.bb.approveFn = func(remote.Coordinates, int) error { return apiErr }
	env.bb.postCommentFn = func(remote.Coordinates, int, string) (bitbucket.Comment, error) {
		commented = true
		return bitbucket.Comment{}, nil
	}

	cmd, app := env.build(t)
	assert.ErrorIs(t, runPRReviewWithApp(cmd, app, 7), apiErr)
	assert.False(t, commented)
}
