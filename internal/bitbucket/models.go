package bitbucket

import (
	"fmt"
	"strings"
	"time"
)

type PRState string

const (
	PRStateOpen       PRState = "OPEN"
	PRStateMerged     PRState = "MERGED"
	PRStateDeclined   PRState = "DECLINED"
	PRStateSuperseded PRState = "SUPERSEDED"
)

// PRStates lists the states accepted by the pull request list endpoint.
var PRStates = []PRState{PRStateOpen, PRStateMerged, PRStateDeclined, PRStateSuperseded}

func (s PRState) String() string {
	return string(s)
}

func (s PRState) IsValid() bool {
	switch s {
	case PRStateOpen, PRStateMerged, PRStateDeclined, PRStateSuperseded:
		return true
	}
	return false
}

// ParsePRState accepts a state name in any case.
func ParsePRState(s string) (PRState, error) {
	state := PRState(strings.ToUpper(strings.TrimSpace(s)))
	if !state.IsValid() {
		return "", fmt.Errorf("invalid pull request state %q (valid: %v)", s, PRStates)
	}
	return state, nil
}

// Page is one page of a paginated collection. Next is empty on the last page.
type Page[T any] struct {
	Next     string `json:"next,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageLen  int    `json:"pagelen,omitempty"`
	Previous string `json:"previous,omitempty"`
	Size     int    `json:"size,omitempty"`
	Values   []T    `json:"values"`
}

type PullRequest struct {
	Author       User          `json:"author" yaml:"author"`
	CommentCount int           `json:"comment_count" yaml:"comment_count"`
	CreatedOn    time.Time     `json:"created_on" yaml:"created_on"`
	Description  string        `json:"description" yaml:"description"`
	Destination  Endpoint      `json:"destination" yaml:"destination"`
	ID           int           `json:"id" yaml:"id"`
	Links        Links         `json:"links" yaml:"links"`
	Participants []Participant `json:"participants,omitempty" yaml:"participants,omitempty"`
	Source       Endpoint      `json:"source" yaml:"source"`
	State        PRState       `json:"state" yaml:"state"`
	TaskCount    int           `json:"task_count" yaml:"task_count"`
	Title        string        `json:"title" yaml:"title"`
	UpdatedOn    time.Time     `json:"updated_on" yaml:"updated_on"`
}

// SourceBranch returns the name of the branch being merged.
func (pr PullRequest) SourceBranch() string {
	return pr.Source.Branch.Name
}

// DestinationBranch returns the name of the branch being merged into.
func (pr PullRequest) DestinationBranch() string {
	return pr.Destination.Branch.Name
}

// Approvers returns the participants who have approved the pull request.
func (pr PullRequest) Approvers() []User {
	var users []User
	for _, p := range pr.Participants {
		if p.Approved {
			users = append(users, p.User)
		}
	}
	return users
}

// ChangesRequestedBy returns the participants who have requested changes.
func (pr PullRequest) ChangesRequestedBy() []User {
	var users []User
	for _, p := range pr.Participants {
		if p.State == ParticipantStateChangesRequested {
			users = append(users, p.User)
		}
	}
	return users
}

// Endpoint is either side of a pull request.
type Endpoint struct {
	Branch     Branch     `json:"branch" yaml:"branch"`
	Commit     Commit     `json:"commit" yaml:"commit"`
	Repository Repository `json:"repository" yaml:"repository"`
}

type Branch struct {
	Name string `json:"name" yaml:"name"`
}

type Commit struct {
	Hash string `json:"hash" yaml:"hash"`
}

type User struct {
	AccountID   string `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Nickname    string `json:"nickname,omitempty" yaml:"nickname,omitempty"`
	UUID        string `json:"uuid" yaml:"uuid"`
}

// Name returns the display name, falling back to the nickname.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Nickname
}

const ParticipantStateChangesRequested = "changes_requested"

type Participant struct {
	Approved bool   `json:"approved" yaml:"approved"`
	Role     string `json:"role" yaml:"role"`
	State    string `json:"state,omitempty" yaml:"state,omitempty"`
	User     User   `json:"user" yaml:"user"`
}

type Repository struct {
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	FullName    string    `json:"full_name" yaml:"full_name"`
	IsPrivate   bool      `json:"is_private" yaml:"is_private"`
	Language    string    `json:"language,omitempty" yaml:"language,omitempty"`
	Links       Links     `json:"links" yaml:"links"`
	Name        string    `json:"name" yaml:"name"`
	UpdatedOn   time.Time `json:"updated_on" yaml:"updated_on"`
	UUID        string    `json:"uuid" yaml:"uuid"`
}

type Links struct {
	HTML Link `json:"html" yaml:"html"`
}

type Link struct {
	Href string `json:"href" yaml:"href"`
}

type Comment struct {
	Content   Content   `json:"content" yaml:"content"`
	CreatedOn time.Time `json:"created_on" yaml:"created_on"`
	Deleted   bool      `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	ID        int       `json:"id" yaml:"id"`
	Inline    *Inline   `json:"inline,omitempty" yaml:"inline,omitempty"`
	User      User      `json:"user" yaml:"user"`
}

type Content struct {
	HTML string `json:"html,omitempty" yaml:"html,omitempty"`
	Raw  string `json:"raw" yaml:"raw"`
}

// Inline anchors a comment to a file and, optionally, a line.
type Inline struct {
	From *int   `json:"from,omitempty" yaml:"from,omitempty"`
	Path string `json:"path" yaml:"path"`
	To   *int   `json:"to,omitempty" yaml:"to,omitempty"`
}

// Line returns the line the comment is attached to, preferring the new side.
func (i Inline) Line() (int, bool) {
	if i.To != nil {
		return *i.To, true
	}
	if i.From != nil {
		return *i.From, true
	}
	return 0, false
}

type CommitStatus struct {
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Key         string    `json:"key" yaml:"key"`
	Name        string    `json:"name" yaml:"name"`
	State       string    `json:"state" yaml:"state"` // SUCCESSFUL, FAILED, INPROGRESS or STOPPED
	UpdatedOn   time.Time `json:"updated_on" yaml:"updated_on"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
}
