// Package model contains domain types for the engage application.
// These types are independent of any external GitHub library.
package model

import "time"

// UserType classifies the kind of account behind a login.
type UserType string

const (
	UserTypeUser UserType = "User"
	UserTypeBot  UserType = "Bot"
	UserTypeOrg  UserType = "Organization"
)

// UserInfo identifies a GitHub account.
type UserInfo struct {
	Login string   `json:"login"`
	Type  UserType `json:"type,omitempty"`
}

// RepoRef identifies a repository by owner and name.
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// String returns the owner/name form of the reference.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// ReactionData is a single reaction on an issue or comment.
type ReactionData struct {
	User      UserInfo  `json:"user"`
	Reaction  string    `json:"reaction"` // THUMBS_UP, HEART, ...
	CreatedAt time.Time `json:"createdAt"`
}

// CommentData is a single issue comment with its own reactions.
type CommentData struct {
	User      UserInfo       `json:"user"`
	CreatedAt time.Time      `json:"createdAt"`
	Reactions []ReactionData `json:"reactions,omitempty"`
}

// IssueDetails is a complete snapshot of an issue and its activity,
// fetched once per scoring pass and read-only downstream.
type IssueDetails struct {
	ID        string     `json:"id"`
	Owner     string     `json:"owner"`
	Repo      string     `json:"repo"`
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`

	User      UserInfo   `json:"user"`
	Assignees []UserInfo `json:"assignees,omitempty"`

	Comments  []CommentData  `json:"comments,omitempty"`
	Reactions []ReactionData `json:"reactions,omitempty"`

	// LinkedPullRequests counts PRs that would close this issue.
	LinkedPullRequests int `json:"linkedPullRequests,omitempty"`
}

// Repo returns the repository reference for the issue.
func (d *IssueDetails) RepoRef() RepoRef {
	return RepoRef{Owner: d.Owner, Name: d.Repo}
}
