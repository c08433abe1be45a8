// Package collector fetches complete issue and project-item snapshots from
// the GitHub GraphQL API, walking cursor-paginated connections to exhaustion.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/spiffcs/engage/internal/ghclient"
	"github.com/spiffcs/engage/internal/log"
	"github.com/spiffcs/engage/internal/model"
)

// Fatal collection errors. An issue or project that cannot be found aborts
// the whole scoring pass; partial snapshots are never returned.
var (
	ErrIssueNotFound   = errors.New("issue not found")
	ErrProjectNotFound = errors.New("project not found")
)

// defaultPageSize is the connection page size requested per query.
const defaultPageSize = 100

// GraphQLDoer executes a GraphQL query with variables, decoding the data
// payload into out. *ghclient.Client satisfies it; tests supply mocks.
type GraphQLDoer interface {
	GraphQL(ctx context.Context, query string, variables map[string]any, out any) error
}

// Collector assembles complete IssueDetails snapshots.
type Collector struct {
	gql      GraphQLDoer
	pageSize int
}

// New creates a Collector backed by the given GraphQL executor.
func New(gql GraphQLDoer) *Collector {
	return &Collector{gql: gql, pageSize: defaultPageSize}
}

// cursor tracks one connection's pagination state.
type cursor struct {
	hasNext bool
	end     string
}

func (c *cursor) advance(p pageInfo) {
	c.hasNext = p.HasNextPage
	c.end = p.EndCursor
}

// FetchIssue returns a complete IssueDetails with all comments and all
// reactions, regardless of page size limits. The comments and reactions
// connections are two independent cursor state machines driven by a single
// loop; a finished axis is re-queried with page size zero so its nodes are
// not fetched again.
func (c *Collector) FetchIssue(ctx context.Context, owner, repo string, number int) (*model.IssueDetails, error) {
	vars := map[string]any{
		"owner":          owner,
		"repo":           repo,
		"number":         number,
		"commentsFirst":  c.pageSize,
		"reactionsFirst": c.pageSize,
	}

	var payload issuePayload
	if err := c.gql.GraphQL(ctx, issueEngagementQuery, vars, &payload); err != nil {
		if errors.Is(err, ghclient.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s/%s#%d", ErrIssueNotFound, owner, repo, number)
		}
		return nil, fmt.Errorf("failed to fetch issue %s/%s#%d: %w", owner, repo, number, err)
	}
	iss := payload.Repository.Issue
	if iss == nil {
		return nil, fmt.Errorf("%w: %s/%s#%d", ErrIssueNotFound, owner, repo, number)
	}

	details := &model.IssueDetails{
		ID:                 iss.ID,
		Owner:              owner,
		Repo:               repo,
		Number:             number,
		Title:              iss.Title,
		Body:               iss.Body,
		State:              iss.State,
		CreatedAt:          iss.CreatedAt,
		UpdatedAt:          iss.UpdatedAt,
		ClosedAt:           iss.ClosedAt,
		User:               iss.Author.toUser(),
		LinkedPullRequests: iss.ClosedByPullRequestsReferences.TotalCount,
	}
	for i := range iss.Assignees.Nodes {
		details.Assignees = append(details.Assignees, iss.Assignees.Nodes[i].toUser())
	}

	commentWire := append([]commentNode(nil), iss.Comments.Nodes...)
	for _, r := range iss.Reactions.Nodes {
		details.Reactions = append(details.Reactions, r.toModel())
	}

	var comments, reactions cursor
	comments.advance(iss.Comments.PageInfo)
	reactions.advance(iss.Reactions.PageInfo)

	for comments.hasNext || reactions.hasNext {
		pageVars := map[string]any{
			"owner":  owner,
			"repo":   repo,
			"number": number,
		}
		if comments.hasNext {
			pageVars["commentsFirst"] = c.pageSize
			pageVars["commentsAfter"] = comments.end
		} else {
			pageVars["commentsFirst"] = 0
		}
		if reactions.hasNext {
			pageVars["reactionsFirst"] = c.pageSize
			pageVars["reactionsAfter"] = reactions.end
		} else {
			pageVars["reactionsFirst"] = 0
		}

		var page issuePayload
		if err := c.gql.GraphQL(ctx, issueEngagementQuery, pageVars, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch issue page for %s/%s#%d: %w", owner, repo, number, err)
		}
		next := page.Repository.Issue
		if next == nil {
			return nil, fmt.Errorf("%w: %s/%s#%d", ErrIssueNotFound, owner, repo, number)
		}

		// Only the axis that was actually requested may advance; a zero-size
		// page reports hasNextPage for nodes it never returned.
		if comments.hasNext {
			commentWire = append(commentWire, next.Comments.Nodes...)
			comments.advance(next.Comments.PageInfo)
		}
		if reactions.hasNext {
			for _, r := range next.Reactions.Nodes {
				details.Reactions = append(details.Reactions, r.toModel())
			}
			reactions.advance(next.Reactions.PageInfo)
		}
	}

	for i := range commentWire {
		comment, err := c.collectComment(ctx, &commentWire[i])
		if err != nil {
			return nil, err
		}
		details.Comments = append(details.Comments, comment)
	}

	log.Debug("fetched issue",
		"issue", fmt.Sprintf("%s/%s#%d", owner, repo, number),
		"comments", len(details.Comments),
		"reactions", len(details.Reactions))
	return details, nil
}

// collectComment converts one comment wire node, paginating its nested
// reaction connection when it exceeds the first page (rare in practice).
func (c *Collector) collectComment(ctx context.Context, node *commentNode) (model.CommentData, error) {
	comment := model.CommentData{
		User:      node.Author.toUser(),
		CreatedAt: node.CreatedAt,
	}
	for _, r := range node.Reactions.Nodes {
		comment.Reactions = append(comment.Reactions, r.toModel())
	}

	var page cursor
	page.advance(node.Reactions.PageInfo)
	for page.hasNext {
		vars := map[string]any{"id": node.ID, "after": page.end}
		var payload commentReactionsPayload
		if err := c.gql.GraphQL(ctx, commentReactionsQuery, vars, &payload); err != nil {
			return comment, fmt.Errorf("failed to fetch comment reactions: %w", err)
		}
		if payload.Node == nil {
			break
		}
		for _, r := range payload.Node.Reactions.Nodes {
			comment.Reactions = append(comment.Reactions, r.toModel())
		}
		page.advance(payload.Node.Reactions.PageInfo)
	}
	return comment, nil
}

// FetchProjectItems walks a project's item connection by a single cursor and
// returns the rows whose content is an issue. Other content types (draft
// items, pull requests) are skipped without logging. The owner is resolved
// as an organization first, then as a user.
func (c *Collector) FetchProjectItems(ctx context.Context, owner string, number int) (*model.Project, []model.ProjectItem, error) {
	query := projectItemsOrgQuery
	after := ""
	var project *model.Project
	var items []model.ProjectItem

	for {
		vars := map[string]any{"owner": owner, "number": number}
		if after != "" {
			vars["after"] = after
		}

		var payload projectPayload
		err := c.gql.GraphQL(ctx, query, vars, &payload)
		if err != nil && project == nil && query == projectItemsOrgQuery && errors.Is(err, ghclient.ErrNotFound) {
			log.Debug("owner is not an organization, retrying project lookup as user", "owner", owner)
			query = projectItemsUserQuery
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch project %s/%d: %w", owner, number, err)
		}

		wire := payload.projectV2()
		if wire == nil {
			return nil, nil, fmt.Errorf("%w: %s project %d", ErrProjectNotFound, owner, number)
		}
		if project == nil {
			project = &model.Project{ID: wire.ID, Number: wire.Number, Title: wire.Title, Owner: owner}
		}

		for _, n := range wire.Items.Nodes {
			if n.Content.Typename != "Issue" {
				continue
			}
			items = append(items, model.ProjectItem{
				ID:      n.ID,
				IssueID: n.Content.ID,
				Owner:   n.Content.Repository.Owner.Login,
				Repo:    n.Content.Repository.Name,
				Number:  n.Content.Number,
			})
		}

		if !wire.Items.PageInfo.HasNextPage {
			break
		}
		after = wire.Items.PageInfo.EndCursor
	}

	log.Debug("fetched project items", "project", number, "owner", owner, "issues", len(items))
	return project, items, nil
}
