package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spiffcs/engage/internal/ghclient"
)

// fakeGQL is a scripted GraphQL executor. respond returns a JSON body that
// is decoded into out, mimicking the real client.
type fakeGQL struct {
	calls   []map[string]any
	queries []string
	respond func(query string, vars map[string]any) (string, error)
}

func (f *fakeGQL) GraphQL(_ context.Context, query string, vars map[string]any, out any) error {
	f.calls = append(f.calls, vars)
	f.queries = append(f.queries, query)
	body, err := f.respond(query, vars)
	if err != nil {
		return err
	}
	if out == nil || body == "" {
		return nil
	}
	return json.Unmarshal([]byte(body), out)
}

func issueBody(commentsPage, reactionsPage string) string {
	return fmt.Sprintf(`{
		"repository": {
			"issue": {
				"id": "I_1",
				"title": "flaky test",
				"body": "details",
				"state": "OPEN",
				"createdAt": "2024-01-01T00:00:00Z",
				"updatedAt": "2024-01-02T00:00:00Z",
				"author": {"__typename": "User", "login": "alice"},
				"assignees": {"nodes": [{"login": "bob"}]},
				"closedByPullRequestsReferences": {"totalCount": 1},
				"comments": %s,
				"reactions": %s
			}
		}
	}`, commentsPage, reactionsPage)
}

func commentsPage(hasNext bool, cursor string, logins ...string) string {
	nodes := make([]string, 0, len(logins))
	for i, l := range logins {
		nodes = append(nodes, fmt.Sprintf(`{
			"id": "IC_%s_%d",
			"createdAt": "2024-01-01T12:00:00Z",
			"author": {"__typename": "User", "login": "%s"},
			"reactions": {"pageInfo": {"hasNextPage": false, "endCursor": ""}, "nodes": []}
		}`, l, i, l))
	}
	return fmt.Sprintf(`{"pageInfo": {"hasNextPage": %t, "endCursor": "%s"}, "nodes": [%s]}`,
		hasNext, cursor, strings.Join(nodes, ","))
}

func reactionsPage(hasNext bool, cursor string, logins ...string) string {
	nodes := make([]string, 0, len(logins))
	for _, l := range logins {
		nodes = append(nodes, fmt.Sprintf(`{
			"content": "THUMBS_UP",
			"createdAt": "2024-01-01T13:00:00Z",
			"user": {"login": "%s"}
		}`, l))
	}
	return fmt.Sprintf(`{"pageInfo": {"hasNextPage": %t, "endCursor": "%s"}, "nodes": [%s]}`,
		hasNext, cursor, strings.Join(nodes, ","))
}

func TestFetchIssueSinglePage(t *testing.T) {
	gql := &fakeGQL{
		respond: func(_ string, _ map[string]any) (string, error) {
			return issueBody(
				commentsPage(false, "", "carol"),
				reactionsPage(false, "", "dave"),
			), nil
		},
	}

	c := New(gql)
	issue, err := c.FetchIssue(context.Background(), "acme", "widgets", 42)
	if err != nil {
		t.Fatalf("FetchIssue() error = %v", err)
	}

	if len(gql.calls) != 1 {
		t.Errorf("expected 1 query, got %d", len(gql.calls))
	}
	if issue.User.Login != "alice" {
		t.Errorf("author = %q, want alice", issue.User.Login)
	}
	if len(issue.Assignees) != 1 || issue.Assignees[0].Login != "bob" {
		t.Errorf("assignees = %v, want [bob]", issue.Assignees)
	}
	if len(issue.Comments) != 1 || issue.Comments[0].User.Login != "carol" {
		t.Errorf("comments = %v, want one from carol", issue.Comments)
	}
	if len(issue.Reactions) != 1 || issue.Reactions[0].User.Login != "dave" {
		t.Errorf("reactions = %v, want one from dave", issue.Reactions)
	}
	if issue.LinkedPullRequests != 1 {
		t.Errorf("LinkedPullRequests = %d, want 1", issue.LinkedPullRequests)
	}
}

func TestFetchIssueTwoAxisPagination(t *testing.T) {
	// Comments need three pages, reactions two. After the reactions axis
	// finishes, subsequent queries must request a zero-size reactions page.
	gql := &fakeGQL{}
	gql.respond = func(_ string, vars map[string]any) (string, error) {
		switch len(gql.calls) {
		case 1:
			return issueBody(
				commentsPage(true, "c1", "u1"),
				reactionsPage(true, "r1", "ra"),
			), nil
		case 2:
			if vars["commentsAfter"] != "c1" || vars["reactionsAfter"] != "r1" {
				return "", fmt.Errorf("unexpected cursors: %v", vars)
			}
			return issueBody(
				commentsPage(true, "c2", "u2"),
				reactionsPage(false, "", "rb"),
			), nil
		case 3:
			if got := vars["reactionsFirst"]; got != 0 {
				return "", fmt.Errorf("finished reactions axis was re-fetched: reactionsFirst=%v", got)
			}
			if _, ok := vars["reactionsAfter"]; ok {
				return "", fmt.Errorf("finished reactions axis got a cursor: %v", vars)
			}
			// The zero-size page still reports hasNextPage for nodes it
			// never returned; the collector must not believe it.
			return issueBody(
				commentsPage(false, "", "u3"),
				reactionsPage(true, "bogus"),
			), nil
		default:
			return "", fmt.Errorf("too many queries")
		}
	}

	c := New(gql)
	issue, err := c.FetchIssue(context.Background(), "acme", "widgets", 42)
	if err != nil {
		t.Fatalf("FetchIssue() error = %v", err)
	}

	if len(gql.calls) != 3 {
		t.Fatalf("expected 3 queries, got %d", len(gql.calls))
	}

	var commenters []string
	for _, c := range issue.Comments {
		commenters = append(commenters, c.User.Login)
	}
	want := []string{"u1", "u2", "u3"}
	if len(commenters) != len(want) {
		t.Fatalf("commenters = %v, want %v", commenters, want)
	}
	for i := range want {
		if commenters[i] != want[i] {
			t.Errorf("comments out of page order: %v, want %v", commenters, want)
			break
		}
	}
	if len(issue.Reactions) != 2 {
		t.Errorf("reactions = %d, want 2", len(issue.Reactions))
	}
}

func TestFetchIssueNestedCommentReactions(t *testing.T) {
	gql := &fakeGQL{}
	gql.respond = func(query string, vars map[string]any) (string, error) {
		if strings.Contains(query, "CommentReactions") {
			if vars["id"] != "IC_1" || vars["after"] != "cr1" {
				return "", fmt.Errorf("unexpected node vars: %v", vars)
			}
			return fmt.Sprintf(`{"node": {"reactions": %s}}`, reactionsPage(false, "", "late")), nil
		}
		comments := fmt.Sprintf(`{"pageInfo": {"hasNextPage": false, "endCursor": ""}, "nodes": [{
			"id": "IC_1",
			"createdAt": "2024-01-01T12:00:00Z",
			"author": {"__typename": "User", "login": "carol"},
			"reactions": %s
		}]}`, reactionsPage(true, "cr1", "early"))
		return issueBody(comments, reactionsPage(false, "")), nil
	}

	c := New(gql)
	issue, err := c.FetchIssue(context.Background(), "acme", "widgets", 42)
	if err != nil {
		t.Fatalf("FetchIssue() error = %v", err)
	}

	if len(issue.Comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(issue.Comments))
	}
	reactors := make([]string, 0, 2)
	for _, r := range issue.Comments[0].Reactions {
		reactors = append(reactors, r.User.Login)
	}
	if len(reactors) != 2 || reactors[0] != "early" || reactors[1] != "late" {
		t.Errorf("comment reactions = %v, want [early late]", reactors)
	}
}

func TestFetchIssueNotFound(t *testing.T) {
	gql := &fakeGQL{
		respond: func(_ string, _ map[string]any) (string, error) {
			return `{"repository": {"issue": null}}`, nil
		},
	}

	c := New(gql)
	_, err := c.FetchIssue(context.Background(), "acme", "widgets", 404)
	if !errors.Is(err, ErrIssueNotFound) {
		t.Errorf("error = %v, want ErrIssueNotFound", err)
	}
}

func projectItemsBody(scope string, hasNext bool, cursor string, nodes ...string) string {
	return fmt.Sprintf(`{"%s": {"projectV2": {
		"id": "PVT_1",
		"number": 5,
		"title": "Roadmap",
		"items": {
			"pageInfo": {"hasNextPage": %t, "endCursor": "%s"},
			"nodes": [%s]
		}
	}}}`, scope, hasNext, cursor, strings.Join(nodes, ","))
}

func issueItemNode(id string, number int) string {
	return fmt.Sprintf(`{"id": "%s", "content": {
		"__typename": "Issue",
		"id": "I_%d",
		"number": %d,
		"repository": {"name": "widgets", "owner": {"login": "acme"}}
	}}`, id, number, number)
}

func TestFetchProjectItemsPagination(t *testing.T) {
	draft := `{"id": "PVTI_draft", "content": {"__typename": "DraftIssue"}}`

	gql := &fakeGQL{}
	gql.respond = func(_ string, vars map[string]any) (string, error) {
		if _, ok := vars["after"]; !ok {
			return projectItemsBody("organization", true, "p1", issueItemNode("PVTI_1", 1), draft), nil
		}
		if vars["after"] != "p1" {
			return "", fmt.Errorf("unexpected cursor: %v", vars["after"])
		}
		return projectItemsBody("organization", false, "", issueItemNode("PVTI_2", 2)), nil
	}

	c := New(gql)
	project, items, err := c.FetchProjectItems(context.Background(), "acme", 5)
	if err != nil {
		t.Fatalf("FetchProjectItems() error = %v", err)
	}

	if len(gql.calls) != 2 {
		t.Errorf("expected exactly 2 queries, got %d", len(gql.calls))
	}
	if project.ID != "PVT_1" || project.Number != 5 {
		t.Errorf("project = %+v, want PVT_1 number 5", project)
	}
	// Union of both pages in page order; the draft item is silently skipped.
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].ID != "PVTI_1" || items[1].ID != "PVTI_2" {
		t.Errorf("items out of page order: %v", items)
	}
	if items[0].Number != 1 || items[0].Owner != "acme" || items[0].Repo != "widgets" {
		t.Errorf("item 0 = %+v", items[0])
	}
}

func TestFetchProjectItemsUserFallback(t *testing.T) {
	gql := &fakeGQL{}
	gql.respond = func(query string, _ map[string]any) (string, error) {
		if strings.Contains(query, "organization(") {
			return "", fmt.Errorf("%w: could not resolve organization", ghclient.ErrNotFound)
		}
		return projectItemsBody("user", false, "", issueItemNode("PVTI_1", 1)), nil
	}

	c := New(gql)
	project, items, err := c.FetchProjectItems(context.Background(), "someuser", 5)
	if err != nil {
		t.Fatalf("FetchProjectItems() error = %v", err)
	}
	if project == nil || len(items) != 1 {
		t.Errorf("project = %v items = %v, want user-scoped project with 1 item", project, items)
	}
}

func TestFetchProjectNotFound(t *testing.T) {
	gql := &fakeGQL{
		respond: func(_ string, _ map[string]any) (string, error) {
			return `{"organization": {"projectV2": null}}`, nil
		},
	}

	c := New(gql)
	_, _, err := c.FetchProjectItems(context.Background(), "acme", 99)
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("error = %v, want ErrProjectNotFound", err)
	}
}
