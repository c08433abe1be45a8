package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
)

// CollaboratorPermission returns the user's permission on a repository in
// uppercase form (ADMIN, WRITE, READ, NONE). A user who is not a
// collaborator yields NONE rather than an error.
func (c *Client) CollaboratorPermission(ctx context.Context, owner, repo, login string) (string, error) {
	perm, resp, err := c.client.Repositories.GetPermissionLevel(ctx, owner, repo, login)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "NONE", nil
		}
		return "", fmt.Errorf("failed to get permission for %s on %s/%s: %w", login, owner, repo, err)
	}
	return strings.ToUpper(perm.GetPermission()), nil
}

// IsOrgMember reports whether login is a (public or private, as visible to
// the token) member of the organization.
func (c *Client) IsOrgMember(ctx context.Context, org, login string) (bool, error) {
	member, _, err := c.client.Organizations.IsMember(ctx, org, login)
	if err != nil {
		return false, fmt.Errorf("failed to check org membership for %s in %s: %w", login, org, err)
	}
	return member, nil
}

// CountRecentContributions sums issues, pull requests and commits authored
// by login in the repository since the given date.
func (c *Client) CountRecentContributions(ctx context.Context, owner, repo, login string, since time.Time) (int, error) {
	day := since.UTC().Format("2006-01-02")

	issueQuery := fmt.Sprintf("author:%s repo:%s/%s created:>=%s", login, owner, repo, day)
	issues, _, err := c.client.Search.Issues(ctx, issueQuery, &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to search recent issues for %s: %w", login, err)
	}

	commitQuery := fmt.Sprintf("author:%s repo:%s/%s author-date:>=%s", login, owner, repo, day)
	commits, _, err := c.client.Search.Commits(ctx, commitQuery, &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to search recent commits for %s: %w", login, err)
	}

	return issues.GetTotal() + commits.GetTotal(), nil
}

// HasAuthoredIssueOrPR reports whether login has ever opened an issue or
// pull request in the repository.
func (c *Client) HasAuthoredIssueOrPR(ctx context.Context, owner, repo, login string) (bool, error) {
	query := fmt.Sprintf("author:%s repo:%s/%s", login, owner, repo)
	result, _, err := c.client.Search.Issues(ctx, query, &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: 1},
	})
	if err != nil {
		return false, fmt.Errorf("failed to search authored items for %s: %w", login, err)
	}
	return result.GetTotal() > 0, nil
}
