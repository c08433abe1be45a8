// Package engage computes engagement scores for issues and drives the
// single-issue and whole-project scoring flows.
package engage

import (
	"time"

	"github.com/spiffcs/engage/config"
	"github.com/spiffcs/engage/internal/model"
	"github.com/spiffcs/engage/internal/role"
)

// Resolver maps a login to its contributor role for the issue's repository.
// A nil Resolver treats every login as base, which is also the fast path
// when no factor carries role weights.
type Resolver func(login string) role.Role

// Calculate computes the engagement score for an issue as of now.
func Calculate(issue *model.IssueDetails, weights config.Weights, resolve Resolver) int {
	return calculateAt(issue, weights, resolve, time.Now())
}

// calculateAt is the shared formula. Comments and reactions contribute one
// weight term per event; contributors contribute one term per unique login
// across author, assignees and commenters. The two recency terms are a step
// function worth their full weight only on the day of the event.
func calculateAt(issue *model.IssueDetails, weights config.Weights, resolve Resolver, now time.Time) int {
	var total float64

	for _, c := range issue.Comments {
		total += factorWeight(weights.Comments, c.User.Login, resolve)
	}

	for _, r := range issue.Reactions {
		total += factorWeight(weights.Reactions, r.User.Login, resolve)
	}
	for _, c := range issue.Comments {
		for _, r := range c.Reactions {
			total += factorWeight(weights.Reactions, r.User.Login, resolve)
		}
	}

	for _, login := range contributors(issue) {
		total += factorWeight(weights.Contributors, login, resolve)
	}

	total += float64(recencyFactor(now, issue.UpdatedAt)) * weights.LastActivity
	total += float64(recencyFactor(now, issue.CreatedAt)) * weights.IssueAge
	total += float64(issue.LinkedPullRequests) * weights.LinkedPullRequests

	return int(total)
}

// factorWeight resolves one factor's weight for a login. Flat factors never
// consult the resolver.
func factorWeight(f config.FactorWeight, login string, resolve Resolver) float64 {
	if !f.IsRoleBased() {
		return f.Flat
	}
	r := role.RoleBase
	if resolve != nil {
		r = resolve(login)
	}
	return f.ForRole(string(r))
}

// contributors returns the unique logins of the author, assignees and
// commenters, in first-seen order. A login appearing in several capacities
// still counts once.
func contributors(issue *model.IssueDetails) []string {
	seen := make(map[string]bool)
	var logins []string
	add := func(login string) {
		if login == "" || seen[login] {
			return
		}
		seen[login] = true
		logins = append(logins, login)
	}

	add(issue.User.Login)
	for _, a := range issue.Assignees {
		add(a.Login)
	}
	for _, c := range issue.Comments {
		add(c.User.Login)
	}
	return logins
}

// recencyFactor is floor(1/days) with days clamped to at least 1. It yields
// 1 for events within the last day and 0 for anything older. The floored
// step is deliberate; changing it would shift every stored score.
func recencyFactor(now, t time.Time) int {
	days := int(now.Sub(t).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return 1 / days
}
