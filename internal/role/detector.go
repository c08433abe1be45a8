// Package role classifies user logins into contributor roles relative to a
// repository, with process-lifetime caching and fail-open semantics.
package role

import (
	"context"
	"time"

	"github.com/spiffcs/engage/internal/log"
	"github.com/spiffcs/engage/internal/model"
)

// Role is a contributor role. Roles are mutually exclusive per (user, repo)
// at scoring time, resolved by precedence
// maintainer > partner > frequent > firstTime > base.
type Role string

const (
	RoleBase       Role = "base"
	RoleMaintainer Role = "maintainer"
	RolePartner    Role = "partner"
	RoleFrequent   Role = "frequent"
	RoleFirstTime  Role = "firstTime"
)

// Permission markers cached under the :permission key. ORG_MEMBER records a
// non-collaborator who is still an org member; READ records the failed check
// so it is not repeated.
const (
	permAdmin     = "ADMIN"
	permWrite     = "WRITE"
	permOrgMember = "ORG_MEMBER"
	permRead      = "READ"
)

const (
	// frequentThreshold is the contribution count (issues + PRs + commits in
	// the trailing window) at which a user counts as frequent.
	frequentThreshold = 3
	// contributionWindow is the trailing window for the frequent check.
	contributionWindow = 90 * 24 * time.Hour
)

// RepoClient is the GitHub surface the detector needs. *ghclient.Client
// satisfies it.
type RepoClient interface {
	CollaboratorPermission(ctx context.Context, owner, repo, login string) (string, error)
	IsOrgMember(ctx context.Context, org, login string) (bool, error)
	CountRecentContributions(ctx context.Context, owner, repo, login string, since time.Time) (int, error)
	HasAuthoredIssueOrPR(ctx context.Context, owner, repo, login string) (bool, error)
}

// Detector resolves contributor roles.
type Detector struct {
	client RepoClient
	cache  *Cache
	now    func() time.Time
}

// NewDetector creates a Detector using the given client and cache.
func NewDetector(client RepoClient, cache *Cache) *Detector {
	if cache == nil {
		cache = NewCache()
	}
	return &Detector{client: client, cache: cache, now: time.Now}
}

// Resolve returns the contributor role for login in the repository. Any
// detection failure is logged as a warning and collapses to RoleBase: a
// scoring run must never abort because role classification failed.
func (d *Detector) Resolve(ctx context.Context, login string, repo model.RepoRef, groups model.UserGroups) Role {
	r, err := d.detect(ctx, login, repo, groups)
	if err != nil {
		log.Warn("role detection failed, falling back to base",
			"login", login, "repo", repo.String(), "error", err)
		return RoleBase
	}
	return r
}

// detect runs the precedence checks, short-circuiting on the first match.
func (d *Detector) detect(ctx context.Context, login string, repo model.RepoRef, groups model.UserGroups) (Role, error) {
	key := cacheKey(login, repo.Owner, repo.Name)
	if r, ok := d.cache.role(key); ok {
		return r, nil
	}

	maintainer, err := d.isMaintainer(ctx, login, repo, groups)
	if err != nil {
		return RoleBase, err
	}

	var resolved Role
	switch {
	case maintainer:
		resolved = RoleMaintainer
	case groups.IsPartner(login):
		resolved = RolePartner
	default:
		frequent, err := d.isFrequent(ctx, login, repo)
		if err != nil {
			return RoleBase, err
		}
		if frequent {
			resolved = RoleFrequent
			break
		}
		firstTime, err := d.isFirstTime(ctx, login, repo)
		if err != nil {
			return RoleBase, err
		}
		if firstTime {
			resolved = RoleFirstTime
		} else {
			resolved = RoleBase
		}
	}

	d.cache.setRole(key, resolved)
	log.Debug("resolved contributor role", "login", login, "repo", repo.String(), "role", resolved)
	return resolved, nil
}

// isMaintainer checks the configured internal list, then collaborator
// permission, then organization membership. The permission lookup result is
// cached under the :permission suffix, including the negative READ marker.
func (d *Detector) isMaintainer(ctx context.Context, login string, repo model.RepoRef, groups model.UserGroups) (bool, error) {
	if groups.IsInternal(login) {
		return true, nil
	}

	key := cacheKey(login, repo.Owner, repo.Name) + ":permission"
	perm, ok := d.cache.permission(key)
	if !ok {
		var err error
		perm, err = d.lookupPermission(ctx, login, repo)
		if err != nil {
			return false, err
		}
		d.cache.setPermission(key, perm)
	}

	switch perm {
	case permAdmin, permWrite, permOrgMember:
		return true, nil
	default:
		return false, nil
	}
}

func (d *Detector) lookupPermission(ctx context.Context, login string, repo model.RepoRef) (string, error) {
	perm, err := d.client.CollaboratorPermission(ctx, repo.Owner, repo.Name, login)
	if err != nil {
		return "", err
	}
	if perm == permAdmin || perm == permWrite {
		return perm, nil
	}

	// Not a collaborator with push access; org membership still counts as
	// maintainer-equivalent.
	member, err := d.client.IsOrgMember(ctx, repo.Owner, login)
	if err != nil {
		return "", err
	}
	if member {
		return permOrgMember, nil
	}
	return permRead, nil
}

// isFrequent checks the trailing-window contribution count, cached under the
// :contributions suffix.
func (d *Detector) isFrequent(ctx context.Context, login string, repo model.RepoRef) (bool, error) {
	key := cacheKey(login, repo.Owner, repo.Name) + ":contributions"
	count, ok := d.cache.contributionCount(key)
	if !ok {
		since := d.now().Add(-contributionWindow)
		var err error
		count, err = d.client.CountRecentContributions(ctx, repo.Owner, repo.Name, login, since)
		if err != nil {
			return false, err
		}
		d.cache.setContributionCount(key, count)
	}
	return count >= frequentThreshold, nil
}

// isFirstTime reports whether the user has never authored an issue or PR in
// the repository.
func (d *Detector) isFirstTime(ctx context.Context, login string, repo model.RepoRef) (bool, error) {
	authored, err := d.client.HasAuthoredIssueOrPR(ctx, repo.Owner, repo.Name, login)
	if err != nil {
		return false, err
	}
	return !authored, nil
}
