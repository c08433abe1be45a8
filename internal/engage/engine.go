package engage

import (
	"context"
	"errors"
	"fmt"

	"github.com/spiffcs/engage/config"
	"github.com/spiffcs/engage/internal/log"
	"github.com/spiffcs/engage/internal/model"
	"github.com/spiffcs/engage/internal/role"
	"golang.org/x/sync/errgroup"
)

// ErrNoTarget is returned when neither a project number nor an issue number
// is configured.
var ErrNoTarget = errors.New("either project number or issue number must be specified")

// DataSource provides issue and project snapshots. *collector.Collector
// satisfies it.
type DataSource interface {
	FetchIssue(ctx context.Context, owner, repo string, number int) (*model.IssueDetails, error)
	FetchProjectItems(ctx context.Context, owner string, number int) (*model.Project, []model.ProjectItem, error)
}

// RoleResolver resolves contributor roles. *role.Detector satisfies it.
type RoleResolver interface {
	Resolve(ctx context.Context, login string, repo model.RepoRef, groups model.UserGroups) role.Role
}

// ProgressFunc is called as project items finish scoring.
type ProgressFunc func(completed, total int)

// Engine orchestrates engagement scoring: it selects single-issue or
// whole-project mode, drives the collector and the calculators, and
// assembles the response.
type Engine struct {
	cfg        *config.Config
	ds         DataSource
	roles      RoleResolver
	onProgress ProgressFunc
}

// NewEngine creates an Engine. roles may be nil when no factor is
// role-based; onProgress may be nil (no-op).
func NewEngine(cfg *config.Config, ds DataSource, roles RoleResolver, onProgress ProgressFunc) *Engine {
	return &Engine{cfg: cfg, ds: ds, roles: roles, onProgress: onProgress}
}

func (e *Engine) reportProgress(completed, total int) {
	if e.onProgress != nil {
		e.onProgress(completed, total)
	}
}

// Run computes engagement scores for the configured target. Project mode
// wins when both a project number and an issue number are set.
func (e *Engine) Run(ctx context.Context) (*model.EngagementResponse, error) {
	switch {
	case e.cfg.ProjectNumber > 0:
		return e.runProject(ctx)
	case e.cfg.IssueNumber > 0:
		return e.runIssue(ctx)
	default:
		return nil, ErrNoTarget
	}
}

// runIssue scores a single issue. The resulting item carries no project
// item id.
func (e *Engine) runIssue(ctx context.Context) (*model.EngagementResponse, error) {
	issue, err := e.ds.FetchIssue(ctx, e.cfg.Owner, e.cfg.Repo, e.cfg.IssueNumber)
	if err != nil {
		return nil, err
	}

	item := e.scoreIssue(ctx, issue, "")
	return &model.EngagementResponse{
		Items:      []model.EngagementItem{item},
		TotalItems: 1,
	}, nil
}

// runProject scores every issue on the project board through a bounded
// worker pool. Each issue's own pagination stays strictly sequential inside
// FetchIssue; only whole issues run concurrently. Results keep project-item
// order.
func (e *Engine) runProject(ctx context.Context) (*model.EngagementResponse, error) {
	project, items, err := e.ds.FetchProjectItems(ctx, e.cfg.Owner, e.cfg.ProjectNumber)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		log.Warn("project has no issue items", "project", e.cfg.ProjectNumber, "owner", e.cfg.Owner)
		return &model.EngagementResponse{
			Items:      []model.EngagementItem{},
			TotalItems: 0,
			Project:    project,
		}, nil
	}

	workers := e.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]model.EngagementItem, len(items))
	completed := 0
	e.reportProgress(0, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	scored := make(chan int, len(items))

	for i := range items {
		i := i
		g.Go(func() error {
			pi := items[i]
			issue, err := e.ds.FetchIssue(gctx, pi.Owner, pi.Repo, pi.Number)
			if err != nil {
				return fmt.Errorf("failed to score project item %s: %w", pi.ID, err)
			}
			results[i] = e.scoreIssue(gctx, issue, pi.ID)
			scored <- i
			return nil
		})
	}

	// Progress accounting happens here so the workers stay lock-free.
	done := make(chan struct{})
	go func() {
		for range scored {
			completed++
			e.reportProgress(completed, len(items))
		}
		close(done)
	}()

	err = g.Wait()
	close(scored)
	<-done
	if err != nil {
		return nil, err
	}

	return &model.EngagementResponse{
		Items:      results,
		TotalItems: len(results),
		Project:    project,
	}, nil
}

// scoreIssue computes the current and historical score for one issue and
// classifies the trend.
func (e *Engine) scoreIssue(ctx context.Context, issue *model.IssueDetails, projectItemID string) model.EngagementItem {
	resolve := e.resolverFor(ctx, issue)

	score := Calculate(issue, e.cfg.Weights, resolve)
	previous := CalculatePrevious(issue, e.cfg.Weights, resolve, DefaultCutoffDays)

	engagement := model.EngagementScore{
		Score:         score,
		PreviousScore: previous,
	}
	if score > previous {
		engagement.Classification = model.ClassificationHot
	}

	log.Info("scored issue",
		"issue", fmt.Sprintf("%s/%s#%d", issue.Owner, issue.Repo, issue.Number),
		"score", score, "previous", previous)

	return model.EngagementItem{
		ProjectItemID: projectItemID,
		Owner:         issue.Owner,
		Repo:          issue.Repo,
		Number:        issue.Number,
		Title:         issue.Title,
		Engagement:    engagement,
	}
}

// resolverFor returns a role resolver bound to the issue's repository, or
// nil when role resolution is unnecessary. Flat-weight configurations never
// touch the role detector.
func (e *Engine) resolverFor(ctx context.Context, issue *model.IssueDetails) Resolver {
	if e.roles == nil || !e.cfg.Weights.HasRoleWeights() {
		return nil
	}
	repo := issue.RepoRef()
	return func(login string) role.Role {
		return e.roles.Resolve(ctx, login, repo, e.cfg.Groups)
	}
}
