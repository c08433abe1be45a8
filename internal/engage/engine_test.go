package engage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spiffcs/engage/config"
	"github.com/spiffcs/engage/internal/model"
	"github.com/spiffcs/engage/internal/role"
)

// fakeDataSource serves canned issues and project items.
type fakeDataSource struct {
	mu           sync.Mutex
	issues       map[string]*model.IssueDetails
	project      *model.Project
	projectItems []model.ProjectItem
	fetchedKeys  []string
}

func issueKey(owner, repo string, number int) string {
	return fmt.Sprintf("%s/%s#%d", owner, repo, number)
}

func (f *fakeDataSource) FetchIssue(_ context.Context, owner, repo string, number int) (*model.IssueDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := issueKey(owner, repo, number)
	f.fetchedKeys = append(f.fetchedKeys, key)
	issue, ok := f.issues[key]
	if !ok {
		return nil, fmt.Errorf("issue not found: %s", key)
	}
	return issue, nil
}

func (f *fakeDataSource) FetchProjectItems(_ context.Context, _ string, _ int) (*model.Project, []model.ProjectItem, error) {
	if f.project == nil {
		return nil, nil, errors.New("project not found")
	}
	return f.project, f.projectItems, nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Owner = "acme"
	cfg.Repo = "widgets"
	return cfg
}

func TestRunRequiresTarget(t *testing.T) {
	cfg := testConfig()
	e := NewEngine(cfg, &fakeDataSource{}, nil, nil)

	_, err := e.Run(context.Background())
	if !errors.Is(err, ErrNoTarget) {
		t.Errorf("Run() error = %v, want ErrNoTarget", err)
	}
}

func TestRunSingleIssue(t *testing.T) {
	now := time.Now()
	ds := &fakeDataSource{
		issues: map[string]*model.IssueDetails{
			"acme/widgets#42": makeIssue(now, now),
		},
	}

	cfg := testConfig()
	cfg.IssueNumber = 42
	e := NewEngine(cfg, ds, nil, nil)

	resp, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if resp.TotalItems != 1 || len(resp.Items) != 1 {
		t.Fatalf("response = %+v, want exactly one item", resp)
	}
	item := resp.Items[0]
	if item.ProjectItemID != "" {
		t.Errorf("single-issue item has project item id %q, want empty", item.ProjectItemID)
	}
	if item.Engagement.Score != 4 {
		t.Errorf("score = %d, want 4", item.Engagement.Score)
	}
	// Fresh issue: previous is 0, so the item is Hot.
	if item.Engagement.Classification != model.ClassificationHot {
		t.Errorf("classification = %q, want Hot", item.Engagement.Classification)
	}
	if resp.Project != nil {
		t.Errorf("single-issue response carries project %+v", resp.Project)
	}
}

func TestRunProjectMode(t *testing.T) {
	now := time.Now()
	old := now.Add(-30 * 24 * time.Hour)

	// Issue 1 is fresh (Hot); issue 2 is stale (not Hot).
	staleIssue := makeIssue(old, old)
	staleIssue.Number = 2

	ds := &fakeDataSource{
		issues: map[string]*model.IssueDetails{
			"acme/widgets#42": makeIssue(now, now),
			"acme/widgets#2":  staleIssue,
		},
		project: &model.Project{ID: "PVT_1", Number: 5, Owner: "acme"},
		projectItems: []model.ProjectItem{
			{ID: "PVTI_1", Owner: "acme", Repo: "widgets", Number: 42},
			{ID: "PVTI_2", Owner: "acme", Repo: "widgets", Number: 2},
		},
	}

	cfg := testConfig()
	cfg.ProjectNumber = 5
	cfg.Workers = 4

	var progressCalls int
	e := NewEngine(cfg, ds, nil, func(completed, total int) { progressCalls++ })

	resp, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if resp.TotalItems != 2 || len(resp.Items) != 2 {
		t.Fatalf("response items = %d, want 2", len(resp.Items))
	}
	// Results keep project-item order regardless of worker scheduling.
	if resp.Items[0].ProjectItemID != "PVTI_1" || resp.Items[1].ProjectItemID != "PVTI_2" {
		t.Errorf("items out of order: %v, %v", resp.Items[0].ProjectItemID, resp.Items[1].ProjectItemID)
	}
	if resp.Items[0].Engagement.Classification != model.ClassificationHot {
		t.Errorf("fresh issue classification = %q, want Hot", resp.Items[0].Engagement.Classification)
	}
	// Stale issue: score equals previous, so classification is absent.
	if resp.Items[1].Engagement.Classification != "" {
		t.Errorf("stale issue classification = %q, want empty", resp.Items[1].Engagement.Classification)
	}
	if resp.Project == nil || resp.Project.ID != "PVT_1" {
		t.Errorf("response project = %+v, want PVT_1", resp.Project)
	}
	if progressCalls == 0 {
		t.Error("expected progress callbacks")
	}
}

func TestRunProjectEmpty(t *testing.T) {
	ds := &fakeDataSource{
		project: &model.Project{ID: "PVT_1", Number: 5, Owner: "acme"},
	}

	cfg := testConfig()
	cfg.ProjectNumber = 5
	e := NewEngine(cfg, ds, nil, nil)

	resp, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, want empty response, not error", err)
	}
	if resp.TotalItems != 0 || len(resp.Items) != 0 {
		t.Errorf("response = %+v, want empty", resp)
	}
	if resp.Project == nil {
		t.Error("empty project response should still identify the project")
	}
}

func TestRunProjectIssueFailureAborts(t *testing.T) {
	ds := &fakeDataSource{
		issues: map[string]*model.IssueDetails{},
		project: &model.Project{
			ID: "PVT_1", Number: 5, Owner: "acme",
		},
		projectItems: []model.ProjectItem{
			{ID: "PVTI_1", Owner: "acme", Repo: "widgets", Number: 404},
		},
	}

	cfg := testConfig()
	cfg.ProjectNumber = 5
	e := NewEngine(cfg, ds, nil, nil)

	if _, err := e.Run(context.Background()); err == nil {
		t.Fatal("expected error when an issue cannot be fetched")
	}
}

func TestProjectModeWinsOverIssueMode(t *testing.T) {
	ds := &fakeDataSource{
		project: &model.Project{ID: "PVT_1", Number: 5, Owner: "acme"},
	}

	cfg := testConfig()
	cfg.ProjectNumber = 5
	cfg.IssueNumber = 42
	e := NewEngine(cfg, ds, nil, nil)

	resp, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Project == nil {
		t.Error("expected project mode when both numbers are set")
	}
	if len(ds.fetchedKeys) != 0 {
		t.Errorf("issue fetches = %v, want none in empty project mode", ds.fetchedKeys)
	}
}

// recordingResolver records which logins were resolved.
type recordingResolver struct {
	mu     sync.Mutex
	logins []string
}

func (r *recordingResolver) Resolve(_ context.Context, login string, _ model.RepoRef, _ model.UserGroups) role.Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, login)
	if login == "maintainer-person" {
		return role.RoleMaintainer
	}
	return role.RoleBase
}

func TestEngineUsesRoleResolver(t *testing.T) {
	old := time.Now().Add(-30 * 24 * time.Hour)
	issue := makeIssue(old, old)
	issue.Comments = []model.CommentData{comment("maintainer-person", old)}

	ds := &fakeDataSource{
		issues: map[string]*model.IssueDetails{"acme/widgets#42": issue},
	}

	cfg := testConfig()
	cfg.IssueNumber = 42
	cfg.Weights.Comments = config.RoleWeight(map[string]float64{"base": 3, "maintainer": 1})
	cfg.Weights.Contributors = config.FlatWeight(0)

	resolver := &recordingResolver{}
	e := NewEngine(cfg, ds, resolver, nil)

	resp, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(resolver.logins) == 0 {
		t.Fatal("role resolver was never consulted")
	}
	if got := resp.Items[0].Engagement.Score; got != 1 {
		t.Errorf("score = %d, want 1 (maintainer-weighted comment)", got)
	}
}

func TestEngineSkipsResolverForFlatWeights(t *testing.T) {
	now := time.Now()
	ds := &fakeDataSource{
		issues: map[string]*model.IssueDetails{"acme/widgets#42": makeIssue(now, now)},
	}

	cfg := testConfig()
	cfg.IssueNumber = 42

	resolver := &recordingResolver{}
	e := NewEngine(cfg, ds, resolver, nil)

	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(resolver.logins) != 0 {
		t.Errorf("resolver consulted for flat weights: %v", resolver.logins)
	}
}
