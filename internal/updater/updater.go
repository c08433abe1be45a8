package updater

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spiffcs/engage/config"
	"github.com/spiffcs/engage/internal/ghclient"
	"github.com/spiffcs/engage/internal/log"
	"github.com/spiffcs/engage/internal/model"
)

// GraphQLDoer executes a GraphQL query and decodes the data payload into out.
// *ghclient.Client satisfies it.
type GraphQLDoer interface {
	GraphQL(ctx context.Context, query string, variables map[string]any, out any) error
}

// Updater writes engagement scores back into a project board number field.
type Updater struct {
	gql GraphQLDoer
}

func NewUpdater(gql GraphQLDoer) *Updater {
	return &Updater{gql: gql}
}

type projectFieldsPayload struct {
	Organization *projectFieldsOwner `json:"organization"`
	User         *projectFieldsOwner `json:"user"`
}

type projectFieldsOwner struct {
	ProjectV2 *struct {
		ID     string `json:"id"`
		Fields struct {
			Nodes []struct {
				ID       string `json:"id"`
				Name     string `json:"name"`
				DataType string `json:"dataType"`
			} `json:"nodes"`
		} `json:"fields"`
	} `json:"projectV2"`
}

// UpdateProjectWithScores pushes each item's score into the configured
// project column. It is a logged no-op unless score application is enabled
// and the run targeted a project. A missing column is warned about, not
// fatal; so are individual item failures.
func (u *Updater) UpdateProjectWithScores(ctx context.Context, cfg *config.Config, resp *model.EngagementResponse) error {
	if !cfg.ApplyScores || cfg.ProjectNumber == 0 || resp.Project == nil {
		log.Debug("score application disabled, skipping project update")
		return nil
	}

	fieldID, err := u.findScoreField(ctx, cfg)
	if err != nil {
		return err
	}
	if fieldID == "" {
		log.Warn("project field not found, skipping score update",
			"field", cfg.ProjectColumn, "project", cfg.ProjectNumber)
		return nil
	}

	updated := 0
	for _, item := range resp.Items {
		if item.ProjectItemID == "" {
			continue
		}

		if cfg.DryRun {
			log.Info("dry run: would update score",
				"issue", fmt.Sprintf("%s/%s#%d", item.Owner, item.Repo, item.Number),
				"score", item.Engagement.Score)
			updated++
			continue
		}

		vars := map[string]any{
			"projectId": resp.Project.ID,
			"itemId":    item.ProjectItemID,
			"fieldId":   fieldID,
			"value":     float64(item.Engagement.Score),
		}
		var out struct{}
		if err := u.gql.GraphQL(ctx, updateFieldMutation, vars, &out); err != nil {
			log.Warn("failed to update project item score",
				"issue", fmt.Sprintf("%s/%s#%d", item.Owner, item.Repo, item.Number),
				"error", err)
			continue
		}
		updated++
	}

	log.Info("updated project scores", "updated", updated, "total", len(resp.Items))
	return nil
}

// findScoreField resolves the configured column name to a number field id.
// It returns "" when the project has no field of that name.
func (u *Updater) findScoreField(ctx context.Context, cfg *config.Config) (string, error) {
	vars := map[string]any{
		"owner":  cfg.Owner,
		"number": cfg.ProjectNumber,
	}

	var payload projectFieldsPayload
	err := u.gql.GraphQL(ctx, projectFieldsOrgQuery, vars, &payload)
	if errors.Is(err, ghclient.ErrNotFound) {
		payload = projectFieldsPayload{}
		err = u.gql.GraphQL(ctx, projectFieldsUserQuery, vars, &payload)
	}
	if err != nil {
		return "", fmt.Errorf("failed to list project fields: %w", err)
	}

	owner := payload.Organization
	if owner == nil {
		owner = payload.User
	}
	if owner == nil || owner.ProjectV2 == nil {
		return "", fmt.Errorf("project %d not found for owner %s", cfg.ProjectNumber, cfg.Owner)
	}

	for _, f := range owner.ProjectV2.Fields.Nodes {
		if strings.EqualFold(f.Name, cfg.ProjectColumn) && f.DataType == "NUMBER" {
			return f.ID, nil
		}
	}
	return "", nil
}
