package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spiffcs/engage/config"
	"github.com/spiffcs/engage/internal/collector"
	"github.com/spiffcs/engage/internal/engage"
	"github.com/spiffcs/engage/internal/ghclient"
	"github.com/spiffcs/engage/internal/log"
	"github.com/spiffcs/engage/internal/output"
	"github.com/spiffcs/engage/internal/role"
	"github.com/spiffcs/engage/internal/updater"
)

// NewCmdScore creates the score command.
func NewCmdScore(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score issue engagement (same as root engage)",
		Long: `Fetches a project board or a single issue, computes engagement
scores from comments, reactions, and contributors, and flags issues
whose score grew over the last week.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, opts)
		},
	}

	addScoreFlags(cmd, opts)
	return cmd
}

// addScoreFlags adds the score-specific flags to a command.
func addScoreFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "Repository or project owner")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Repository name")
	cmd.Flags().IntVarP(&opts.ProjectNumber, "project", "p", 0, "Project board number to score")
	cmd.Flags().IntVarP(&opts.IssueNumber, "issue", "i", 0, "Single issue number to score")
	cmd.Flags().StringVar(&opts.ProjectColumn, "column", "", "Project field that receives scores")
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "table", "Output format (table, json, markdown)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Concurrent scoring workers")
	cmd.Flags().BoolVar(&opts.ApplyScores, "apply", false, "Write scores back to the project board")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Log project updates without mutating anything")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug)")
}

func runScore(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()
	log.Initialize(opts.Verbosity, os.Stderr)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Owner == "" {
		return fmt.Errorf("owner not configured. Use --owner or set owner in the config file")
	}
	if cfg.IssueNumber > 0 && cfg.ProjectNumber == 0 && cfg.Repo == "" {
		return fmt.Errorf("repo not configured. Use --repo or set repo in the config file")
	}

	token := cfg.GetGitHubToken()
	if token == "" {
		return fmt.Errorf("GitHub token not configured. Set the GITHUB_TOKEN environment variable")
	}

	client, err := ghclient.NewClient(ctx, token)
	if err != nil {
		return err
	}
	user, err := client.AuthenticatedUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	log.Debug("authenticated", "user", user)

	col := collector.New(client)

	// Flat-weight runs never consult the role detector, so only build one
	// when a factor is role-based.
	var resolver engage.RoleResolver
	if cfg.Weights.HasRoleWeights() {
		resolver = role.NewDetector(client, role.NewCache())
	}

	engine := engage.NewEngine(cfg, col, resolver, func(completed, total int) {
		log.Progress("scoring issues %d/%d", completed, total)
	})

	resp, err := engine.Run(ctx)
	log.ProgressDone()
	if err != nil {
		return err
	}

	if cfg.TempDir != "" {
		path, err := output.WriteResponseFile(resp, cfg.TempDir)
		if err != nil {
			log.Warn("failed to save response file", "error", err)
		} else {
			log.Info("saved response", "path", path)
		}
	}

	formatter := output.NewFormatter(output.Format(opts.Format))
	if err := formatter.Format(resp, cmd.OutOrStdout()); err != nil {
		return err
	}

	return updater.NewUpdater(client).UpdateProjectWithScores(ctx, cfg, resp)
}

// applyOverrides layers non-zero flag values over the loaded config.
func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.Owner != "" {
		cfg.Owner = opts.Owner
	}
	if opts.Repo != "" {
		cfg.Repo = opts.Repo
	}
	if opts.ProjectNumber > 0 {
		cfg.ProjectNumber = opts.ProjectNumber
	}
	if opts.IssueNumber > 0 {
		cfg.IssueNumber = opts.IssueNumber
	}
	if opts.ProjectColumn != "" {
		cfg.ProjectColumn = opts.ProjectColumn
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if opts.ApplyScores {
		cfg.ApplyScores = true
	}
	if opts.DryRun {
		cfg.DryRun = true
	}
}
