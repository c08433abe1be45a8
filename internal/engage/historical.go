package engage

import (
	"time"

	"github.com/spiffcs/engage/config"
	"github.com/spiffcs/engage/internal/model"
)

// DefaultCutoffDays is the lookback used for the historical score.
const DefaultCutoffDays = 7

// CalculatePrevious computes the engagement score as it stood cutoffDays
// ago, for trend comparison against the current score.
func CalculatePrevious(issue *model.IssueDetails, weights config.Weights, resolve Resolver, cutoffDays int) int {
	if cutoffDays <= 0 {
		cutoffDays = DefaultCutoffDays
	}
	cutoff := time.Now().Add(-time.Duration(cutoffDays) * 24 * time.Hour)
	return calculatePreviousAt(issue, weights, resolve, cutoff)
}

// calculatePreviousAt scores a point-in-time snapshot: events after the
// cutoff are dropped, contributors are recomputed from the surviving events,
// and recency is measured from the cutoff instant rather than from now.
func calculatePreviousAt(issue *model.IssueDetails, weights config.Weights, resolve Resolver, cutoff time.Time) int {
	if issue.CreatedAt.After(cutoff) {
		// The issue did not exist yet.
		return 0
	}
	return calculateAt(snapshotAt(issue, cutoff), weights, resolve, cutoff)
}

// snapshotAt builds a filtered copy of the issue containing only comments,
// issue reactions and comment reactions created at or before the cutoff.
// The snapshot's UpdatedAt is the latest surviving event time so the
// last-activity term reflects the state at the cutoff.
func snapshotAt(issue *model.IssueDetails, cutoff time.Time) *model.IssueDetails {
	snap := *issue
	snap.Comments = nil
	snap.Reactions = nil

	last := issue.CreatedAt
	observe := func(t time.Time) {
		if t.After(last) {
			last = t
		}
	}

	for _, c := range issue.Comments {
		if c.CreatedAt.After(cutoff) {
			continue
		}
		filtered := c
		filtered.Reactions = nil
		for _, r := range c.Reactions {
			if r.CreatedAt.After(cutoff) {
				continue
			}
			filtered.Reactions = append(filtered.Reactions, r)
			observe(r.CreatedAt)
		}
		observe(c.CreatedAt)
		snap.Comments = append(snap.Comments, filtered)
	}

	for _, r := range issue.Reactions {
		if r.CreatedAt.After(cutoff) {
			continue
		}
		snap.Reactions = append(snap.Reactions, r)
		observe(r.CreatedAt)
	}

	snap.UpdatedAt = last
	return &snap
}
