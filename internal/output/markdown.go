package output

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spiffcs/engage/internal/model"
)

// MarkdownFormatter formats output as Markdown, suitable for pasting into
// an issue or a report.
type MarkdownFormatter struct{}

// Format outputs scored issues as a Markdown table, highest score first
func (f *MarkdownFormatter) Format(resp *model.EngagementResponse, w io.Writer) error {
	if len(resp.Items) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return nil
	}

	fmt.Fprintln(w, "# Engagement Report")
	if resp.Project != nil {
		fmt.Fprintf(w, "\n*Project: %s (#%d, %s)*\n", resp.Project.Title, resp.Project.Number, resp.Project.Owner)
	}
	fmt.Fprintf(w, "\n*Generated: %s*\n\n", time.Now().Format("2006-01-02 15:04"))

	items := make([]model.EngagementItem, len(resp.Items))
	copy(items, resp.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Engagement.Score > items[j].Engagement.Score
	})

	fmt.Fprintln(w, "| Issue | Title | Score | Previous | Trend |")
	fmt.Fprintln(w, "|-------|-------|------:|---------:|-------|")
	for _, item := range items {
		trend := ""
		if item.Engagement.Classification == model.ClassificationHot {
			trend = "🔥 " + item.Engagement.Classification
		}
		fmt.Fprintf(w, "| [%s/%s#%d](%s) | %s | %d | %d | %s |\n",
			item.Owner, item.Repo, item.Number, issueURL(item),
			item.Title,
			item.Engagement.Score,
			item.Engagement.PreviousScore,
			trend,
		)
	}

	fmt.Fprintf(w, "\n*%d issues scored*\n", len(items))
	return nil
}
