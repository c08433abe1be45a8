package output

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/spiffcs/engage/internal/model"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// TableFormatter formats output as a terminal table
type TableFormatter struct{}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func hyperlink(text, url string) string {
	// Only use hyperlinks if stdout is a terminal
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// stripAnsi removes ANSI escape sequences from a string
func stripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// displayWidth returns the visible width of a string in terminal columns
// accounting for wide characters like emojis (which take 2 columns)
// and stripping ANSI escape sequences
func displayWidth(s string) int {
	return runewidth.StringWidth(stripAnsi(s))
}

// truncateToWidth truncates a string to fit within maxWidth display columns
// It handles ANSI escape sequences by stripping them for width calculation
func truncateToWidth(s string, maxWidth int) (string, int) {
	plain := stripAnsi(s)
	width := runewidth.StringWidth(plain)

	if width <= maxWidth {
		return s, width
	}

	cutWidth := 0
	cutIndex := 0
	for i, r := range plain {
		rw := runewidth.RuneWidth(r)
		if cutWidth+rw > maxWidth-3 { // Leave room for "..."
			cutIndex = i
			break
		}
		cutWidth += rw
	}

	if cutIndex > 0 && cutIndex < len(plain) {
		return plain[:cutIndex] + "...", maxWidth
	}
	return plain[:maxWidth-3] + "...", maxWidth
}

// padRight pads a string with spaces to reach the target visible width
func padRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}

// issueURL builds the canonical web URL for an item's issue
func issueURL(item model.EngagementItem) string {
	return fmt.Sprintf("https://github.com/%s/%s/issues/%d", item.Owner, item.Repo, item.Number)
}

// Format outputs scored issues as a table, highest score first
func (f *TableFormatter) Format(resp *model.EngagementResponse, w io.Writer) error {
	if len(resp.Items) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return nil
	}

	// Column widths
	const (
		colIssue = 32
		colTitle = 48
		colScore = 6
		colPrev  = 6
	)

	if resp.Project != nil {
		fmt.Fprintf(w, "Project: %s (#%d, %s)\n\n", resp.Project.Title, resp.Project.Number, resp.Project.Owner)
	}

	fmt.Fprintf(w, "%-*s  %-*s  %*s  %*s  %s\n",
		colIssue, "Issue",
		colTitle, "Title",
		colScore, "Score",
		colPrev, "Prev",
		"Trend")
	fmt.Fprintln(w, strings.Repeat("-", colIssue+colTitle+colScore+colPrev+5+8))

	items := make([]model.EngagementItem, len(resp.Items))
	copy(items, resp.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Engagement.Score > items[j].Engagement.Score
	})

	for _, item := range items {
		ref := fmt.Sprintf("%s/%s#%d", item.Owner, item.Repo, item.Number)
		ref, refWidth := truncateToWidth(ref, colIssue)
		linkedRef := padRight(hyperlink(ref, issueURL(item)), refWidth, colIssue)

		title, titleWidth := truncateToWidth(item.Title, colTitle)
		title = padRight(title, titleWidth, colTitle)

		fmt.Fprintf(w, "%s  %s  %*d  %*d  %s\n",
			linkedRef,
			title,
			colScore, item.Engagement.Score,
			colPrev, item.Engagement.PreviousScore,
			formatTrend(item.Engagement),
		)
	}

	printFooterSummary(items, w)
	return nil
}

// formatTrend renders the score movement for one item
func formatTrend(e model.EngagementScore) string {
	if e.Classification == model.ClassificationHot {
		return color.RedString("🔥 " + e.Classification)
	}
	if e.Score < e.PreviousScore {
		return color.CyanString("cooling")
	}
	return "steady"
}

// printFooterSummary prints the closing summary line
func printFooterSummary(items []model.EngagementItem, w io.Writer) {
	hotCount := 0
	for _, item := range items {
		if item.Engagement.Classification == model.ClassificationHot {
			hotCount++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintf(w, "  %d issues scored\n", len(items))
	if hotCount > 0 {
		fmt.Fprintf(w, "  🔥 %s gaining engagement\n", color.RedString("%d", hotCount))
	}
}
