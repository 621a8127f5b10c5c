// Package display provides terminal output formatting for sentiboard.
package display

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/gauthierbraillon/sentiboard/internal/sentiment"
)

const (
	separator    = " • "
	maxPostWidth = 100
)

var (
	positiveColor = color.New(color.FgGreen, color.Bold)
	negativeColor = color.New(color.FgRed, color.Bold)
	neutralColor  = color.New(color.FgYellow)
	headingColor  = color.New(color.Bold)
	mutedColor    = color.New(color.FgHiBlack)
)

// TerminalFormatter formats dashboard results for terminal display.
type TerminalFormatter struct{}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{}
}

// FormatDashboard renders the full dashboard for one company and time filter.
// now anchors relative post timestamps.
func (f *TerminalFormatter) FormatDashboard(cs sentiment.CompanySentiment, now time.Time) (string, error) {
	var b strings.Builder

	b.WriteString(headingColor.Sprintf("%s%s%s", cs.Company, separator, cs.TimePeriod))
	b.WriteString("\n\n")

	if cs.SentimentSummary.NoData {
		b.WriteString("No data for this period.\n")
		f.writeDiagnostics(&b, cs.Diagnostics)
		return b.String(), nil
	}

	b.WriteString(f.FormatSummary(cs.SentimentSummary))
	b.WriteString("\n\n")

	b.WriteString(headingColor.Sprint("Sentiment trend"))
	b.WriteString("\n")
	if err := writeTrend(&b, cs.SentimentTrend); err != nil {
		return "", fmt.Errorf("failed to render trend: %w", err)
	}

	f.writePosts(&b, "Top positive posts", cs.TopTweets.Positive, now)
	f.writePosts(&b, "Top negative posts", cs.TopTweets.Negative, now)

	b.WriteString("\n")
	b.WriteString(headingColor.Sprint("Key topics"))
	b.WriteString("\n")
	if len(cs.KeyTopics) == 0 {
		b.WriteString(mutedColor.Sprint("  No recurring topics."))
		b.WriteString("\n")
	} else if err := writeTopics(&b, cs.KeyTopics); err != nil {
		return "", fmt.Errorf("failed to render topics: %w", err)
	}

	f.writeDiagnostics(&b, cs.Diagnostics)
	return b.String(), nil
}

// FormatSummary formats the overall score and label breakdown on one line.
func (f *TerminalFormatter) FormatSummary(s sentiment.SentimentSummary) string {
	label := sentiment.Classify(s.OverallScore)
	parts := []string{
		fmt.Sprintf("Overall %.2f (%s)", s.OverallScore, FormatLabel(label)),
		positiveColor.Sprintf("%d%% positive", s.PositivePercentage),
		negativeColor.Sprintf("%d%% negative", s.NegativePercentage),
		neutralColor.Sprintf("%d%% neutral", s.NeutralPercentage),
		pluralize(s.TotalTweets, "post"),
	}
	return strings.Join(parts, separator)
}

// FormatLabel colors a sentiment label.
func FormatLabel(label sentiment.Label) string {
	switch label {
	case sentiment.LabelPositive:
		return positiveColor.Sprint(string(label))
	case sentiment.LabelNegative:
		return negativeColor.Sprint(string(label))
	default:
		return neutralColor.Sprint(string(label))
	}
}

func (f *TerminalFormatter) writePosts(b *strings.Builder, title string, posts []sentiment.RankedPost, now time.Time) {
	b.WriteString("\n")
	b.WriteString(headingColor.Sprint(title))
	b.WriteString("\n")
	if len(posts) == 0 {
		b.WriteString(mutedColor.Sprint("  None."))
		b.WriteString("\n")
		return
	}

	for _, p := range posts {
		fmt.Fprintf(b, "  [%.2f] %s\n", p.Sentiment.Score, f.TruncateText(p.Text, maxPostWidth))
		meta := []string{"@" + p.User.Username, f.FormatTimestamp(p.CreatedAt, now)}
		if p.Metrics.LikeCount > 0 {
			meta = append(meta, humanize.Comma(p.Metrics.LikeCount)+" likes")
		}
		if p.Metrics.RetweetCount > 0 {
			meta = append(meta, humanize.Comma(p.Metrics.RetweetCount)+" retweets")
		}
		b.WriteString(mutedColor.Sprint("    " + strings.Join(meta, separator)))
		b.WriteString("\n")
	}
}

func (f *TerminalFormatter) writeDiagnostics(b *strings.Builder, d sentiment.Diagnostics) {
	if d.SkippedRecords == 0 {
		return
	}

	reasons := make([]string, 0, len(d.Reasons))
	for reason, n := range d.Reasons {
		reasons = append(reasons, fmt.Sprintf("%s: %d", reason, n))
	}
	sort.Strings(reasons)

	line := fmt.Sprintf("Skipped %s", pluralize(d.SkippedRecords, "malformed record"))
	if len(reasons) > 0 {
		line += " (" + strings.Join(reasons, ", ") + ")"
	}
	b.WriteString("\n")
	b.WriteString(mutedColor.Sprint(line))
	b.WriteString("\n")
}

func writeTrend(w io.Writer, points []sentiment.TrendPoint) error {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Date, fmt.Sprintf("%.2f", p.AverageScore), humanize.Comma(int64(p.TweetCount))})
	}
	return renderTable(w, []string{"Date", "Avg score", "Posts"}, rows)
}

func writeTopics(w io.Writer, topics []sentiment.Topic) error {
	rows := make([][]string, 0, len(topics))
	for _, t := range topics {
		rows = append(rows, []string{
			t.Topic,
			humanize.Comma(int64(t.Count)),
			FormatLabel(sentiment.Classify(t.SentimentScore)) + fmt.Sprintf(" %.2f", t.SentimentScore),
		})
	}
	return renderTable(w, []string{"Topic", "Posts", "Sentiment"}, rows)
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// FormatTimestamp formats a timestamp relative to now.
func (f *TerminalFormatter) FormatTimestamp(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff >= 0 && diff < time.Minute:
		return "just now"
	case diff >= 0 && diff < 7*24*time.Hour:
		return humanize.RelTime(t, now, "ago", "from now")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// pluralize returns "N unit" or "N units" based on count.
func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(int64(n)), unit)
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string([]rune(text)[:maxLen-3]) + "..."
}
