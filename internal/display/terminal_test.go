package display

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/gauthierbraillon/sentiboard/internal/sentiment"
)

var dashboardNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func sampleDashboard() sentiment.CompanySentiment {
	raw := []sentiment.RawRecord{}
	for i, s := range []float64{0.9, 0.85, 0.1} {
		score := s
		text := "Great #Apple product"
		if s < 0.5 {
			text = "Bad #Apple day"
		}
		raw = append(raw, sentiment.FullRecord{
			ID:        string(rune('a' + i)),
			CreatedAt: dashboardNow.Add(-2 * time.Hour),
			Text:      text,
			Score:     &score,
			Likes:     1200,
		})
	}
	raw = append(raw, sentiment.FullRecord{ID: "broken", CreatedAt: dashboardNow})
	return sentiment.NewBuilder().Build("Apple", raw, sentiment.Month, dashboardNow)
}

func render(t *testing.T, cs sentiment.CompanySentiment) string {
	t.Helper()
	out, err := NewTerminalFormatter().FormatDashboard(cs, dashboardNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func TestAC300_Dashboard_ShowsCompanyAndPeriod(t *testing.T) {
	output := render(t, sampleDashboard())

	if !strings.Contains(output, "Apple") || !strings.Contains(output, "Last 30 days") {
		t.Errorf("user should see company and period, got:\n%s", output)
	}
}

func TestAC301_Dashboard_ShowsSummaryBreakdown(t *testing.T) {
	output := render(t, sampleDashboard())

	for _, want := range []string{"Overall 0.62", "67% positive", "33% negative", "0% neutral", "3 posts"} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q in summary, got:\n%s", want, output)
		}
	}
}

func TestAC302_Dashboard_ShowsTrendAndTopics(t *testing.T) {
	output := render(t, sampleDashboard())

	if !strings.Contains(output, "2025-03-15") {
		t.Error("user should see the trend date")
	}
	if !strings.Contains(output, "#apple") {
		t.Error("user should see the recurring hashtag topic")
	}
}

func TestAC303_Dashboard_ShowsTopPostsWithEngagement(t *testing.T) {
	output := render(t, sampleDashboard())

	if !strings.Contains(output, "[0.90] Great #Apple product") {
		t.Errorf("user should see the best post with its score, got:\n%s", output)
	}
	if !strings.Contains(output, "1,200 likes") {
		t.Error("user should see humanized like counts")
	}
	if !strings.Contains(output, "2 hours ago") {
		t.Error("user should see relative post time")
	}
}

func TestAC304_Dashboard_ReportsSkippedRecords(t *testing.T) {
	output := render(t, sampleDashboard())

	if !strings.Contains(output, "Skipped 1 malformed record (missing_score: 1)") {
		t.Errorf("user should see skipped record diagnostics, got:\n%s", output)
	}
}

func TestAC305_Dashboard_ShowsNoDataMessage(t *testing.T) {
	cs := sentiment.NewBuilder().Build("Apple", nil, sentiment.Day, dashboardNow)

	output := render(t, cs)

	if !strings.Contains(output, "No data for this period.") {
		t.Errorf("user should see a no-data message, got:\n%s", output)
	}
	if strings.Contains(output, "NaN") {
		t.Error("user should never see NaN")
	}
}

func TestFormatTimestamp_Relative(t *testing.T) {
	formatter := NewTerminalFormatter()
	testCases := []struct {
		name      string
		timestamp time.Time
		contains  string
	}{
		{"seconds", dashboardNow.Add(-10 * time.Second), "just now"},
		{"recent minutes", dashboardNow.Add(-30 * time.Minute), "minutes ago"},
		{"recent hours", dashboardNow.Add(-3 * time.Hour), "hours ago"},
		{"recent days", dashboardNow.Add(-48 * time.Hour), "days ago"},
		{"older", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), "Jan 2, 2025"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output := formatter.FormatTimestamp(tc.timestamp, dashboardNow)
			if !strings.Contains(output, tc.contains) {
				t.Errorf("expected %q in %q", tc.contains, output)
			}
		})
	}
}

func TestTruncateText(t *testing.T) {
	formatter := NewTerminalFormatter()
	longText := "This is a very long text that should be truncated because it exceeds the maximum length"

	truncated := formatter.TruncateText(longText, 20)

	if len([]rune(truncated)) > 20 {
		t.Errorf("text should be at most 20 runes, got %d", len([]rune(truncated)))
	}
	if !strings.HasSuffix(truncated, "...") {
		t.Error("truncated text should end with an ellipsis")
	}
	if got := formatter.TruncateText("Short", 20); got != "Short" {
		t.Errorf("short text should be kept, got: %s", got)
	}
	if got := formatter.TruncateText("héllo wörld", 8); got != "héllo..." {
		t.Errorf("truncation should respect runes, got: %s", got)
	}
	if got := formatter.TruncateText("multi\nline   text", 50); got != "multi line text" {
		t.Errorf("whitespace should be collapsed, got: %q", got)
	}
}
