// Package sentiment tests document the expected behavior of the dashboard aggregation.
//
// Test requirements (this file serves as documentation):
// - Build assembles summary, trend, top posts and topics from one filtered snapshot
// - Build never fails on empty input and reports "no data" instead of NaN
// - Build reports malformed records without aborting
// - Build is idempotent and never mutates its input
// - BuildAll produces one independent result per time filter
package sentiment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func appleRecords() []RawRecord {
	at := refNow.Add(-2 * time.Hour)
	return []RawRecord{
		full("1", 0.9, at, "Great #Apple product", 10),
		full("2", 0.9, at, "Another #Apple win", 5),
		full("3", 0.1, at, "Bad #Apple day", 1),
	}
}

func TestBuild_AppleScenario(t *testing.T) {
	cs := NewBuilder().Build("Apple", appleRecords(), Month, refNow)

	assert.Equal(t, "Apple", cs.Company)
	assert.Equal(t, "Last 30 days", cs.TimePeriod)

	s := cs.SentimentSummary
	assert.Equal(t, 0.63, s.OverallScore)
	assert.Equal(t, 67, s.PositivePercentage)
	assert.Equal(t, 33, s.NegativePercentage)
	assert.Equal(t, 0, s.NeutralPercentage)
	assert.Equal(t, 3, s.TotalTweets)

	require.Len(t, cs.SentimentTrend, 1)
	assert.Equal(t, 3, cs.SentimentTrend[0].TweetCount)

	require.Len(t, cs.TopTweets.Positive, 2)
	assert.Equal(t, "1", cs.TopTweets.Positive[0].ID)
	assert.Equal(t, "2", cs.TopTweets.Positive[1].ID)
	require.Len(t, cs.TopTweets.Negative, 1)
	assert.Equal(t, "3", cs.TopTweets.Negative[0].ID)

	require.NotEmpty(t, cs.KeyTopics)
	assert.Equal(t, Topic{Topic: "#apple", Count: 3, SentimentScore: 0.63}, cs.KeyTopics[0])
}

func TestBuild_EmptyInput(t *testing.T) {
	var cs CompanySentiment
	require.NotPanics(t, func() {
		cs = NewBuilder().Build("Apple", nil, Week, refNow)
	})

	assert.Equal(t, 0, cs.SentimentSummary.TotalTweets)
	assert.True(t, cs.SentimentSummary.NoData)
	assert.Empty(t, cs.SentimentTrend)
	assert.Empty(t, cs.TopTweets.Positive)
	assert.Empty(t, cs.TopTweets.Negative)
	assert.Empty(t, cs.KeyTopics)
	assert.Zero(t, cs.Diagnostics.SkippedRecords)

	body, err := json.Marshal(cs)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"sentiment_trend":[]`)
	assert.Contains(t, string(body), `"key_topics":[]`)
	assert.Contains(t, string(body), `"positive":[]`)
}

func TestBuild_AppliesTimeFilter(t *testing.T) {
	raw := []RawRecord{
		full("today", 0.9, refNow.Add(-time.Hour), "", 0),
		full("last-week", 0.1, refNow.Add(-6*24*time.Hour), "", 0),
		full("last-quarter", 0.5, refNow.Add(-90*24*time.Hour), "", 0),
	}
	b := NewBuilder()

	assert.Equal(t, 1, b.Build("x", raw, Day, refNow).SentimentSummary.TotalTweets)
	assert.Equal(t, 2, b.Build("x", raw, Week, refNow).SentimentSummary.TotalTweets)
	assert.Equal(t, 2, b.Build("x", raw, Month, refNow).SentimentSummary.TotalTweets)
	assert.Equal(t, 3, b.Build("x", raw, SixMonths, refNow).SentimentSummary.TotalTweets)
}

func TestBuild_SkipsAndLogsMalformedRecords(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := NewBuilder(WithLogger(zap.New(core).Sugar()))
	raw := append(appleRecords(),
		FullRecord{ID: "no-score", CreatedAt: refNow},
		full("too-high", 3, refNow, "", 0),
	)

	cs := b.Build("Apple", raw, Month, refNow)

	assert.Equal(t, 3, cs.SentimentSummary.TotalTweets)
	assert.Equal(t, 2, cs.Diagnostics.SkippedRecords)
	assert.Equal(t, 1, cs.Diagnostics.Reasons[ReasonMissingScore])
	assert.Equal(t, 1, cs.Diagnostics.Reasons[ReasonScoreOutOfRange])
	assert.Equal(t, 2, logs.FilterMessage("skipping malformed record").Len())
}

func TestBuild_IsIdempotentAndLeavesInputUntouched(t *testing.T) {
	raw := appleRecords()
	before := append([]RawRecord(nil), raw...)
	b := NewBuilder()

	first := b.Build("Apple", raw, Year, refNow)
	second := b.Build("Apple", raw, Year, refNow)

	assert.Equal(t, first, second)
	assert.Equal(t, before, raw)
}

func TestBuild_ReturnsFreshResults(t *testing.T) {
	b := NewBuilder()
	first := b.Build("Apple", appleRecords(), Month, refNow)
	first.TopTweets.Positive[0].Text = "changed"
	first.KeyTopics[0].Count = 99

	second := b.Build("Apple", appleRecords(), Month, refNow)

	assert.Equal(t, "Great #Apple product", second.TopTweets.Positive[0].Text)
	assert.Equal(t, 3, second.KeyTopics[0].Count)
}

func TestBuild_Options(t *testing.T) {
	var raw []RawRecord
	for i := range 8 {
		raw = append(raw, full(string(rune('a'+i)), 0.95, refNow, "shared words", 0))
	}

	cs := NewBuilder(WithTopPostsBound(2), WithMaxTopics(1)).Build("x", raw, Day, refNow)

	assert.Len(t, cs.TopTweets.Positive, 2)
	assert.Len(t, cs.KeyTopics, 1)
}

func TestBuildAll_MatchesSequentialBuilds(t *testing.T) {
	raw := []RawRecord{
		full("1", 0.9, refNow.Add(-time.Hour), "battery life #apple", 0),
		full("2", 0.2, refNow.Add(-10*24*time.Hour), "battery drain #apple", 0),
		full("3", 0.7, refNow.Add(-200*24*time.Hour), "camera #apple", 0),
		FullRecord{ID: "bad", CreatedAt: refNow},
	}
	b := NewBuilder()

	all, err := b.BuildAll(context.Background(), "Apple", raw, refNow)

	require.NoError(t, err)
	require.Len(t, all, len(AllTimeFilters))
	for _, f := range AllTimeFilters {
		assert.Equal(t, b.Build("Apple", raw, f, refNow), all[f], "filter %s", f)
	}
}

func TestBuildAll_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder().BuildAll(ctx, "Apple", appleRecords(), refNow)

	assert.ErrorIs(t, err, context.Canceled)
}
