// Package sentiment derives dashboard aggregates from raw per-post sentiment records.
//
// This package enables sentiboard to:
// - Normalize records from any source shape into one canonical Record
// - Filter records to a symbolic time window
// - Build the daily trend, overall summary, top posts and key topics
//
// Everything here is pure and in-memory: no clock reads, no I/O.
package sentiment

import "time"

// RawRecord is one post as delivered by a record source.
// Implementations are FullRecord, MinimalRecord and MalformedRecord.
type RawRecord interface {
	rawRecord()
}

// FullRecord is the complete post shape with optional author and engagement data.
type FullRecord struct {
	ID         string
	CreatedAt  time.Time
	Text       string
	Score      *float64
	Likes      int64
	Confidence *float64
	Author     *Author
	Metrics    *Metrics
}

// MinimalRecord carries only the fields needed for aggregation.
type MinimalRecord struct {
	ID        string
	Text      string
	Score     *float64
	CreatedAt time.Time
}

// MalformedRecord stands in for a source entry whose fields could not be read.
// ID is kept when it was recoverable.
type MalformedRecord struct {
	ID string
}

func (FullRecord) rawRecord()      {}
func (MinimalRecord) rawRecord()   {}
func (MalformedRecord) rawRecord() {}

// Record is the canonical, validated post every aggregator works on.
type Record struct {
	ID         string
	CreatedAt  time.Time
	Text       string
	Score      float64
	Likes      int64
	Confidence float64
	Author     Author
	Metrics    Metrics
}

// Author describes the account that published a post.
type Author struct {
	Username        string `json:"username"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url"`
	FollowersCount  int64  `json:"followers_count"`
}

// Metrics holds engagement counters for a post.
type Metrics struct {
	RetweetCount int64 `json:"retweet_count"`
	ReplyCount   int64 `json:"reply_count"`
	LikeCount    int64 `json:"like_count"`
	QuoteCount   int64 `json:"quote_count"`
}

// TrendPoint is the aggregate of one UTC calendar day.
type TrendPoint struct {
	Date         string  `json:"date"`
	AverageScore float64 `json:"average_score"`
	TweetCount   int     `json:"tweet_count"`
}

// SentimentSummary is the overall breakdown of a filtered record set.
type SentimentSummary struct {
	OverallScore       float64 `json:"overall_score"`
	PositivePercentage int     `json:"positive_percentage"`
	NegativePercentage int     `json:"negative_percentage"`
	NeutralPercentage  int     `json:"neutral_percentage"`
	TotalTweets        int     `json:"total_tweets"`
	NoData             bool    `json:"no_data"`
}

// PostSentiment is the sentiment block of a ranked post.
type PostSentiment struct {
	Score      float64 `json:"score"`
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Entities lists structured tokens found in a post.
type Entities struct {
	Hashtags []string `json:"hashtags"`
}

// RankedPost is a record projected into the shape the dashboard renders.
type RankedPost struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"created_at"`
	Sentiment PostSentiment `json:"sentiment"`
	User      Author        `json:"user"`
	Metrics   Metrics       `json:"metrics"`
	Entities  *Entities     `json:"entities,omitempty"`
}

// TopPosts holds the best and worst posts of a window.
type TopPosts struct {
	Positive []RankedPost `json:"positive"`
	Negative []RankedPost `json:"negative"`
}

// Topic is a token that recurs across posts.
type Topic struct {
	Topic          string  `json:"topic"`
	Count          int     `json:"count"`
	SentimentScore float64 `json:"sentiment_score"`
}

// Diagnostics reports records excluded from every aggregate.
type Diagnostics struct {
	SkippedRecords int            `json:"skipped_records"`
	Reasons        map[string]int `json:"reasons,omitempty"`
}

// CompanySentiment is the complete dashboard payload for one company and time filter.
// A fresh value is built for every request; callers must treat it as read-only.
type CompanySentiment struct {
	Company          string           `json:"company"`
	TimePeriod       string           `json:"time_period"`
	TimeFilter       TimeFilter       `json:"time_filter"`
	SentimentSummary SentimentSummary `json:"sentiment_summary"`
	SentimentTrend   []TrendPoint     `json:"sentiment_trend"`
	TopTweets        TopPosts         `json:"top_tweets"`
	KeyTopics        []Topic          `json:"key_topics"`
	Diagnostics      Diagnostics      `json:"diagnostics"`
}
