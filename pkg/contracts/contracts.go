// Package contracts pins the JSON documents sentiboard exchanges with the
// records API and with consumers of its dashboard output.
package contracts

// RecordsResponseContract is a records API body mixing every record shape the
// API has served: raw rows with a numeric sentiment, tweet-shaped rows with a
// sentiment object, and minimal rows carrying only a sentiment_score.
const RecordsResponseContract = `[
	{
		"id": 101,
		"text": "Loving the new #Apple watch",
		"created_at": "2025-03-14T09:30:00Z",
		"sentiment": 0.91,
		"likes": 1200,
		"username": "watchfan"
	},
	{
		"id": "102",
		"text": "Battery life is disappointing #Apple",
		"created_at": "2025-03-14T18:05:00Z",
		"sentiment": {"score": 0.12, "label": "negative", "confidence": 0.87},
		"user": {"username": "critic", "name": "A Critic", "profile_image_url": "https://example.com/c.png", "followers_count": 340},
		"metrics": {"retweet_count": 4, "reply_count": 2, "like_count": 31, "quote_count": 0}
	},
	{
		"id": "103",
		"text": "It is fine I guess",
		"created_at": 1741946400,
		"sentiment_score": 0.5
	}
]`

// TokenResponseContract is the body of a successful token or refresh request.
const TokenResponseContract = `{
	"access": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJleHAiOjE3NDE5NDY0MDB9.signature",
	"refresh": "refresh-token"
}`

// Dashboard output field names. Consumers bind to these; renaming one is a breaking change.
var (
	DashboardFields = []string{
		"company", "time_period", "time_filter", "sentiment_summary",
		"sentiment_trend", "top_tweets", "key_topics", "diagnostics",
	}
	SummaryFields = []string{
		"overall_score", "positive_percentage", "negative_percentage",
		"neutral_percentage", "total_tweets", "no_data",
	}
	TrendPointFields = []string{"date", "average_score", "tweet_count"}
	TopPostsFields   = []string{"positive", "negative"}
	PostFields       = []string{"id", "text", "created_at", "sentiment", "user", "metrics"}
	TopicFields      = []string{"topic", "count", "sentiment_score"}
)
