package sentiment

import (
	"math"
	"time"
)

// Reasons a raw record is excluded from aggregation.
const (
	ReasonMissingID        = "missing_id"
	ReasonDuplicateID      = "duplicate_id"
	ReasonMissingScore     = "missing_score"
	ReasonScoreOutOfRange  = "score_out_of_range"
	ReasonMissingTimestamp = "missing_timestamp"
	ReasonNegativeLikes    = "negative_likes"
	ReasonUnknownShape     = "unknown_shape"
	ReasonMalformed        = "malformed_record"
)

// DefaultConfidence is reported for posts whose source gives no model confidence.
const DefaultConfidence = 0.9

// PlaceholderAuthor stands in for sources that carry no author data.
var PlaceholderAuthor = Author{
	Username:        "user",
	Name:            "User",
	ProfileImageURL: "https://via.placeholder.com/48",
	FollowersCount:  0,
}

// Rejection describes one record dropped by Normalize.
type Rejection struct {
	ID     string
	Reason string
}

// Normalize converts raw records into canonical Records, preserving order.
// Malformed records are dropped and reported; the input slice is not modified.
// Later records reusing an earlier ID are treated as duplicates.
func Normalize(raw []RawRecord) ([]Record, []Rejection) {
	records := make([]Record, 0, len(raw))
	var rejected []Rejection
	seen := make(map[string]struct{}, len(raw))

	for _, r := range raw {
		rec, reason := normalizeOne(r)
		if reason == "" {
			if _, dup := seen[rec.ID]; dup {
				reason = ReasonDuplicateID
			}
		}
		if reason != "" {
			rejected = append(rejected, Rejection{ID: rec.ID, Reason: reason})
			continue
		}
		seen[rec.ID] = struct{}{}
		records = append(records, rec)
	}

	return records, rejected
}

func normalizeOne(raw RawRecord) (Record, string) {
	switch r := raw.(type) {
	case FullRecord:
		rec := Record{ID: r.ID, CreatedAt: r.CreatedAt, Text: r.Text, Likes: r.Likes}
		if reason := validate(r.ID, r.CreatedAt, r.Score, r.Likes); reason != "" {
			return rec, reason
		}
		rec.CreatedAt = r.CreatedAt.UTC()
		rec.Score = *r.Score
		rec.Confidence = DefaultConfidence
		if r.Confidence != nil {
			rec.Confidence = *r.Confidence
		}
		rec.Author = PlaceholderAuthor
		if r.Author != nil {
			rec.Author = *r.Author
		}
		rec.Metrics = Metrics{LikeCount: r.Likes}
		if r.Metrics != nil {
			rec.Metrics = *r.Metrics
			if rec.Metrics.LikeCount == 0 {
				rec.Metrics.LikeCount = r.Likes
			}
		}
		return rec, ""
	case MinimalRecord:
		rec := Record{ID: r.ID, CreatedAt: r.CreatedAt, Text: r.Text}
		if reason := validate(r.ID, r.CreatedAt, r.Score, 0); reason != "" {
			return rec, reason
		}
		rec.CreatedAt = r.CreatedAt.UTC()
		rec.Score = *r.Score
		rec.Confidence = DefaultConfidence
		rec.Author = PlaceholderAuthor
		return rec, ""
	case MalformedRecord:
		return Record{ID: r.ID}, ReasonMalformed
	default:
		return Record{}, ReasonUnknownShape
	}
}

func validate(id string, createdAt time.Time, score *float64, likes int64) string {
	switch {
	case id == "":
		return ReasonMissingID
	case score == nil:
		return ReasonMissingScore
	case math.IsNaN(*score) || *score < 0 || *score > 1:
		return ReasonScoreOutOfRange
	case createdAt.IsZero():
		return ReasonMissingTimestamp
	case likes < 0:
		return ReasonNegativeLikes
	}
	return ""
}

// diagnose folds rejections into the result-level report.
func diagnose(rejected []Rejection) Diagnostics {
	d := Diagnostics{SkippedRecords: len(rejected)}
	if len(rejected) == 0 {
		return d
	}
	d.Reasons = make(map[string]int)
	for _, r := range rejected {
		d.Reasons[r.Reason]++
	}
	return d
}
