package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gauthierbraillon/sentiboard/internal/sentiment"
)

// Timestamp layouts accepted for string created_at values. Zone-less values are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// wireRecord is the union of every record shape the API and the cache emit.
type wireRecord struct {
	ID             json.RawMessage    `json:"id"`
	Text           string             `json:"text"`
	CreatedAt      json.RawMessage    `json:"created_at,omitempty"`
	Sentiment      json.RawMessage    `json:"sentiment,omitempty"`
	SentimentScore *float64           `json:"sentiment_score,omitempty"`
	Score          *float64           `json:"score,omitempty"`
	Likes          json.RawMessage    `json:"likes,omitempty"`
	Username       string             `json:"username,omitempty"`
	User           *sentiment.Author  `json:"user,omitempty"`
	Metrics        *sentiment.Metrics `json:"metrics,omitempty"`
	Malformed      bool               `json:"malformed,omitempty"`
}

type wireSentiment struct {
	Score      *float64 `json:"score"`
	Label      string   `json:"label,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// DecodeRecords parses a JSON array of records.
// Each element is decoded on its own: field-level problems are left for
// sentiment.Normalize to reject, and only a body that is not an array is an error.
func DecodeRecords(data []byte) ([]sentiment.RawRecord, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}

	out := make([]sentiment.RawRecord, 0, len(elems))
	for _, elem := range elems {
		out = append(out, decodeRecord(elem))
	}
	return out, nil
}

func decodeRecord(elem json.RawMessage) sentiment.RawRecord {
	var w wireRecord
	if err := json.Unmarshal(elem, &w); err != nil {
		var idOnly struct {
			ID json.RawMessage `json:"id"`
		}
		_ = json.Unmarshal(elem, &idOnly)
		return sentiment.MalformedRecord{ID: decodeID(idOnly.ID)}
	}
	return w.raw()
}

func (w wireRecord) raw() sentiment.RawRecord {
	id := decodeID(w.ID)
	likes, ok := decodeLikes(w.Likes)
	if w.Malformed || !ok {
		return sentiment.MalformedRecord{ID: id}
	}
	createdAt := decodeTime(w.CreatedAt)

	if isAbsent(w.Sentiment) && w.Score == nil && w.SentimentScore != nil {
		return sentiment.MinimalRecord{ID: id, Text: w.Text, Score: w.SentimentScore, CreatedAt: createdAt}
	}

	score, confidence := decodeSentiment(w.Sentiment)
	if score == nil {
		score = w.Score
	}
	author := w.User
	if author == nil && w.Username != "" {
		author = &sentiment.Author{
			Username:        w.Username,
			Name:            w.Username,
			ProfileImageURL: sentiment.PlaceholderAuthor.ProfileImageURL,
		}
	}

	return sentiment.FullRecord{
		ID:         id,
		CreatedAt:  createdAt,
		Text:       w.Text,
		Score:      score,
		Likes:      likes,
		Confidence: confidence,
		Author:     author,
		Metrics:    w.Metrics,
	}
}

// EncodeRecords writes records in the form DecodeRecords reads. Timestamps are written in UTC.
func EncodeRecords(raw []sentiment.RawRecord) ([]byte, error) {
	wire := make([]wireRecord, 0, len(raw))
	for _, r := range raw {
		switch rec := r.(type) {
		case sentiment.FullRecord:
			w := wireRecord{
				ID:        encodeString(rec.ID),
				Text:      rec.Text,
				CreatedAt: encodeTime(rec.CreatedAt),
				Likes:     encodeLikes(rec.Likes),
				User:      rec.Author,
				Metrics:   rec.Metrics,
			}
			if rec.Score != nil {
				s, err := json.Marshal(wireSentiment{Score: rec.Score, Confidence: rec.Confidence})
				if err != nil {
					return nil, fmt.Errorf("failed to encode record %q: %w", rec.ID, err)
				}
				w.Sentiment = s
			}
			wire = append(wire, w)
		case sentiment.MinimalRecord:
			wire = append(wire, wireRecord{
				ID:             encodeString(rec.ID),
				Text:           rec.Text,
				CreatedAt:      encodeTime(rec.CreatedAt),
				SentimentScore: rec.Score,
			})
		case sentiment.MalformedRecord:
			wire = append(wire, wireRecord{ID: encodeString(rec.ID), Malformed: true})
		}
	}

	return json.Marshal(wire)
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// decodeID accepts string and numeric ids.
func decodeID(raw json.RawMessage) string {
	if isAbsent(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// decodeTime accepts epoch seconds as a number or numeric string, or a formatted timestamp.
// Unreadable values decode to the zero time.
func decodeTime(raw json.RawMessage) time.Time {
	if isAbsent(raw) {
		return time.Time{}
	}

	var epoch float64
	if err := json.Unmarshal(raw, &epoch); err == nil {
		return fromEpoch(epoch)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(f)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func fromEpoch(seconds float64) time.Time {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return time.Time{}
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC()
}

// decodeSentiment accepts a bare number, a numeric string or a {score, confidence} object.
func decodeSentiment(raw json.RawMessage) (score, confidence *float64) {
	if isAbsent(raw) {
		return nil, nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f, nil
		}
		return nil, nil
	}

	var obj wireSentiment
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Score, obj.Confidence
	}
	return nil, nil
}

// decodeLikes accepts integers and integral floats such as 2.0.
// A non-integral or non-numeric value reports false.
func decodeLikes(raw json.RawMessage) (int64, bool) {
	if isAbsent(raw) {
		return 0, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func encodeLikes(likes int64) json.RawMessage {
	if likes == 0 {
		return nil
	}
	return json.RawMessage(strconv.FormatInt(likes, 10))
}

func encodeString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

func encodeTime(t time.Time) json.RawMessage {
	if t.IsZero() {
		return nil
	}
	return encodeString(t.UTC().Format(time.RFC3339Nano))
}
