package sentiment

import "time"

// refNow is a fixed evaluation instant shared by the package tests.
var refNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func score(v float64) *float64 { return &v }

func record(id string, s float64, at time.Time, text string) Record {
	return Record{
		ID:         id,
		CreatedAt:  at,
		Text:       text,
		Score:      s,
		Confidence: DefaultConfidence,
		Author:     PlaceholderAuthor,
	}
}

func full(id string, s float64, at time.Time, text string, likes int64) FullRecord {
	return FullRecord{ID: id, CreatedAt: at, Text: text, Score: score(s), Likes: likes}
}
