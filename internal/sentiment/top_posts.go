package sentiment

import (
	"regexp"
	"slices"
	"strings"
)

// DefaultTopPostsBound is how many posts each side of TopPosts holds by default.
const DefaultTopPostsBound = 5

var hashtagPattern = regexp.MustCompile(`#\w+`)

// SelectTopPosts returns up to bound most positive and most negative posts.
// Equal scores keep their input order. Neutral posts appear in neither list.
func SelectTopPosts(records []Record, bound int) TopPosts {
	if bound < 0 {
		bound = 0
	}

	var positive, negative []Record
	for _, r := range records {
		switch Classify(r.Score) {
		case LabelPositive:
			positive = append(positive, r)
		case LabelNegative:
			negative = append(negative, r)
		}
	}

	slices.SortStableFunc(positive, func(a, b Record) int {
		return compareScores(b.Score, a.Score)
	})
	slices.SortStableFunc(negative, func(a, b Record) int {
		return compareScores(a.Score, b.Score)
	})

	return TopPosts{
		Positive: rank(positive, bound),
		Negative: rank(negative, bound),
	}
}

func compareScores(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func rank(records []Record, bound int) []RankedPost {
	if len(records) > bound {
		records = records[:bound]
	}
	posts := make([]RankedPost, 0, len(records))
	for _, r := range records {
		posts = append(posts, project(r))
	}
	return posts
}

func project(r Record) RankedPost {
	post := RankedPost{
		ID:        r.ID,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
		Sentiment: PostSentiment{
			Score:      r.Score,
			Label:      Classify(r.Score),
			Confidence: r.Confidence,
		},
		User:    r.Author,
		Metrics: r.Metrics,
	}
	if tags := hashtags(r.Text); len(tags) > 0 {
		post.Entities = &Entities{Hashtags: tags}
	}
	return post
}

// hashtags returns the distinct hashtags of text without the leading '#'.
func hashtags(text string) []string {
	matches := hashtagPattern.FindAllString(text, -1)
	var tags []string
	for _, m := range matches {
		tag := strings.TrimPrefix(m, "#")
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}
