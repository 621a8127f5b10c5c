package sentiment

import (
	"regexp"
	"slices"
	"strings"
)

// DefaultMaxTopics bounds the key topics list.
const DefaultMaxTopics = 10

// minTokenLen is exclusive: plain words need at least minTokenLen+1 characters.
const minTokenLen = 3

var (
	nonTokenChars  = regexp.MustCompile(`[^a-z0-9\s#@]`)
	mentionPattern = regexp.MustCompile(`@\w+`)
)

// DefaultStopwords are filler words dropped when stopword filtering is enabled.
// Only entries longer than minTokenLen can ever match a token.
var DefaultStopwords = []string{
	"the", "and", "is", "in", "to", "a", "of", "for", "with", "on", "at", "from",
	"by", "about", "as", "an", "my", "i", "me", "you", "we", "they", "it", "this", "that",
}

// TopicExtractor counts recurring words, hashtags and mentions across posts.
// All tokens are lowercased, hashtags and mentions included.
type TopicExtractor struct {
	MaxTopics int
	Stopwords []string
}

type topicTally struct {
	topic      string
	count      int
	totalScore float64
}

// Extract returns tokens found in more than one post, most frequent first.
// Ties keep the order in which tokens first appeared.
func (e TopicExtractor) Extract(records []Record) []Topic {
	maxTopics := e.MaxTopics
	if maxTopics <= 0 {
		maxTopics = DefaultMaxTopics
	}
	stop := make(map[string]struct{}, len(e.Stopwords))
	for _, w := range e.Stopwords {
		stop[strings.ToLower(w)] = struct{}{}
	}

	index := make(map[string]int)
	var tallies []*topicTally
	for _, r := range records {
		for _, token := range Tokenize(r.Text) {
			if _, skip := stop[token]; skip {
				continue
			}
			i, ok := index[token]
			if !ok {
				i = len(tallies)
				index[token] = i
				tallies = append(tallies, &topicTally{topic: token})
			}
			tallies[i].count++
			tallies[i].totalScore += r.Score
		}
	}

	topics := make([]Topic, 0, len(tallies))
	for _, t := range tallies {
		if t.count <= 1 {
			continue
		}
		topics = append(topics, Topic{
			Topic:          t.topic,
			Count:          t.count,
			SentimentScore: round2(t.totalScore / float64(t.count)),
		})
	}
	slices.SortStableFunc(topics, func(a, b Topic) int {
		return b.Count - a.Count
	})
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}

	return topics
}

// Tokenize returns the distinct topic candidates of one post, in order of appearance.
func Tokenize(text string) []string {
	cleaned := nonTokenChars.ReplaceAllString(strings.ToLower(text), "")

	var tokens []string
	seen := make(map[string]struct{})
	add := func(token string) {
		if _, dup := seen[token]; dup {
			return
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}

	for _, word := range strings.Fields(cleaned) {
		if len(word) > minTokenLen {
			add(word)
		}
	}
	for _, tag := range hashtagPattern.FindAllString(text, -1) {
		add(strings.ToLower(tag))
	}
	for _, mention := range mentionPattern.FindAllString(text, -1) {
		add(strings.ToLower(mention))
	}

	return tokens
}
