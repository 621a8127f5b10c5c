package records

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gauthierbraillon/sentiboard/internal/sentiment"
)

const (
	DefaultSyntheticCount = 500
	DefaultSyntheticSpan  = 365 * 24 * time.Hour

	positiveShare = 0.65
	hashtagChance = 0.3
)

type catalog struct {
	name     string
	hashtags []string
	products []string
}

var catalogs = map[string]catalog{
	"apple": {
		name:     "Apple Inc.",
		hashtags: []string{"Apple", "iPhone", "MacBook", "iOS", "iPad", "AirPods", "AppleWatch"},
		products: []string{"iPhone 14", "iOS 16", "MacBook Pro", "Apple Watch", "AirPods"},
	},
	"tesla": {
		name:     "Tesla, Inc.",
		hashtags: []string{"Tesla", "EV", "ModelY", "Model3", "Cybertruck", "FSD"},
		products: []string{"Model Y", "Full Self-Driving", "Cybertruck", "Supercharger"},
	},
	"microsoft": {
		name:     "Microsoft",
		hashtags: []string{"Microsoft", "Windows11", "Office365", "Teams", "Xbox", "Azure", "Surface"},
		products: []string{"Windows 11", "Microsoft Teams", "Xbox", "Office 365", "Azure"},
	},
}

var positivePhrases = []string{
	"love my new {product}",
	"amazing experience with {product}",
	"best {product} ever",
	"{product} is incredible",
	"impressed with the {product}",
	"customer service is top notch",
	"worth every penny",
	"can't believe how good {product} is",
	"exceeded my expectations",
	"game changer",
}

var negativePhrases = []string{
	"disappointed with {product}",
	"terrible experience with {product}",
	"{product} keeps crashing",
	"overpriced for what you get",
	"customer service was unhelpful",
	"wouldn't recommend {product}",
	"waste of money",
	"having issues with my {product}",
	"expected better from {company}",
	"going back to the competition",
}

var (
	usernameAdjectives = []string{"happy", "tech", "digital", "social", "cyber", "online", "web", "cloud", "smart", "future"}
	usernameNouns      = []string{"user", "fan", "guru", "ninja", "expert", "enthusiast", "lover", "pro", "master", "geek"}
	firstNames         = []string{"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda", "Emma", "Noah"}
	lastNames          = []string{"Smith", "Johnson", "Williams", "Jones", "Brown", "Davis", "Miller", "Wilson", "Moore", "Taylor"}
)

// SyntheticSource generates plausible posts for demos and offline use.
// Equal field values and company ids always produce the same records.
type SyntheticSource struct {
	Seed  uint64
	Count int
	Span  time.Duration
	// Now anchors the generated timestamps; the zero value means the current time.
	Now time.Time
}

func (s SyntheticSource) FetchRawSentimentRecords(ctx context.Context, companyID string) ([]sentiment.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("company is required")
	}

	count := s.Count
	if count <= 0 {
		count = DefaultSyntheticCount
	}
	span := s.Span
	if span <= 0 {
		span = DefaultSyntheticSpan
	}
	now := s.Now
	if now.IsZero() {
		now = time.Now()
	}

	rng := rand.New(rand.NewPCG(s.Seed, companySeed(companyID)))
	cat := catalogFor(companyID)
	ids := rngReader{rng}

	out := make([]sentiment.RawRecord, 0, count)
	for i := range count {
		positive := float64(i) < float64(count)*positiveShare
		rec, err := generate(rng, ids, cat, positive, now.Add(-time.Duration(rng.Int64N(int64(span)))))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

func generate(rng *rand.Rand, ids rngReader, cat catalog, positive bool, at time.Time) (sentiment.FullRecord, error) {
	id, err := uuid.NewRandomFromReader(ids)
	if err != nil {
		return sentiment.FullRecord{}, fmt.Errorf("failed to generate id: %w", err)
	}

	phrases, scoreLo, scoreHi, confLo, confHi, likesLo, likesHi := negativePhrases, 0.05, 0.3, 0.8, 0.95, 30, 200
	if positive {
		phrases, scoreLo, scoreHi, confLo, confHi, likesLo, likesHi = positivePhrases, 0.7, 0.95, 0.85, 0.98, 50, 300
	}

	text := pick(rng, phrases)
	text = strings.ReplaceAll(text, "{product}", pick(rng, cat.products))
	text = strings.ReplaceAll(text, "{company}", cat.name)
	if rng.Float64() < hashtagChance {
		n := 1 + rng.IntN(min(3, len(cat.hashtags)))
		for _, i := range rng.Perm(len(cat.hashtags))[:n] {
			text += " #" + cat.hashtags[i]
		}
	}

	score := uniform2(rng, scoreLo, scoreHi)
	confidence := uniform2(rng, confLo, confHi)
	likes := int64(likesLo + rng.IntN(likesHi-likesLo+1))

	return sentiment.FullRecord{
		ID:         id.String(),
		CreatedAt:  at.UTC(),
		Text:       text,
		Score:      &score,
		Likes:      likes,
		Confidence: &confidence,
		Author: &sentiment.Author{
			Username:        pick(rng, usernameAdjectives) + pick(rng, usernameNouns) + fmt.Sprint(rng.IntN(1000)),
			Name:            pick(rng, firstNames) + " " + pick(rng, lastNames),
			ProfileImageURL: sentiment.PlaceholderAuthor.ProfileImageURL,
			FollowersCount:  int64(100 + rng.IntN(9901)),
		},
		Metrics: &sentiment.Metrics{
			RetweetCount: int64(float64(likes) * (0.1 + 0.4*rng.Float64())),
			ReplyCount:   int64(float64(likes) * (0.05 + 0.25*rng.Float64())),
			LikeCount:    likes,
			QuoteCount:   int64(float64(likes) * (0.02 + 0.08*rng.Float64())),
		},
	}, nil
}

func catalogFor(companyID string) catalog {
	if c, ok := catalogs[strings.ToLower(companyID)]; ok {
		return c
	}
	tag := strings.ReplaceAll(companyID, " ", "")
	return catalog{name: companyID, hashtags: []string{tag}, products: []string{companyID}}
}

func companySeed(companyID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(companyID)))
	return h.Sum64()
}

func pick(rng *rand.Rand, items []string) string {
	return items[rng.IntN(len(items))]
}

// uniform2 draws from [lo, hi] rounded to two decimals.
func uniform2(rng *rand.Rand, lo, hi float64) float64 {
	return decimal.NewFromFloat(lo + (hi-lo)*rng.Float64()).Round(2).InexactFloat64()
}

// rngReader feeds uuid generation from the seeded generator.
type rngReader struct {
	rng *rand.Rand
}

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.Uint32())
	}
	return len(p), nil
}
