package sentiment

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Builder assembles CompanySentiment results from raw records.
// A Builder holds only configuration and is safe for concurrent use.
type Builder struct {
	log       *zap.SugaredLogger
	topBound  int
	maxTopics int
	stopwords []string
}

// BuilderOption configures the Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used to report skipped records.
func WithLogger(log *zap.SugaredLogger) BuilderOption {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// WithTopPostsBound sets how many posts each side of the top posts holds.
func WithTopPostsBound(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.topBound = n
		}
	}
}

// WithMaxTopics sets the length bound of the key topics list.
func WithMaxTopics(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.maxTopics = n
		}
	}
}

// WithStopwords drops the given words from topic extraction.
func WithStopwords(words []string) BuilderOption {
	return func(b *Builder) {
		b.stopwords = slices.Clone(words)
	}
}

// NewBuilder creates a Builder with the dashboard defaults.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		log:       zap.NewNop().Sugar(),
		topBound:  DefaultTopPostsBound,
		maxTopics: DefaultMaxTopics,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build aggregates raw into the dashboard payload for one company and time filter.
// raw is never modified and an empty input yields a complete "no data" result.
func (b *Builder) Build(companyID string, raw []RawRecord, filter TimeFilter, now time.Time) CompanySentiment {
	records, diag := b.normalize(companyID, raw)
	return b.aggregate(companyID, records, diag, filter, now)
}

// BuildAll builds every time filter in parallel from the same raw snapshot.
func (b *Builder) BuildAll(ctx context.Context, companyID string, raw []RawRecord, now time.Time) (map[TimeFilter]CompanySentiment, error) {
	records, diag := b.normalize(companyID, raw)

	var mu sync.Mutex
	results := make(map[TimeFilter]CompanySentiment, len(AllTimeFilters))

	g, gctx := errgroup.WithContext(ctx)
	for _, filter := range AllTimeFilters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cs := b.aggregate(companyID, records, cloneDiagnostics(diag), filter, now)
			mu.Lock()
			results[filter] = cs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (b *Builder) normalize(companyID string, raw []RawRecord) ([]Record, Diagnostics) {
	records, rejected := Normalize(raw)
	for _, r := range rejected {
		b.log.Warnw("skipping malformed record",
			"company", companyID,
			"id", r.ID,
			"reason", r.Reason,
		)
	}
	return records, diagnose(rejected)
}

func (b *Builder) aggregate(companyID string, records []Record, diag Diagnostics, filter TimeFilter, now time.Time) CompanySentiment {
	window := FilterSince(records, Resolve(filter, now))

	summary, err := Summarize(window)
	if errors.Is(err, ErrNoData) {
		summary = NoDataSummary()
	}

	extractor := TopicExtractor{MaxTopics: b.maxTopics, Stopwords: b.stopwords}

	return CompanySentiment{
		Company:          companyID,
		TimePeriod:       filter.Label(),
		TimeFilter:       filter,
		SentimentSummary: summary,
		SentimentTrend:   AggregateTrend(window),
		TopTweets:        SelectTopPosts(window, b.topBound),
		KeyTopics:        extractor.Extract(window),
		Diagnostics:      diag,
	}
}

func cloneDiagnostics(d Diagnostics) Diagnostics {
	if d.Reasons == nil {
		return d
	}
	reasons := make(map[string]int, len(d.Reasons))
	for k, v := range d.Reasons {
		reasons[k] = v
	}
	return Diagnostics{SkippedRecords: d.SkippedRecords, Reasons: reasons}
}
