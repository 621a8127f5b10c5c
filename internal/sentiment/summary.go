package sentiment

import "errors"

// ErrNoData is returned by Summarize when there is nothing to summarize.
var ErrNoData = errors.New("no records to summarize")

// Summarize computes the overall score and label percentages.
// Percentages are rounded independently and may not add up to exactly 100.
func Summarize(records []Record) (SentimentSummary, error) {
	total := len(records)
	if total == 0 {
		return SentimentSummary{}, ErrNoData
	}

	var sum float64
	var positive, negative, neutral int
	for _, r := range records {
		sum += r.Score
		switch Classify(r.Score) {
		case LabelPositive:
			positive++
		case LabelNegative:
			negative++
		default:
			neutral++
		}
	}

	return SentimentSummary{
		OverallScore:       round2(sum / float64(total)),
		PositivePercentage: percent(positive, total),
		NegativePercentage: percent(negative, total),
		NeutralPercentage:  percent(neutral, total),
		TotalTweets:        total,
	}, nil
}

// NoDataSummary is the summary reported for an empty window.
func NoDataSummary() SentimentSummary {
	return SentimentSummary{NoData: true}
}
