package sentiment

import "sort"

// DateLayout is the ISO calendar-day form used for trend buckets.
const DateLayout = "2006-01-02"

// AggregateTrend buckets records by UTC calendar day.
// Only days that contain records are emitted, in ascending date order.
func AggregateTrend(records []Record) []TrendPoint {
	type bucket struct {
		sum   float64
		count int
	}

	buckets := make(map[string]*bucket)
	for _, r := range records {
		date := r.CreatedAt.UTC().Format(DateLayout)
		b, ok := buckets[date]
		if !ok {
			b = &bucket{}
			buckets[date] = b
		}
		b.sum += r.Score
		b.count++
	}

	points := make([]TrendPoint, 0, len(buckets))
	for date, b := range buckets {
		points = append(points, TrendPoint{
			Date:         date,
			AverageScore: b.sum / float64(b.count),
			TweetCount:   b.count,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	return points
}
