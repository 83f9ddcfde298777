// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analytics

import (
	"math"
	"sort"

	"github.com/danielhkuo/quickly-survey/models"
)

const (
	minRating = 1
	maxRating = 7
)

// LikertAnalytics summarizes integer ratings in 1..7; other values are
// ignored. The chart uses a 7-point scale when any rating above 5 was
// given, otherwise 5 points. This departs from choosing 7 points only
// when the highest rating is exactly 7: a 6 alone also selects the wider
// chart, so every counted rating has a bucket and percentages sum to 100.
func LikertAnalytics(values []models.Value) Likert {
	ratings := make([]int, 0, len(values))
	counts := make(map[int]int, maxRating)
	highest := 0
	sum := 0
	for _, v := range values {
		f, ok := v.Float()
		if !ok || f != math.Trunc(f) || f < minRating || f > maxRating {
			continue
		}
		r := int(f)
		ratings = append(ratings, r)
		counts[r]++
		sum += r
		highest = max(highest, r)
	}

	scale := 5
	if highest > 5 {
		scale = 7
	}

	total := len(ratings)
	out := Likert{
		Scale:          scale,
		ChartData:      make([]RatingCount, 0, scale),
		TotalResponses: total,
		MedianRating:   median(ratings),
	}
	if total > 0 {
		out.AverageRating = round(float64(sum)/float64(total), 2)
	}
	for r := minRating; r <= scale; r++ {
		out.ChartData = append(out.ChartData, RatingCount{
			Rating:     r,
			Count:      counts[r],
			Percentage: percent(counts[r], total),
		})
	}
	out.Distribution = out.ChartData
	return out
}

func median(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sorted := append([]int(nil), ratings...)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return float64(sorted[mid-1]+sorted[mid]) / 2
	}
	return float64(sorted[mid])
}
