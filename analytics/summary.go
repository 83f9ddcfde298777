// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-survey/models"
)

const (
	trendDays          = 7
	secondsPerQuestion = 15
	unknownLabel       = "Unknown"
)

// DeviceBreakdown classifies each response as mobile, tablet or desktop
// and tallies browser families and operating systems.
func DeviceBreakdown(responses []models.Response) DeviceStats {
	stats := DeviceStats{
		Total:            len(responses),
		Browsers:         map[string]int{},
		OperatingSystems: map[string]int{},
	}
	var browserOrder, osOrder []string

	for _, r := range responses {
		switch {
		case r.Meta.IsMobile:
			stats.Mobile++
		case r.Meta.IsTablet:
			stats.Tablet++
		default:
			stats.Desktop++
		}

		if fields := strings.Fields(r.Meta.Browser); len(fields) > 0 {
			family := fields[0]
			if _, seen := stats.Browsers[family]; !seen {
				browserOrder = append(browserOrder, family)
			}
			stats.Browsers[family]++
		}
		if os := strings.TrimSpace(r.Meta.OS); os != "" {
			if _, seen := stats.OperatingSystems[os]; !seen {
				osOrder = append(osOrder, os)
			}
			stats.OperatingSystems[os]++
		}
	}

	stats.MobilePercentage = percent(stats.Mobile, stats.Total)
	stats.DesktopPercentage = percent(stats.Desktop, stats.Total)
	stats.TabletPercentage = percent(stats.Tablet, stats.Total)
	stats.TopBrowser = modal(stats.Browsers, browserOrder)
	stats.TopOS = modal(stats.OperatingSystems, osOrder)
	return stats
}

// modal returns the most frequent key, ties going to the first seen
func modal(counts map[string]int, order []string) string {
	best, bestCount := unknownLabel, 0
	for _, key := range order {
		if counts[key] > bestCount {
			best, bestCount = key, counts[key]
		}
	}
	return best
}

// TrendStart is the first instant of the trend window ending on now's day
func TrendStart(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(trendDays - 1))
}

// ResponseTrend buckets submissions by UTC day over the seven days ending
// on now's day. Days without submissions are included with a zero count.
func ResponseTrend(submitted []time.Time, now time.Time) []TrendPoint {
	counts := make(map[string]int, len(submitted))
	for _, t := range submitted {
		counts[t.UTC().Format(time.DateOnly)]++
	}

	start := TrendStart(now)
	points := make([]TrendPoint, 0, trendDays)
	for i := 0; i < trendDays; i++ {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		points = append(points, TrendPoint{Date: day, Count: counts[day]})
	}
	return points
}

// CompletionRate is the mean share of questions answered per response, as
// a percentage with one decimal.
func CompletionRate(questions []models.Question, responses []models.Response) float64 {
	if len(questions) == 0 || len(responses) == 0 {
		return 0
	}

	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	var sum float64
	for _, r := range responses {
		answered := make(map[string]bool, len(r.Items))
		for _, item := range r.Items {
			if known[item.QuestionID] {
				answered[item.QuestionID] = true
			}
		}
		sum += float64(len(answered)) / float64(len(questions))
	}
	return round(sum/float64(len(responses))*100, 1)
}

// AverageResponseTime estimates time spent from the answers given, at
// fifteen seconds per answered question.
func AverageResponseTime(responses []models.Response) string {
	if len(responses) == 0 {
		return "0"
	}

	items := 0
	for _, r := range responses {
		items += len(r.Items)
	}
	seconds := float64(items) / float64(len(responses)) * secondsPerQuestion

	if minutes := int(seconds / 60); minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", int(math.Round(seconds)))
}
