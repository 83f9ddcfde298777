// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analytics

import (
	"math"

	"github.com/danielhkuo/quickly-survey/models"
)

// tally counts option keys in declared order. Keys are option values,
// falling back to the label; answers may carry either. Unknown answers are
// appended in the order they first appear.
type tally struct {
	keys   []string
	counts map[string]int
	alias  map[string]string
}

func newTally(options []models.Option) *tally {
	t := &tally{counts: make(map[string]int), alias: make(map[string]string)}
	for _, opt := range options {
		key := opt.Value
		if key == "" {
			key = opt.Label
		}
		if _, seen := t.counts[key]; seen {
			continue
		}
		t.keys = append(t.keys, key)
		t.counts[key] = 0
		t.alias[key] = key
		if _, taken := t.alias[opt.Label]; !taken && opt.Label != "" {
			t.alias[opt.Label] = key
		}
	}
	return t
}

func (t *tally) add(answer string) {
	key, ok := t.alias[answer]
	if !ok {
		key = answer
		t.alias[answer] = key
		t.keys = append(t.keys, key)
	}
	t.counts[key]++
}

// SingleChoiceAnalytics tallies one selection per answer
func SingleChoiceAnalytics(q models.Question, values []models.Value) SingleChoice {
	t := newTally(q.Options)
	for _, v := range values {
		if s := v.Strings(); len(s) > 0 && s[0] != "" {
			t.add(s[0])
		}
	}

	total := len(values)
	out := SingleChoice{ChartData: make([]ChoiceCount, 0, len(t.keys)), TotalResponses: total}
	for _, key := range t.keys {
		out.ChartData = append(out.ChartData, ChoiceCount{
			Option:     key,
			Count:      t.counts[key],
			Percentage: percent(t.counts[key], total),
		})
	}
	for i := range out.ChartData {
		if out.MostSelected == nil || out.ChartData[i].Count > out.MostSelected.Count {
			best := out.ChartData[i]
			out.MostSelected = &best
		}
	}
	return out
}

// MultipleChoiceAnalytics tallies every selection of every answer.
// Selection percentages are over all selections; respondent percentages
// are over the answers to this question.
func MultipleChoiceAnalytics(q models.Question, values []models.Value) MultipleChoice {
	t := newTally(q.Options)
	selections := 0
	for _, v := range values {
		for _, s := range v.Strings() {
			if s == "" {
				continue
			}
			t.add(s)
			selections++
		}
	}

	total := len(values)
	out := MultipleChoice{
		ChartData:       make([]SelectionCount, 0, len(t.keys)),
		TotalResponses:  total,
		TotalSelections: selections,
	}
	if total > 0 {
		out.AvgSelectionsPerResponse = round(float64(selections)/float64(total), 2)
	}
	for _, key := range t.keys {
		out.ChartData = append(out.ChartData, SelectionCount{
			Option:               key,
			Count:                t.counts[key],
			SelectionPercentage:  percent(t.counts[key], selections),
			RespondentPercentage: percent(t.counts[key], total),
		})
	}
	for i := range out.ChartData {
		if out.MostSelected == nil || out.ChartData[i].Count > out.MostSelected.Count {
			best := out.ChartData[i]
			out.MostSelected = &best
		}
	}
	return out
}

// percent is count/total as a percentage with one decimal
func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round(float64(count)/float64(total)*100, 1)
}

func round(f float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(f*p) / p
}
