// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analytics

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/danielhkuo/quickly-survey/models"
)

const (
	maxSamples   = 10
	maxTopWords  = 20
	minWordRunes = 3
)

var stopWords = map[string]bool{
	// Spanish
	"los": true, "las": true, "una": true, "que": true, "con": true,
	"por": true, "para": true, "del": true, "como": true, "más": true,
	// English
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "with": true, "this": true, "that": true,
	"was": true,
}

// TextAnalytics summarizes free-text answers. Blank answers are dropped
// before anything is counted.
func TextAnalytics(values []models.Value) TextAnalysis {
	samples := make([]TextSample, 0, len(values))
	for _, v := range values {
		// Numbers typed into a text question are kept as their text form
		if v.Kind != models.KindText && v.Kind != models.KindNumber {
			continue
		}
		text := strings.TrimSpace(v.String())
		if text == "" {
			continue
		}
		samples = append(samples, TextSample{
			Text:      text,
			Length:    utf8.RuneCountInString(text),
			WordCount: len(strings.Fields(text)),
		})
	}

	out := TextAnalysis{
		TotalResponses:  len(samples),
		SampleResponses: samples[:min(len(samples), maxSamples)],
		WordFrequencies: []WordCount{},
	}
	if len(samples) == 0 {
		return out
	}

	texts := make([]string, len(samples))
	lengths, words := 0, 0
	shortest, longest := samples[0], samples[0]
	for i, s := range samples {
		texts[i] = s.Text
		lengths += s.Length
		words += s.WordCount
		if s.Length < shortest.Length {
			shortest = s
		}
		if s.Length > longest.Length {
			longest = s
		}
	}

	n := float64(len(samples))
	out.AverageLength = int(math.Round(float64(lengths) / n))
	out.AverageWordCount = int(math.Round(float64(words) / n))
	out.ShortestResponse = &shortest
	out.LongestResponse = &longest

	freq := WordFrequencies(texts)
	out.WordFrequencies = freq[:min(len(freq), maxTopWords)]
	return out
}

// WordFrequencies counts lowercased words with punctuation removed,
// skipping stop words and words shorter than three letters. The result is
// sorted by count, ties in first-seen order.
func WordFrequencies(texts []string) []WordCount {
	counts := make(map[string]int)
	var order []string
	for _, text := range texts {
		cleaned := strings.Map(func(r rune) rune {
			switch {
			case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
				return r
			case r == '_':
				return r
			}
			return -1
		}, strings.ToLower(text))

		for _, w := range strings.Fields(cleaned) {
			if utf8.RuneCountInString(w) < minWordRunes || stopWords[w] {
				continue
			}
			if _, seen := counts[w]; !seen {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	out := make([]WordCount, 0, len(order))
	for _, w := range order {
		out = append(out, WordCount{Word: w, Count: counts[w]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
