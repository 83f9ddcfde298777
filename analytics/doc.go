// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package analytics aggregates a survey's responses into a report: one
// processor per question type plus a summary of totals, completion,
// devices and a seven-day trend.
package analytics
