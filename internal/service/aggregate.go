package service

import (
	"math"
	"sort"

	"github.com/noah-isme/smart-edu-api/internal/models"
)

// GroupKeyFunc derives the grouping key of a record.
type GroupKeyFunc func(models.ScoredRecord) string

// GroupByClass groups records by class.
func GroupByClass(r models.ScoredRecord) string { return r.Class }

// GroupBySubject groups records by subject.
func GroupBySubject(r models.ScoredRecord) string { return r.Subject }

// Summarize computes per-group statistics. A record passes when score >= passThreshold; scores
// are compared raw, so callers wanting a percentage threshold normalise first.
func Summarize(records []models.ScoredRecord, key GroupKeyFunc, passThreshold float64) map[string]models.GroupSummary {
	type accumulator struct {
		summary models.GroupSummary
		total   float64
	}

	groups := make(map[string]*accumulator)
	for _, record := range records {
		k := key(record)
		acc, ok := groups[k]
		if !ok {
			lowest := record.MaxScore
			if lowest == 0 {
				lowest = 100
			}
			acc = &accumulator{summary: models.GroupSummary{GroupKey: k, Highest: 0, Lowest: lowest}}
			groups[k] = acc
		}
		acc.summary.Count++
		acc.total += record.Score
		if record.Score > acc.summary.Highest {
			acc.summary.Highest = record.Score
		}
		if record.Score < acc.summary.Lowest {
			acc.summary.Lowest = record.Score
		}
		if record.Score >= passThreshold {
			acc.summary.PassCount++
		}
	}

	result := make(map[string]models.GroupSummary, len(groups))
	for k, acc := range groups {
		acc.summary.Average = round2(acc.total / float64(acc.summary.Count))
		acc.summary.FailCount = acc.summary.Count - acc.summary.PassCount
		result[k] = acc.summary
	}
	return result
}

// SortedSummaries flattens a summary map ordered by group key.
func SortedSummaries(summaries map[string]models.GroupSummary) []models.GroupSummary {
	out := make([]models.GroupSummary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupKey < out[j].GroupKey })
	return out
}

// NormalizeToPercent returns copies of records rescaled to a 0..100 range.
func NormalizeToPercent(records []models.ScoredRecord) []models.ScoredRecord {
	out := make([]models.ScoredRecord, len(records))
	for i, record := range records {
		record.Score = round2(record.Percent())
		record.MaxScore = 100
		out[i] = record
	}
	return out
}

// TopPerformers returns up to n records by descending score, keeping input order on ties.
func TopPerformers(records []models.ScoredRecord, n int) []models.ScoredRecord {
	sorted := make([]models.ScoredRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// PassRate folds group summaries into overall pass and fail percentages.
func PassRate(summaries map[string]models.GroupSummary) models.PassRate {
	var total, passed int
	for _, s := range summaries {
		total += s.Count
		passed += s.PassCount
	}
	rate := models.PassRate{Total: total}
	if total == 0 {
		return rate
	}
	rate.PassPercent = round2(float64(passed) / float64(total) * 100)
	rate.FailPercent = round2(100 - rate.PassPercent)
	return rate
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
