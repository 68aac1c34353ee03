package core

import (
	"sort"
	"strconv"
	"strings"
)

// MonthlyStats aggregates practice minutes for one year-month.
type MonthlyStats struct {
	// DayTotals maps a two-digit day of month ("01".."31") to total minutes.
	DayTotals map[string]int
	// CategoryTotals maps every known category to its total minutes. Entries
	// with an unknown category count toward Other.
	CategoryTotals map[Category]int
	TotalMinutes   int
}

// minBarRatio keeps zero and near-zero bars visible in day charts.
const minBarRatio = 0.02

// ComputeMonthlyStats aggregates every date bucket whose key has monthKey
// ("YYYY-MM") as its year-month prefix. A month with no matching entries
// yields empty maps and a zero total; that is valid "no data" output, not an
// error.
func ComputeMonthlyStats(s State, monthKey string) MonthlyStats {
	stats := MonthlyStats{
		DayTotals:      map[string]int{},
		CategoryTotals: map[Category]int{},
	}

	prefix := monthKey + "-"
	for dateKey, entries := range s.EntriesByDate {
		if !strings.HasPrefix(dateKey, prefix) || len(dateKey) < 10 {
			continue
		}
		day := dateKey[8:10]
		for _, e := range entries {
			stats.DayTotals[day] += e.Minutes
			stats.CategoryTotals[e.Category.Normalize()] += e.Minutes
			stats.TotalMinutes += e.Minutes
		}
	}

	if len(stats.DayTotals) == 0 {
		return stats
	}

	// Known categories always appear once any data exists, zeros included.
	for _, c := range Categories {
		if _, ok := stats.CategoryTotals[c]; !ok {
			stats.CategoryTotals[c] = 0
		}
	}

	return stats
}

// SortedDays returns the day keys in ascending numeric order, so "2" comes
// before "10".
func (m MonthlyStats) SortedDays() []string {
	days := make([]string, 0, len(m.DayTotals))
	for d := range m.DayTotals {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		a, _ := strconv.Atoi(days[i])
		b, _ := strconv.Atoi(days[j])
		return a < b
	})
	return days
}

// BarRatios returns, per day, the bar width ratio relative to the busiest
// day. The divisor defaults to 1 if there is no data, and every ratio is
// floored at minBarRatio.
func (m MonthlyStats) BarRatios() map[string]float64 {
	max := 0
	for _, total := range m.DayTotals {
		if total > max {
			max = total
		}
	}
	if max == 0 {
		max = 1
	}

	ratios := make(map[string]float64, len(m.DayTotals))
	for day, total := range m.DayTotals {
		r := float64(total) / float64(max)
		if r < minBarRatio {
			r = minBarRatio
		}
		ratios[day] = r
	}
	return ratios
}
