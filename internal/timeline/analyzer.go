package timeline

import (
	"sort"
	"time"

	"weft/internal/model"
)

// Detection thresholds.
const (
	dailyRhythmPerDay  = 3.0 // avg events/day over the normalization window
	dailyRhythmWindow  = 7.0 // days
	timeOfDayMinEvents = 2   // events in one hour bucket
	peakFactor         = 1.5 // bucket vs mean for peaks and weekly pattern
	burstyMinEvents    = 10
	burstyCVThreshold  = 1.0
)

// Analyze computes the timeline summary for a fixed event slice. Input
// order does not matter; events are sorted ascending internally.
func Analyze(events []model.InteractionEvent) model.TimelineAnalysis {
	var analysis model.TimelineAnalysis
	analysis.TotalInteractions = len(events)
	analysis.ResponseTimes.Percentiles = map[string]float64{}
	if len(events) == 0 {
		analysis.Patterns = []string{model.PatternNone}
		return analysis
	}

	sorted := append([]model.InteractionEvent(nil), events...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	analysis.UniqueParticipants = countParticipants(sorted)
	analysis.Density = density(sorted)
	analysis.ResponseTimes = responseTimes(sorted)
	analysis.Patterns, analysis.ActiveHours = detectPatterns(sorted, analysis.Density)
	return analysis
}

func countParticipants(events []model.InteractionEvent) int {
	seen := make(map[string]struct{})
	for _, e := range events {
		for _, p := range e.Participants {
			if p != "" {
				seen[p] = struct{}{}
			}
		}
	}
	return len(seen)
}

func density(events []model.InteractionEvent) model.ActivityDensity {
	var d model.ActivityDensity
	for _, e := range events {
		d.HourCounts[e.Timestamp.Hour()]++
		d.DayCounts[e.Timestamp.Weekday()]++
	}
	for h, n := range d.HourCounts {
		if n > d.HourCounts[d.PeakHour] {
			d.PeakHour = h
		}
	}
	for wd, n := range d.DayCounts {
		if n > d.DayCounts[d.PeakDay] {
			d.PeakDay = time.Weekday(wd)
		}
	}

	hourMean := float64(len(events)) / 24.0
	for h, n := range d.HourCounts {
		if float64(n) > peakFactor*hourMean {
			d.PeakHours = append(d.PeakHours, h)
		}
	}
	dayMean := float64(len(events)) / 7.0
	for wd, n := range d.DayCounts {
		if float64(n) > peakFactor*dayMean {
			d.PeakDays = append(d.PeakDays, time.Weekday(wd))
		}
	}
	return d
}

// detectPatterns runs the independent checks; any subset may fire.
func detectPatterns(events []model.InteractionEvent, d model.ActivityDensity) (patterns []string, activeHours []int) {
	if float64(len(events))/dailyRhythmWindow > dailyRhythmPerDay {
		patterns = append(patterns, model.PatternDailyRhythm)
	}

	for h, n := range d.HourCounts {
		if n >= timeOfDayMinEvents {
			activeHours = append(activeHours, h)
		}
	}
	if len(activeHours) > 0 {
		patterns = append(patterns, model.PatternTimeOfDay)
	}

	dayMean := float64(len(events)) / 7.0
	for _, n := range d.DayCounts {
		if float64(n) > peakFactor*dayMean {
			patterns = append(patterns, model.PatternWeekly)
			break
		}
	}

	if len(events) >= burstyMinEvents {
		gaps := make([]float64, 0, len(events)-1)
		for i := 1; i < len(events); i++ {
			gaps = append(gaps, events[i].Timestamp.Sub(events[i-1].Timestamp).Seconds())
		}
		if coefficientOfVariation(gaps) > burstyCVThreshold {
			patterns = append(patterns, model.PatternBursty)
		}
	}

	if len(patterns) == 0 {
		patterns = []string{model.PatternNone}
	}
	return patterns, activeHours
}

// responseTimes pools consecutive-in-time gaps of every conversation with
// at least two events and summarizes the pooled sample in seconds.
func responseTimes(events []model.InteractionEvent) model.ResponseTimeStats {
	byConv := make(map[string][]model.InteractionEvent)
	for _, e := range events {
		id := e.Metadata["conversation_id"]
		if id == "" {
			continue
		}
		byConv[id] = append(byConv[id], e)
	}

	var pool []float64
	for _, group := range byConv {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Timestamp.Before(group[j].Timestamp) })
		for i := 1; i < len(group); i++ {
			pool = append(pool, group[i].Timestamp.Sub(group[i-1].Timestamp).Seconds())
		}
	}

	stats := model.ResponseTimeStats{Percentiles: map[string]float64{}, SampleCount: len(pool)}
	if len(pool) == 0 {
		return stats
	}
	sort.Float64s(pool)
	stats.Mean = mean(pool)
	stats.Median = percentile(pool, 0.5)
	stats.Min = pool[0]
	stats.Max = pool[len(pool)-1]
	for name, p := range map[string]float64{"p50": 0.50, "p75": 0.75, "p90": 0.90, "p95": 0.95, "p99": 0.99} {
		stats.Percentiles[name] = percentile(pool, p)
	}
	return stats
}
