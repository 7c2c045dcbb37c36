package relationship

import (
	"sort"

	"weft/internal/anonymize"
	"weft/internal/model"
	"weft/internal/timeline"
)

// FrequencyReport summarizes how often a user communicates per month.
type FrequencyReport struct {
	Months      []model.MonthlyFrequency // chronological
	AvgSent     float64                  // per distinct active month
	AvgReceived float64
}

type monthKey struct {
	year  int
	month int
}

// Frequency buckets the user's sent/received messages by calendar month.
// Averages divide by the number of distinct active months, not by the
// calendar span: a user active in 2 of 12 months divides by 2.
func Frequency(userID string, convs []model.Conversation, anon *anonymize.Anonymizer) FrequencyReport {
	buckets := make(map[monthKey]*model.MonthlyFrequency)
	for _, c := range convs {
		rawA, rawB, ok := timeline.SplitConversationID(c.ID)
		if !ok {
			continue
		}
		var rawUser string
		switch userID {
		case anon.ID(rawA):
			rawUser = rawA
		case anon.ID(rawB):
			rawUser = rawB
		default:
			continue
		}
		for _, m := range c.Messages {
			ts, ok := model.ParseMessageTime(m.CreatedAt)
			if !ok {
				continue
			}
			key := monthKey{ts.Year(), int(ts.Month())}
			b, ok := buckets[key]
			if !ok {
				b = &model.MonthlyFrequency{Year: ts.Year(), Month: ts.Month()}
				buckets[key] = b
			}
			if sentBy(m, rawUser, c.Messages) {
				b.Sent++
			} else {
				b.Received++
			}
		}
	}

	var report FrequencyReport
	totalSent, totalReceived := 0, 0
	for _, b := range buckets {
		report.Months = append(report.Months, *b)
		totalSent += b.Sent
		totalReceived += b.Received
	}
	sort.Slice(report.Months, func(i, j int) bool {
		if report.Months[i].Year != report.Months[j].Year {
			return report.Months[i].Year < report.Months[j].Year
		}
		return report.Months[i].Month < report.Months[j].Month
	})
	if n := len(buckets); n > 0 {
		report.AvgSent = float64(totalSent) / float64(n)
		report.AvgReceived = float64(totalReceived) / float64(n)
	}
	return report
}
