package report

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"weft/internal/model"
)

// ErrNothingToReport is returned when a renderer receives an empty
// collection; callers are expected to check emptiness first.
var ErrNothingToReport = errors.New("report: empty input collection")

// streamBuffer bounds the thread channel so the builder blocks when the
// writer falls behind.
const streamBuffer = 64

var threadHeader = []string{"thread_id", "root_created_at", "post_count", "total_favorites", "total_retweets"}

func threadRecord(t model.Thread) []string {
	return []string{
		t.ID,
		model.PostTimeOrFallback(t.Root().CreatedAt).Format(time.RFC3339),
		strconv.Itoa(t.PostCount),
		strconv.Itoa(t.TotalFavorites),
		strconv.Itoa(t.TotalRetweets),
	}
}

// StreamThreadsCSV drains threads into w, one CSV record per completed
// thread, until the channel closes. On a write error it keeps consuming
// the channel so a blocked producer can finish, then reports the error.
func StreamThreadsCSV(w io.Writer, threads <-chan model.Thread) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(threadHeader); err != nil {
		return drainAfter(threads, err)
	}
	for t := range threads {
		if err := cw.Write(threadRecord(t)); err != nil {
			return drainAfter(threads, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func drainAfter(threads <-chan model.Thread, err error) error {
	for range threads {
	}
	return err
}

// WriteThreadsCSV renders threads to path through a bounded channel with
// a dedicated writer goroutine, so emission overlaps production when the
// caller feeds the channel from a live build.
func WriteThreadsCSV(path string, threads []model.Thread) error {
	if len(threads) == 0 {
		return ErrNothingToReport
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	ch := make(chan model.Thread, streamBuffer)
	errc := make(chan error, 1)
	go func() { errc <- StreamThreadsCSV(f, ch) }()
	for _, t := range threads {
		ch <- t
	}
	close(ch)

	werr := <-errc
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}

var profileHeader = []string{
	"user_id", "first_interaction", "last_interaction",
	"total_interactions", "dm_sent", "dm_received", "post_replies", "conversations",
	"active_months", "avg_sent_per_month", "avg_received_per_month",
}

func formatOptTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// WriteProfilesCSV renders one row per user profile, sorted by user id.
func WriteProfilesCSV(path string, profiles map[string]model.UserProfile) error {
	if len(profiles) == 0 {
		return ErrNothingToReport
	}
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	werr := cw.Write(profileHeader)
	for _, id := range ids {
		if werr != nil {
			break
		}
		p := profiles[id]
		werr = cw.Write([]string{
			p.UserID,
			formatOptTime(p.FirstInteraction),
			formatOptTime(p.LastInteraction),
			strconv.Itoa(p.TotalInteractions),
			strconv.Itoa(p.InteractionCounts[model.KindDMSent]),
			strconv.Itoa(p.InteractionCounts[model.KindDMReceived]),
			strconv.Itoa(p.InteractionCounts[model.KindPostReply]),
			p.Metadata["conversations"],
			strconv.Itoa(p.ActiveMonths),
			strconv.FormatFloat(p.MonthlyAvgSent, 'f', 2, 64),
			strconv.FormatFloat(p.MonthlyAvgReceived, 'f', 2, 64),
		})
	}
	cw.Flush()
	if werr == nil {
		werr = cw.Error()
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}
