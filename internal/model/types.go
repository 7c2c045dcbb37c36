package model

import "time"

// Post represents one archived post, immutable once loaded.
type Post struct {
	ID                string
	Text              string
	ReplyTargetID     string // empty when the post is not a reply
	ReplyTargetAuthor string // screen name of the user being replied to
	CreatedAt         string // source format: "Mon Jan 02 15:04:05 -0700 2006"
	FavoriteCount     string // counters arrive as strings in the export
	RetweetCount      string
	IsRetweet         bool
}

// IsReply reports whether the post replies to another post.
func (p Post) IsReply() bool { return p.ReplyTargetID != "" }

// RepliesToOwner reports whether the post continues a self-thread of owner.
func (p Post) RepliesToOwner(owner string) bool {
	return p.IsReply() && p.ReplyTargetAuthor == owner
}

// Message is one direct message inside a conversation.
type Message struct {
	ID          string
	Text        string
	CreatedAt   string // RFC 3339 profile
	SenderID    string
	RecipientID string
}

// Conversation groups the messages of one DM conversation.
// The id encodes both participants as "<id1>-<id2>".
type Conversation struct {
	ID       string
	Messages []Message
}

// Thread is a maximal reply chain rooted at a non-continuation post.
// Posts are chronological (oldest first) after construction.
type Thread struct {
	ID             string
	Posts          []Post
	PostCount      int
	TotalFavorites int
	TotalRetweets  int
}

// Root returns the first post of the thread.
func (t Thread) Root() Post { return t.Posts[0] }

// Interaction event kinds. The set is open; downstream code switches on
// these and treats unknown kinds as generic activity.
const (
	KindDMSent     = "dm-sent"
	KindDMReceived = "dm-received"
	KindPostReply  = "post-reply"
	KindPostOrig   = "post-mention"
)

// InteractionEvent is a normalized, timestamped unit of activity derived
// from either a direct message or a post.
type InteractionEvent struct {
	Timestamp    time.Time
	Kind         string
	Participants []string // anonymized ids, typically 0-2
	Metadata     map[string]string
}

// UserProfile aggregates all interactions with one anonymized user.
type UserProfile struct {
	UserID            string
	FirstInteraction  *time.Time
	LastInteraction   *time.Time
	TotalInteractions int
	InteractionCounts map[string]int
	// Monthly communication frequency. Averages divide by the number of
	// distinct active months, not the calendar span.
	ActiveMonths       int
	MonthlyAvgSent     float64
	MonthlyAvgReceived float64
	Metadata           map[string]string
}

// MonthlyFrequency buckets sent/received counts per calendar month.
type MonthlyFrequency struct {
	Year     int
	Month    time.Month
	Sent     int
	Received int
}

// ResponseTimeStats summarizes same-conversation response gaps in seconds.
type ResponseTimeStats struct {
	Mean        float64
	Median      float64
	Min         float64
	Max         float64
	Percentiles map[string]float64 // p50, p75, p90, p95, p99
	SampleCount int
}

// ActivityDensity holds per-hour and per-weekday histograms with peaks.
type ActivityDensity struct {
	HourCounts [24]int
	DayCounts  [7]int // indexed by time.Weekday
	PeakHour   int
	PeakDay    time.Weekday
	PeakHours  []int          // buckets above 1.5x the hourly mean
	PeakDays   []time.Weekday // buckets above 1.5x the daily mean
}

// Detected activity patterns.
const (
	PatternDailyRhythm = "daily-rhythm"
	PatternTimeOfDay   = "time-of-day"
	PatternWeekly      = "weekly"
	PatternBursty      = "bursty"
	PatternNone        = "none"
)

// TimelineAnalysis is the summary computed from one event timeline.
type TimelineAnalysis struct {
	Patterns           []string
	ActiveHours        []int // hours that fired the time-of-day pattern
	Density            ActivityDensity
	ResponseTimes      ResponseTimeStats
	TotalInteractions  int
	UniqueParticipants int
}
