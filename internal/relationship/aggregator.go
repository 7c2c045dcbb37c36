package relationship

import (
	"sort"
	"strconv"
	"time"

	"weft/internal/anonymize"
	"weft/internal/model"
	"weft/internal/timeline"
)

// UsersFromConversations extracts the anonymized participant ids of every
// well-formed conversation id. Dashless ids contribute nothing.
func UsersFromConversations(convs []model.Conversation, anon *anonymize.Anonymizer) map[string]struct{} {
	users := make(map[string]struct{})
	for _, c := range convs {
		a, b, ok := timeline.SplitConversationID(c.ID)
		if !ok {
			continue
		}
		users[anon.ID(a)] = struct{}{}
		users[anon.ID(b)] = struct{}{}
	}
	return users
}

// UsersFromPosts extracts anonymized reply-target screen names.
func UsersFromPosts(posts []model.Post, anon *anonymize.Anonymizer) map[string]struct{} {
	users := make(map[string]struct{})
	for _, p := range posts {
		if p.ReplyTargetAuthor != "" {
			users[anon.ID(p.ReplyTargetAuthor)] = struct{}{}
		}
	}
	return users
}

// ProfileFor folds every conversation involving userID (matched by
// anonymized-id equality against either half of the conversation id)
// into one relationship profile.
func ProfileFor(userID string, convs []model.Conversation, anon *anonymize.Anonymizer) model.UserProfile {
	profile := model.UserProfile{
		UserID:            userID,
		InteractionCounts: map[string]int{},
		Metadata:          map[string]string{},
	}

	var stamps []time.Time
	conversations := 0
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
		conversations++
		for _, m := range c.Messages {
			profile.TotalInteractions++
			if sentBy(m, rawUser, c.Messages) {
				profile.InteractionCounts[model.KindDMSent]++
			} else {
				profile.InteractionCounts[model.KindDMReceived]++
			}
			if ts, ok := model.ParseMessageTime(m.CreatedAt); ok {
				stamps = append(stamps, ts)
			}
		}
	}
	profile.Metadata["conversations"] = strconv.Itoa(conversations)

	// Full sort, then take the ends.
	if len(stamps) > 0 {
		sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
		first, last := stamps[0], stamps[len(stamps)-1]
		profile.FirstInteraction = &first
		profile.LastInteraction = &last
	}
	return profile
}

// sentBy attributes a message to rawUser by sender id. When the whole
// conversation carries no sender ids, fall back to the legacy all-sent
// assumption.
func sentBy(m model.Message, rawUser string, all []model.Message) bool {
	if m.SenderID != "" {
		return m.SenderID == rawUser
	}
	for _, other := range all {
		if other.SenderID != "" {
			return false
		}
	}
	return true
}

// Aggregate builds a profile per distinct participant seen in the input
// and annotates each with timeline-level context.
func Aggregate(posts []model.Post, convs []model.Conversation, analysis model.TimelineAnalysis, anon *anonymize.Anonymizer) map[string]model.UserProfile {
	users := UsersFromConversations(convs, anon)
	for u := range UsersFromPosts(posts, anon) {
		users[u] = struct{}{}
	}

	profiles := make(map[string]model.UserProfile, len(users))
	for u := range users {
		p := ProfileFor(u, convs, anon)
		addPostInteractions(&p, posts, anon)
		freq := Frequency(u, convs, anon)
		p.ActiveMonths = len(freq.Months)
		p.MonthlyAvgSent = freq.AvgSent
		p.MonthlyAvgReceived = freq.AvgReceived
		p.Metadata["timeline_interactions"] = strconv.Itoa(analysis.TotalInteractions)
		profiles[u] = p
	}
	return profiles
}

// addPostInteractions counts the owner's replies addressed to the user
// and widens the first/last window with their timestamps.
func addPostInteractions(p *model.UserProfile, posts []model.Post, anon *anonymize.Anonymizer) {
	for _, post := range posts {
		if post.ReplyTargetAuthor == "" || anon.ID(post.ReplyTargetAuthor) != p.UserID {
			continue
		}
		p.TotalInteractions++
		p.InteractionCounts[model.KindPostReply]++
		if ts, ok := model.ParsePostTime(post.CreatedAt); ok {
			if p.FirstInteraction == nil || ts.Before(*p.FirstInteraction) {
				t := ts
				p.FirstInteraction = &t
			}
			if p.LastInteraction == nil || ts.After(*p.LastInteraction) {
				t := ts
				p.LastInteraction = &t
			}
		}
	}
}
