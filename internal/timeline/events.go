package timeline

import (
	"sort"
	"strconv"
	"strings"

	"weft/internal/anonymize"
	"weft/internal/metrics"
	"weft/internal/model"
)

// SplitConversationID splits "<id1>-<id2>" on the first dash. ok is false
// for dashless ids; callers decide whether that skips the record.
func SplitConversationID(id string) (first, second string, ok bool) {
	i := strings.Index(id, "-")
	if i < 0 {
		return "", "", false
	}
	return id[:i], id[i+1:], true
}

// EventFromMessage normalizes one DM into an interaction event. Messages
// without an id or with an unparseable timestamp produce no event. A
// dashless conversation id keeps the event with zero participants, since
// timing is still analytically useful.
func EventFromMessage(msg model.Message, conversationID, ownerID string, anon *anonymize.Anonymizer) (model.InteractionEvent, bool) {
	if msg.ID == "" {
		metrics.EventsDropped.Inc()
		return model.InteractionEvent{}, false
	}
	ts, ok := model.ParseMessageTime(msg.CreatedAt)
	if !ok {
		metrics.EventsDropped.Inc()
		return model.InteractionEvent{}, false
	}

	var participants []string
	if a, b, ok := SplitConversationID(conversationID); ok {
		participants = []string{anon.ID(a), anon.ID(b)}
	}

	// Direction by sender id; when the export carries no sender ids at
	// all for a message, fall back to treating it as sent.
	kind := model.KindDMSent
	if msg.SenderID != "" && msg.SenderID != ownerID {
		kind = model.KindDMReceived
	}

	return model.InteractionEvent{
		Timestamp:    ts,
		Kind:         kind,
		Participants: participants,
		Metadata: map[string]string{
			"message_id":      msg.ID,
			"conversation_id": conversationID,
			"content_length":  strconv.Itoa(len(msg.Text)),
		},
	}, true
}

// EventFromPost normalizes one post into an interaction event. Posts with
// an unparseable timestamp produce no event.
func EventFromPost(post model.Post, anon *anonymize.Anonymizer) (model.InteractionEvent, bool) {
	ts, ok := model.ParsePostTime(post.CreatedAt)
	if !ok {
		metrics.EventsDropped.Inc()
		return model.InteractionEvent{}, false
	}

	kind := model.KindPostOrig
	var participants []string
	if post.ReplyTargetAuthor != "" {
		kind = model.KindPostReply
		participants = []string{anon.ID(post.ReplyTargetAuthor)}
	}

	return model.InteractionEvent{
		Timestamp:    ts,
		Kind:         kind,
		Participants: participants,
		Metadata: map[string]string{
			"post_id":        post.ID,
			"favorite_count": strconv.Itoa(model.ParseCount(post.FavoriteCount)),
			"retweet_count":  strconv.Itoa(model.ParseCount(post.RetweetCount)),
		},
	}, true
}

// BuildTimeline merges posts and conversations into one event timeline,
// newest first. Records that cannot be normalized are omitted.
func BuildTimeline(posts []model.Post, convs []model.Conversation, ownerID string, anon *anonymize.Anonymizer) []model.InteractionEvent {
	var events []model.InteractionEvent
	for _, p := range posts {
		if ev, ok := EventFromPost(p, anon); ok {
			events = append(events, ev)
		}
	}
	for _, c := range convs {
		for _, m := range c.Messages {
			if ev, ok := EventFromMessage(m, c.ID, ownerID, anon); ok {
				events = append(events, ev)
			}
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp.After(events[j].Timestamp) })
	return events
}
