package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weft/internal/anonymize"
	"weft/internal/model"
)

var testAnon = anonymize.New("test-salt")

func TestEventFromMessage(t *testing.T) {
	msg := model.Message{ID: "m1", Text: "hey", CreatedAt: "2021-03-01T12:00:00.000Z", SenderID: "100"}

	ev, ok := EventFromMessage(msg, "100-200", "100", testAnon)
	require.True(t, ok)
	assert.Equal(t, model.KindDMSent, ev.Kind)
	assert.Equal(t, []string{testAnon.ID("100"), testAnon.ID("200")}, ev.Participants)
	assert.Equal(t, "100-200", ev.Metadata["conversation_id"])
	assert.Equal(t, "3", ev.Metadata["content_length"])

	ev, ok = EventFromMessage(msg, "100-200", "200", testAnon)
	require.True(t, ok)
	assert.Equal(t, model.KindDMReceived, ev.Kind)
}

func TestEventFromMessageSenderFallback(t *testing.T) {
	// No sender id anywhere: legacy all-sent assumption.
	msg := model.Message{ID: "m1", CreatedAt: "2021-03-01T12:00:00Z"}
	ev, ok := EventFromMessage(msg, "100-200", "100", testAnon)
	require.True(t, ok)
	assert.Equal(t, model.KindDMSent, ev.Kind)
}

func TestEventFromMessageDrops(t *testing.T) {
	_, ok := EventFromMessage(model.Message{ID: "", CreatedAt: "2021-03-01T12:00:00Z"}, "1-2", "1", testAnon)
	assert.False(t, ok, "missing message id")

	_, ok = EventFromMessage(model.Message{ID: "m", CreatedAt: "yesterday"}, "1-2", "1", testAnon)
	assert.False(t, ok, "unparseable timestamp")
}

func TestEventFromMessageDashlessConversation(t *testing.T) {
	msg := model.Message{ID: "m1", CreatedAt: "2021-03-01T12:00:00Z"}
	ev, ok := EventFromMessage(msg, "groupchat", "1", testAnon)
	require.True(t, ok, "event is retained even without participants")
	assert.Empty(t, ev.Participants)
}

func TestEventFromPost(t *testing.T) {
	post := model.Post{ID: "1", CreatedAt: "Mon Mar 01 12:00:00 +0000 2021", ReplyTargetAuthor: "friend", FavoriteCount: "7"}
	ev, ok := EventFromPost(post, testAnon)
	require.True(t, ok)
	assert.Equal(t, model.KindPostReply, ev.Kind)
	assert.Equal(t, []string{testAnon.ID("friend")}, ev.Participants)
	assert.Equal(t, "7", ev.Metadata["favorite_count"])

	orig := model.Post{ID: "2", CreatedAt: "Mon Mar 01 13:00:00 +0000 2021"}
	ev, ok = EventFromPost(orig, testAnon)
	require.True(t, ok)
	assert.Equal(t, model.KindPostOrig, ev.Kind)
	assert.Empty(t, ev.Participants)

	_, ok = EventFromPost(model.Post{ID: "3", CreatedAt: "bad"}, testAnon)
	assert.False(t, ok)
}

func TestBuildTimelineNewestFirst(t *testing.T) {
	posts := []model.Post{
		{ID: "1", CreatedAt: "Mon Mar 01 12:00:00 +0000 2021"},
		{ID: "2", CreatedAt: "Tue Mar 02 12:00:00 +0000 2021"},
		{ID: "bad", CreatedAt: "???"},
	}
	convs := []model.Conversation{{
		ID: "100-200",
		Messages: []model.Message{
			{ID: "m1", CreatedAt: "2021-03-03T09:00:00Z", SenderID: "200"},
			{ID: "m2", CreatedAt: "2021-02-27T09:00:00Z", SenderID: "100"},
		},
	}}
	events := BuildTimeline(posts, convs, "100", testAnon)
	require.Len(t, events, 4, "unparseable post dropped")
	for i := 0; i+1 < len(events); i++ {
		assert.False(t, events[i].Timestamp.Before(events[i+1].Timestamp),
			"timeline must be newest first at %d", i)
	}
	assert.Equal(t, time.Date(2021, 3, 3, 9, 0, 0, 0, time.UTC), events[0].Timestamp)
}
