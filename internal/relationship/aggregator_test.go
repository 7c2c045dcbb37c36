package relationship

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weft/internal/anonymize"
	"weft/internal/model"
)

var testAnon = anonymize.New("test-salt")

func conv(id string, msgs ...model.Message) model.Conversation {
	return model.Conversation{ID: id, Messages: msgs}
}

func msg(id, createdAt, senderID string) model.Message {
	return model.Message{ID: id, CreatedAt: createdAt, SenderID: senderID}
}

func TestUsersFromConversations(t *testing.T) {
	convs := []model.Conversation{
		conv("100-200"),
		conv("100-300"),
		conv("nodash"), // silently skipped
	}
	users := UsersFromConversations(convs, testAnon)
	assert.Len(t, users, 3)
	assert.Contains(t, users, testAnon.ID("100"))
	assert.Contains(t, users, testAnon.ID("300"))
}

func TestUsersFromConversationsEmpty(t *testing.T) {
	assert.Empty(t, UsersFromConversations(nil, testAnon))
}

func TestUsersFromPosts(t *testing.T) {
	posts := []model.Post{
		{ID: "1", ReplyTargetAuthor: "friend"},
		{ID: "2"},
	}
	users := UsersFromPosts(posts, testAnon)
	assert.Len(t, users, 1)
	assert.Contains(t, users, testAnon.ID("friend"))
}

func TestProfileFor(t *testing.T) {
	convs := []model.Conversation{
		conv("100-200",
			msg("m1", "2021-03-01T10:00:00Z", "200"),
			msg("m2", "2021-03-01T10:05:00Z", "100"),
			msg("m3", "2021-04-02T09:00:00Z", "200"),
		),
		conv("300-400", msg("m4", "2021-05-01T08:00:00Z", "300")), // not ours
	}
	p := ProfileFor(testAnon.ID("200"), convs, testAnon)
	assert.Equal(t, 3, p.TotalInteractions)
	assert.Equal(t, 2, p.InteractionCounts[model.KindDMSent])
	assert.Equal(t, 1, p.InteractionCounts[model.KindDMReceived])
	require.NotNil(t, p.FirstInteraction)
	require.NotNil(t, p.LastInteraction)
	assert.Equal(t, time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC), *p.FirstInteraction)
	assert.Equal(t, time.Date(2021, 4, 2, 9, 0, 0, 0, time.UTC), *p.LastInteraction)
	assert.False(t, p.FirstInteraction.After(*p.LastInteraction))
	assert.Equal(t, "1", p.Metadata["conversations"])
}

func TestProfileForSenderlessFallsBackToSent(t *testing.T) {
	convs := []model.Conversation{
		conv("100-200", msg("m1", "2021-03-01T10:00:00Z", "")),
	}
	p := ProfileFor(testAnon.ID("100"), convs, testAnon)
	assert.Equal(t, 1, p.InteractionCounts[model.KindDMSent])
	assert.Zero(t, p.InteractionCounts[model.KindDMReceived])
}

func TestProfileForIgnoresMalformedTimestamps(t *testing.T) {
	convs := []model.Conversation{
		conv("100-200", msg("m1", "whenever", "200")),
	}
	p := ProfileFor(testAnon.ID("200"), convs, testAnon)
	assert.Equal(t, 1, p.TotalInteractions, "message still counted")
	assert.Nil(t, p.FirstInteraction)
	assert.Nil(t, p.LastInteraction)
}

func TestFrequencyDividesByActiveMonths(t *testing.T) {
	convs := []model.Conversation{
		conv("100-200",
			// Two active months out of a long span.
			msg("m1", "2021-01-05T10:00:00Z", "200"),
			msg("m2", "2021-01-06T10:00:00Z", "200"),
			msg("m3", "2021-12-01T10:00:00Z", "100"),
		),
	}
	r := Frequency(testAnon.ID("200"), convs, testAnon)
	require.Len(t, r.Months, 2)
	assert.Equal(t, time.January, r.Months[0].Month)
	assert.Equal(t, 2, r.Months[0].Sent)
	assert.Equal(t, time.December, r.Months[1].Month)
	assert.Equal(t, 1, r.Months[1].Received)
	assert.InDelta(t, 1.0, r.AvgSent, 1e-9)     // 2 sent / 2 active months
	assert.InDelta(t, 0.5, r.AvgReceived, 1e-9) // 1 received / 2 active months
}

func TestAggregate(t *testing.T) {
	posts := []model.Post{
		{ID: "1", ReplyTargetAuthor: "friend", CreatedAt: "Mon Mar 01 12:00:00 +0000 2021"},
	}
	convs := []model.Conversation{
		conv("100-200", msg("m1", "2021-03-02T10:00:00Z", "200")),
	}
	profiles := Aggregate(posts, convs, model.TimelineAnalysis{TotalInteractions: 2}, testAnon)
	assert.Len(t, profiles, 3) // 100, 200, friend

	friend := profiles[testAnon.ID("friend")]
	assert.Equal(t, 1, friend.InteractionCounts[model.KindPostReply])
	require.NotNil(t, friend.FirstInteraction)
	assert.Equal(t, "2", friend.Metadata["timeline_interactions"])
}

func TestAggregateCarriesMonthlyFrequency(t *testing.T) {
	convs := []model.Conversation{
		conv("100-200",
			msg("m1", "2021-01-05T10:00:00Z", "200"),
			msg("m2", "2021-01-06T10:00:00Z", "200"),
			msg("m3", "2021-12-01T10:00:00Z", "100"),
		),
	}
	profiles := Aggregate(nil, convs, model.TimelineAnalysis{}, testAnon)

	p := profiles[testAnon.ID("200")]
	assert.Equal(t, 2, p.ActiveMonths)
	assert.InDelta(t, 1.0, p.MonthlyAvgSent, 1e-9)
	assert.InDelta(t, 0.5, p.MonthlyAvgReceived, 1e-9)

	other := profiles[testAnon.ID("100")]
	assert.Equal(t, 2, other.ActiveMonths)
	assert.InDelta(t, 0.5, other.MonthlyAvgSent, 1e-9)
	assert.InDelta(t, 1.0, other.MonthlyAvgReceived, 1e-9)
}
