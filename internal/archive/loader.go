package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/time/rate"

	"weft/internal/logging"
	"weft/internal/metrics"
	"weft/internal/model"
)

// The export wraps each data file in a JavaScript assignment like
// "window.YTD.tweets.part0 = [...]". Everything up to and including the
// first '=' is presentation, the rest is plain JSON.

type tweetWrapper struct {
	Tweet rawTweet `json:"tweet"`
}

type rawTweet struct {
	ID                  string `json:"id_str"`
	FullText            string `json:"full_text"`
	InReplyToStatusID   string `json:"in_reply_to_status_id_str"`
	InReplyToScreenName string `json:"in_reply_to_screen_name"`
	CreatedAt           string `json:"created_at"`
	FavoriteCount       string `json:"favorite_count"`
	RetweetCount        string `json:"retweet_count"`
	Retweeted           bool   `json:"retweeted"`
}

type conversationWrapper struct {
	DMConversation rawConversation `json:"dmConversation"`
}

type rawConversation struct {
	ConversationID string           `json:"conversationId"`
	Messages       []messageWrapper `json:"messages"`
}

type messageWrapper struct {
	MessageCreate rawMessage `json:"messageCreate"`
}

type rawMessage struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	CreatedAt   string `json:"createdAt"`
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
}

// progressEvery throttles per-record progress logging on large archives.
var progressEvery = rate.NewLimiter(rate.Limit(1), 1)

// stripAssignment removes the "window.YTD.... =" prefix when present.
func stripAssignment(b []byte) []byte {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, "window.") {
		if i := strings.Index(s, "="); i >= 0 {
			s = s[i+1:]
		}
	}
	return []byte(strings.TrimSpace(s))
}

// LoadPosts reads and maps the posts data file. A missing or malformed
// file is a structural failure; individual record quirks are not.
func LoadPosts(path string) ([]model.Post, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("archive: read posts: %w", err)
	}
	var wrappers []tweetWrapper
	if err := json.Unmarshal(stripAssignment(b), &wrappers); err != nil {
		return nil, fmt.Errorf("archive: decode posts %s: %w", path, err)
	}

	posts := make([]model.Post, 0, len(wrappers))
	for i, w := range wrappers {
		t := w.Tweet
		if t.ID == "" {
			continue
		}
		posts = append(posts, model.Post{
			ID:                t.ID,
			Text:              t.FullText,
			ReplyTargetID:     t.InReplyToStatusID,
			ReplyTargetAuthor: t.InReplyToScreenName,
			CreatedAt:         t.CreatedAt,
			FavoriteCount:     t.FavoriteCount,
			RetweetCount:      t.RetweetCount,
			// The export's retweeted flag is unreliable, so also
			// recognize the classic text marker.
			IsRetweet: t.Retweeted || strings.HasPrefix(t.FullText, "RT @"),
		})
		if progressEvery.Allow() {
			logging.Info("loading_posts", map[string]any{"done": i + 1, "total": len(wrappers)})
		}
	}
	metrics.PostsLoaded.Add(float64(len(posts)))
	return posts, nil
}

// LoadConversations reads and maps the direct-messages data file.
func LoadConversations(path string) ([]model.Conversation, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("archive: read messages: %w", err)
	}
	var wrappers []conversationWrapper
	if err := json.Unmarshal(stripAssignment(b), &wrappers); err != nil {
		return nil, fmt.Errorf("archive: decode messages %s: %w", path, err)
	}

	convs := make([]model.Conversation, 0, len(wrappers))
	total := 0
	for _, w := range wrappers {
		c := model.Conversation{ID: w.DMConversation.ConversationID}
		for _, mw := range w.DMConversation.Messages {
			m := mw.MessageCreate
			c.Messages = append(c.Messages, model.Message{
				ID:          m.ID,
				Text:        m.Text,
				CreatedAt:   m.CreatedAt,
				SenderID:    m.SenderID,
				RecipientID: m.RecipientID,
			})
		}
		total += len(c.Messages)
		convs = append(convs, c)
		if progressEvery.Allow() {
			logging.Info("loading_conversations", map[string]any{"done": len(convs), "total": len(wrappers)})
		}
	}
	metrics.MessagesLoaded.Add(float64(total))
	return convs, nil
}
