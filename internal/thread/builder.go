package thread

import (
	"context"
	"errors"
	"sort"

	"weft/internal/logging"
	"weft/internal/metrics"
	"weft/internal/model"
)

// ErrNoPosts is returned when the archive contains nothing to thread.
var ErrNoPosts = errors.New("thread: no posts in input collection")

// Build partitions posts into disjoint reply chains under the given policy.
//
// Every non-retweet post lands in exactly one thread: posts reachable from
// an explicit root are collected first, and whatever remains (branches the
// policy cut off, reply cycles) is swept into threads of its own by walking
// back to the top of its component. Posts inside a thread are chronological
// oldest-first; threads are ordered newest root first. Malformed timestamps
// sort at the epoch fallback, duplicate ids keep the first occurrence.
func Build(posts []model.Post, owner string, p Policy) ([]model.Thread, error) {
	if len(posts) == 0 {
		return nil, ErrNoPosts
	}

	// Retweets never participate in threading.
	live := make([]model.Post, 0, len(posts))
	for _, post := range posts {
		if !post.IsRetweet {
			live = append(live, post)
		}
	}

	// Deterministic processing order regardless of input order.
	sort.Slice(live, func(i, j int) bool {
		ti, tj := model.PostTimeOrFallback(live[i].CreatedAt), model.PostTimeOrFallback(live[j].CreatedAt)
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return live[i].ID < live[j].ID
	})

	index := make(map[string]model.Post, len(live))
	order := make([]string, 0, len(live))
	for _, post := range live {
		if _, dup := index[post.ID]; dup {
			metrics.DuplicatePostIDs.Inc()
			logging.Warn("duplicate_post_id", map[string]any{"id": post.ID})
			continue
		}
		index[post.ID] = post
		order = append(order, post.ID)
	}

	// Adjacency over policy-approved reply edges.
	children := make(map[string][]string)
	for _, id := range order {
		post := index[id]
		if !post.IsReply() {
			continue
		}
		parent, ok := index[post.ReplyTargetID]
		if !ok || parent.ID == post.ID {
			continue
		}
		if p.Follow(post, parent, owner) {
			children[parent.ID] = append(children[parent.ID], post.ID)
		}
	}

	visited := make(map[string]bool, len(order))
	var threads []model.Thread

	collect := func(rootID string) {
		if visited[rootID] {
			return
		}
		var chain []model.Post
		stack := []string{rootID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[id] {
				continue
			}
			visited[id] = true
			chain = append(chain, index[id])
			stack = append(stack, children[id]...)
		}
		threads = append(threads, assemble(rootID, chain))
	}

	// Pass 1: posts the policy recognizes as roots.
	for _, id := range order {
		if p.IsRoot(index[id], owner, index) {
			collect(id)
		}
	}

	// Pass 2: leftovers. Walk each up to the top of its component so
	// circular or policy-orphaned replies still form exactly one thread.
	for _, id := range order {
		if !visited[id] {
			collect(walkBack(id, owner, index, visited, p))
		}
	}

	sort.Slice(threads, func(i, j int) bool {
		ti, tj := model.PostTimeOrFallback(threads[i].Root().CreatedAt), model.PostTimeOrFallback(threads[j].Root().CreatedAt)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return threads[i].ID < threads[j].ID
	})
	metrics.ThreadsBuilt.Add(float64(len(threads)))
	return threads, nil
}

// walkBack follows reply links upward until it reaches a post with no
// followable parent, an already-claimed post, or a cycle.
func walkBack(id, owner string, index map[string]model.Post, visited map[string]bool, p Policy) string {
	seen := map[string]bool{id: true}
	cur := id
	for {
		post := index[cur]
		if !post.IsReply() {
			return cur
		}
		parent, ok := index[post.ReplyTargetID]
		if !ok || visited[parent.ID] || seen[parent.ID] {
			return cur
		}
		if !p.Follow(post, parent, owner) {
			return cur
		}
		seen[parent.ID] = true
		cur = parent.ID
	}
}

func assemble(rootID string, chain []model.Post) model.Thread {
	sort.Slice(chain, func(i, j int) bool {
		ti, tj := model.PostTimeOrFallback(chain[i].CreatedAt), model.PostTimeOrFallback(chain[j].CreatedAt)
		if ti.Equal(tj) {
			return chain[i].ID < chain[j].ID
		}
		return ti.Before(tj)
	})
	t := model.Thread{ID: rootID, Posts: chain, PostCount: len(chain)}
	for _, post := range chain {
		t.TotalFavorites += model.ParseCount(post.FavoriteCount)
		t.TotalRetweets += model.ParseCount(post.RetweetCount)
	}
	return t
}

// Result carries the outcome of an asynchronous build.
type Result struct {
	Threads []model.Thread
	Err     error
}

// BuildAsync runs Build on a worker goroutine and returns a channel the
// caller awaits. The post slice is handed to the worker and must not be
// mutated until the result arrives.
func BuildAsync(ctx context.Context, posts []model.Post, owner string, p Policy) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		threads, err := Build(posts, owner, p)
		select {
		case out <- Result{Threads: threads, Err: err}:
		case <-ctx.Done():
		}
	}()
	return out
}
