package thread

import "weft/internal/model"

// Policy parameterizes the traversal: which posts start a thread and
// which reply edges are followed as continuations. The engine in Build is
// shared; only these two predicates differ between modes.
type Policy struct {
	Name string
	// IsRoot reports whether p starts a new thread. index is the id->post
	// map of all threadable posts.
	IsRoot func(p model.Post, owner string, index map[string]model.Post) bool
	// Follow reports whether child is a continuation of parent. The engine
	// already guarantees child.ReplyTargetID == parent.ID.
	Follow func(child, parent model.Post, owner string) bool
}

// Strict follows only replies addressed to the archive owner, so threads
// are the owner's own reply chains.
func Strict() Policy {
	return Policy{
		Name: "strict",
		IsRoot: func(p model.Post, owner string, _ map[string]model.Post) bool {
			return !p.RepliesToOwner(owner)
		},
		Follow: func(child, _ model.Post, owner string) bool {
			return child.RepliesToOwner(owner)
		},
	}
}

// Permissive treats every reply edge as a continuation regardless of
// addressee; replies whose target is missing from the archive degrade
// to roots of their own component.
func Permissive() Policy {
	return Policy{
		Name: "permissive",
		IsRoot: func(p model.Post, _ string, index map[string]model.Post) bool {
			if !p.IsReply() {
				return true
			}
			_, ok := index[p.ReplyTargetID]
			return !ok
		},
		Follow: func(_, _ model.Post, _ string) bool { return true },
	}
}

// ForMode maps a configured mode name to its policy, defaulting to strict.
func ForMode(mode string) Policy {
	if mode == "permissive" {
		return Permissive()
	}
	return Strict()
}
