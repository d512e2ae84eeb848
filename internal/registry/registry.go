// Package registry maintains the broadcast subscriber set: anyone who ever
// messaged the bot is in, forever. The set only grows; a transient feed or
// storage failure never shrinks what was already known.
package registry

import (
	"context"
	"sort"
	"sync"

	"lotwatch/internal/storage"
	logx "lotwatch/pkg/logx"
)

// UpdateFeed yields the chat ids of everyone who messaged the bot since the
// previous call. The Telegram transport implements it over getUpdates.
type UpdateFeed interface {
	Updates(ctx context.Context) ([]string, error)
}

type Registry struct {
	store storage.Store
	feed  UpdateFeed
	log   logx.Logger

	mu  sync.Mutex
	set map[string]struct{}
}

func New(store storage.Store, feed UpdateFeed, log logx.Logger) *Registry {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Registry{store: store, feed: feed, log: log, set: make(map[string]struct{})}
}

// Load seeds the in-memory set from storage. A missing or unreadable file
// starts the registry empty; it is never a fatal condition.
func (r *Registry) Load(ctx context.Context) {
	if r.store == nil {
		return
	}
	ids, err := r.store.LoadSubscribers(ctx)
	if err != nil {
		r.log.Warn("subscriber load failed, starting empty", logx.Err(err))
		return
	}

	r.mu.Lock()
	for _, id := range ids {
		if id != "" {
			r.set[id] = struct{}{}
		}
	}
	n := len(r.set)
	r.mu.Unlock()

	r.log.Info("subscribers loaded", logx.Int("count", n))
}

// Refresh pulls the update feed, merges new senders into the set, persists
// the result and returns the full membership. Every failure mode degrades to
// returning what is already known: a feed error skips the merge, a persist
// error keeps the union in memory for the next attempt.
func (r *Registry) Refresh(ctx context.Context) []string {
	if r.feed == nil {
		return r.Snapshot()
	}

	ids, err := r.feed.Updates(ctx)
	if err != nil {
		r.log.Warn("subscriber refresh failed", logx.Err(err))
		return r.Snapshot()
	}

	r.mu.Lock()
	added := 0
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := r.set[id]; !ok {
			r.set[id] = struct{}{}
			added++
		}
	}
	snapshot := r.membersLocked()
	r.mu.Unlock()

	if added > 0 {
		r.log.Info("new subscribers", logx.Int("added", added), logx.Int("total", len(snapshot)))
		if r.store != nil {
			if err := r.store.SaveSubscribers(ctx, snapshot); err != nil {
				r.log.Warn("subscriber persist failed", logx.Err(err))
			}
		}
	}
	return snapshot
}

// Snapshot returns the current membership, sorted.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.membersLocked()
}

func (r *Registry) membersLocked() []string {
	out := make([]string, 0, len(r.set))
	for id := range r.set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
