package repo

import (
	"context"

	"tasksync/internal/store"
)

type subscriber struct {
	ch chan []store.Task
}

// Watch returns a stream of local snapshots: the current collection
// immediately, then a fresh one after every write or refresh that
// lands in the local store.
//
// The stream is cold: every call performs its own initial read and
// gets its own subscription. Emission is latest-wins; a slow consumer
// sees the newest snapshot, not every intermediate one. Cancelling
// ctx stops emissions and closes the channel. A refresh already in
// flight when ctx is cancelled still completes against the local
// store; this subscription just never observes it.
func (r *Repository) Watch(ctx context.Context) (<-chan []store.Task, error) {
	snapshot, err := r.local.List(ctx)
	if err != nil {
		return nil, err
	}

	sub := &subscriber{ch: make(chan []store.Task, 1)}
	sub.ch <- snapshot

	r.mu.Lock()
	r.subs[sub] = struct{}{}
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.subs, sub)
		close(sub.ch)
		r.mu.Unlock()
	}()

	return sub.ch, nil
}

// notify re-reads the local store and broadcasts the snapshot to all
// subscribers. Sends never block: an unread pending snapshot is
// replaced by the newer one.
func (r *Repository) notify() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.subs) == 0 {
		return
	}

	snapshot, err := r.local.List(context.Background())
	if err != nil {
		r.log.Warn("watch snapshot read failed", "err", err)
		return
	}

	for sub := range r.subs {
		select {
		case sub.ch <- snapshot:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- snapshot:
			default:
			}
		}
	}
}
