// Package sync delivers report snapshots to observers. The channel is
// one-directional (server to client), session-scoped, and never loses the
// final effect of a mutation: intermediate snapshots may be coalesced, but
// every subscriber converges on the latest state.
package sync

import (
	stdsync "sync"

	reportx "github.com/gtmquest/gtm-advisor/agent/report"
)

// Snapshot is one published view of the report. Seq increases by one per
// publish, so observers can tell coalescing from reordering.
type Snapshot struct {
	Seq   uint64         `json:"seq"`
	State *reportx.State `json:"state"`
}

// Channel fans report snapshots out to subscribers. Publish never blocks on
// a slow subscriber: each subscription holds only the newest pending
// snapshot and older pending ones are replaced in place.
type Channel struct {
	mu     stdsync.RWMutex
	latest Snapshot
	subs   map[*Subscription]struct{}
}

type Subscription struct {
	ch     chan Snapshot
	cancel func()
	once   stdsync.Once
}

// C delivers snapshots. The channel is closed when the subscription is
// cancelled.
func (s *Subscription) C() <-chan Snapshot {
	return s.ch
}

// Cancel detaches the subscription and closes its delivery channel. Safe to
// call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

func NewChannel() *Channel {
	return &Channel{
		subs: make(map[*Subscription]struct{}, 2),
	}
}

// Publish records st as the newest snapshot and offers it to every
// subscriber, replacing any pending older snapshot. The caller must pass a
// state that will not be mutated afterwards (Clone before publishing).
func (c *Channel) Publish(st *reportx.State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest = Snapshot{Seq: c.latest.Seq + 1, State: st}
	for sub := range c.subs {
		offer(sub.ch, c.latest)
	}
}

// Latest answers "what is the current full state" with no side effect.
// Returns nil state before the first publish.
func (c *Channel) Latest() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

// Subscribe registers an observer. The current snapshot, if any, is
// delivered immediately so a reconnecting client starts from the latest
// state.
func (c *Channel) Subscribe() *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := &Subscription{ch: make(chan Snapshot, 1)}
	sub.cancel = func() {
		c.mu.Lock()
		delete(c.subs, sub)
		c.mu.Unlock()
		close(sub.ch)
	}
	c.subs[sub] = struct{}{}

	if c.latest.Seq > 0 {
		offer(sub.ch, c.latest)
	}
	return sub
}

// offer replaces a pending snapshot instead of blocking. Capacity is one,
// so after at most two attempts the slot holds the newest snapshot.
func offer(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
