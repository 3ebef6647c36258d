package app

import (
	"sync"

	"gincana-service/internal/domain"
)

const feedBuffer = 8

// MatchFeed fans match snapshots out to read-only observers such as a projector display.
// Only the engine publishes; observers never write back.
type MatchFeed struct {
	mu      sync.Mutex
	subs    map[string]map[chan domain.Match]struct{}
	forward func(domain.Match)
}

func NewMatchFeed() *MatchFeed {
	return &MatchFeed{subs: make(map[string]map[chan domain.Match]struct{})}
}

// subscribe registers a channel for matchID. The caller must invoke cancel to release it.
func (f *MatchFeed) subscribe(matchID string) (chan domain.Match, func()) {
	ch := make(chan domain.Match, feedBuffer)

	f.mu.Lock()
	if f.subs[matchID] == nil {
		f.subs[matchID] = make(map[chan domain.Match]struct{})
	}
	f.subs[matchID][ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subs[matchID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(f.subs, matchID)
		}
	}
	return ch, cancel
}

// offer delivers m to one subscriber if it is still registered.
func (f *MatchFeed) offer(ch chan domain.Match, m domain.Match) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[m.ID][ch]; !ok {
		return
	}
	sendLatest(ch, m)
}

// SetForwarder registers fn to receive every locally published snapshot, e.g. to relay
// it to other instances.
func (f *MatchFeed) SetForwarder(fn func(domain.Match)) {
	f.mu.Lock()
	f.forward = fn
	f.mu.Unlock()
}

// Publish sends a snapshot to every local subscriber of the match and to the forwarder.
func (f *MatchFeed) Publish(m domain.Match) {
	f.Deliver(m)

	f.mu.Lock()
	forward := f.forward
	f.mu.Unlock()
	if forward != nil {
		forward(m.Clone())
	}
}

// Deliver fans m out to local subscribers only.
func (f *MatchFeed) Deliver(m domain.Match) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[m.ID] {
		sendLatest(ch, m.Clone())
	}
}

// Close drops every subscriber of matchID.
func (f *MatchFeed) Close(matchID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[matchID] {
		close(ch)
	}
	delete(f.subs, matchID)
}

// Subscribers reports how many observers follow matchID.
func (f *MatchFeed) Subscribers(matchID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[matchID])
}

// sendLatest never blocks: a slow observer loses its oldest pending snapshot.
func sendLatest(ch chan domain.Match, m domain.Match) {
	select {
	case ch <- m:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- m
	}
}
