package usecase

import (
	"sync"
	"time"

	"TradePilot/internal/domain/models"
)

type inboxEntry struct {
	signal models.Signal
	exp    time.Time
}

// SignalInbox holds the most recent opinion per (symbol, source) with a
// TTL. Upstream analyzers publish continuously; the trade cycle only ever
// wants the freshest non-expired set.
type SignalInbox struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]map[models.Source]inboxEntry
}

// NewSignalInbox creates an inbox; entries older than ttl are dropped on
// read.
func NewSignalInbox(ttl time.Duration) *SignalInbox {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SignalInbox{ttl: ttl, m: make(map[string]map[models.Source]inboxEntry)}
}

// Put stores the signal, replacing any previous opinion from the same
// source for the symbol.
func (i *SignalInbox) Put(symbol string, s models.Signal) {
	s = models.NormalizeSignal(s)
	i.mu.Lock()
	defer i.mu.Unlock()
	bySource, ok := i.m[symbol]
	if !ok {
		bySource = make(map[models.Source]inboxEntry)
		i.m[symbol] = bySource
	}
	bySource[s.Source] = inboxEntry{signal: s, exp: time.Now().Add(i.ttl)}
}

// Snapshot returns all fresh signals for the symbol.
func (i *SignalInbox) Snapshot(symbol string) []models.Signal {
	now := time.Now()
	i.mu.RLock()
	bySource := i.m[symbol]
	out := make([]models.Signal, 0, len(bySource))
	var stale bool
	for _, e := range bySource {
		if now.After(e.exp) {
			stale = true
			continue
		}
		out = append(out, e.signal)
	}
	i.mu.RUnlock()

	if stale {
		i.evict(symbol, now)
	}
	return out
}

func (i *SignalInbox) evict(symbol string, now time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for src, e := range i.m[symbol] {
		if now.After(e.exp) {
			delete(i.m[symbol], src)
		}
	}
}
