package state

import (
	"sync"
	"time"
)

// CycleSummary is the outcome of one completed cycle as exposed to operators.
type CycleSummary struct {
	RunID          string    `json:"run_id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Evaluated      int       `json:"evaluated"`
	Buys           []string  `json:"buys"`
	Sells          []string  `json:"sells"`
	Skipped        int       `json:"skipped"`
	Submitted      int       `json:"submitted"`
	Failed         int       `json:"failed"`
	TradingBlocked bool      `json:"trading_blocked"`
	BuyingPower    string    `json:"buying_power"`
	Error          string    `json:"error,omitempty"`
}

type Snapshot struct {
	CyclesRun int           `json:"cycles_run"`
	LastCycle *CycleSummary `json:"last_cycle,omitempty"`
}

type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copy := s.snapshot
	if s.snapshot.LastCycle != nil {
		last := *s.snapshot.LastCycle
		last.Buys = append([]string(nil), last.Buys...)
		last.Sells = append([]string(nil), last.Sells...)
		copy.LastCycle = &last
	}
	return copy
}

func (s *Store) RecordCycle(summary CycleSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.CyclesRun++
	s.snapshot.LastCycle = &summary
}
