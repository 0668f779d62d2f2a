package app

import (
	"sync"
	"time"

	"github.com/dkeye/Call/internal/domain"
)

// Scheduler owns one cancellable deferred action per ringing call.
type Scheduler struct {
	mu     sync.Mutex
	timers map[domain.CallID]*time.Timer
}

func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[domain.CallID]*time.Timer)}
}

// Arm schedules exactly one fire for id, replacing a pending one.
func (s *Scheduler) Arm(id domain.CallID, d time.Duration, fire func(domain.CallID)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.timers[id]; ok {
		old.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.timers[id] == t {
			delete(s.timers, id)
		}
		s.mu.Unlock()
		fire(id)
	})
	s.timers[id] = t
}

// Disarm cancels a pending fire. Safe after the timer fired or was disarmed.
func (s *Scheduler) Disarm(id domain.CallID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[id]
	if !ok {
		return false
	}
	delete(s.timers, id)
	return t.Stop()
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels everything; used on shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
