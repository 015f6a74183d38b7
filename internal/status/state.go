// Package status holds the shared service status of the AI facade and
// the read-only reporter the UI layers consume.
package status

import (
	"sync"
	"time"
)

// Mode is the execution path last observed by the facade.
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// ServiceStatus is a point-in-time copy of the facade state.
type ServiceStatus struct {
	IsOnline          bool
	LastCheck         time.Time
	Mode              Mode
	ConsecutiveErrors int
	LastError         string
	LastErrorKind     string
}

// State is the mutable status shared by the prober and the dispatcher.
// Readers always get a copy; the last write wins.
type State struct {
	mu     sync.RWMutex
	status ServiceStatus
	now    func() time.Time

	subs   map[int]chan ServiceStatus
	nextID int
}

// NewState returns the pessimistic initial state: offline, local mode.
func NewState() *State {
	return &State{
		status: ServiceStatus{Mode: ModeLocal},
		now:    time.Now,
		subs:   make(map[int]chan ServiceStatus),
	}
}

// Snapshot returns a copy of the current status.
func (s *State) Snapshot() ServiceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// RecordProbe stores the outcome of a health probe.
// Success moves the facade to remote mode.
func (s *State) RecordProbe(online bool, err error) {
	s.update(func(st *ServiceStatus) {
		st.IsOnline = online
		st.LastCheck = s.now()
		if online {
			st.Mode = ModeRemote
			return
		}
		st.Mode = ModeLocal
		if err != nil {
			st.LastError = err.Error()
		}
	})
}

// RecordRemoteSuccess resets the error streak after a successful remote call.
func (s *State) RecordRemoteSuccess() {
	s.update(func(st *ServiceStatus) {
		st.IsOnline = true
		st.Mode = ModeRemote
		st.ConsecutiveErrors = 0
		st.LastError = ""
		st.LastErrorKind = ""
	})
}

// RecordRemoteFailure counts a failed remote call and returns the new streak.
func (s *State) RecordRemoteFailure(kind string, err error) int {
	var streak int
	s.update(func(st *ServiceStatus) {
		st.IsOnline = false
		st.Mode = ModeLocal
		st.ConsecutiveErrors++
		st.LastErrorKind = kind
		if err != nil {
			st.LastError = err.Error()
		}
		streak = st.ConsecutiveErrors
	})
	return streak
}

// Subscribe returns a channel that receives the status after every mode
// change. Slow readers only see the latest status. Call cancel to stop.
func (s *State) Subscribe() (<-chan ServiceStatus, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan ServiceStatus, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *State) update(fn func(*ServiceStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.status.Mode
	fn(&s.status)
	if s.status.Mode == before {
		return
	}

	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.status
	}
}
