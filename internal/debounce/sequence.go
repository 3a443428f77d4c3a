package debounce

import "sync"

// Ticket identifies one load started through a Sequence.
type Ticket uint64

// Sequence hands out increasing tickets to concurrent loads and lets only a
// load newer than the last committed one publish its result.
//
//	t := seq.Next()
//	data, err := load(ctx)
//	if err == nil && seq.Commit(t) {
//	    publish(data)
//	}
//
// Commit and publish are separate steps; callers that publish under a lock
// should call Commit inside the same critical section.
type Sequence struct {
	mu        sync.Mutex
	issued    Ticket
	committed Ticket
}

// Next returns a ticket newer than every ticket issued so far.
func (s *Sequence) Next() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Commit records t as the latest published result if it is newer than the
// current one. It returns false for stale tickets, which must be discarded.
func (s *Sequence) Commit(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t <= s.committed {
		return false
	}
	s.committed = t
	return true
}
