// Package null is an in-memory session: offers are held locally and
// served back like a paster would see them. Embedding hosts use it in
// tests; this repo's facade tests run the whole offer life cycle
// against it.
package null

import (
	"sync"

	"github.com/dkotenko/clipbridge/pkg/clipboard/session"
)

var _ session.Session = (*Session)(nil)

type Session struct {
	mu     sync.Mutex
	offer  *session.Offer
	stored bool
}

func New() *Session {
	return &Session{}
}

func (s *Session) WaitForContents(target string) ([]byte, error) {
	s.mu.Lock()
	off := s.offer
	s.mu.Unlock()

	if off == nil {
		return nil, session.ErrNoContents
	}

	data, ok := off.Bytes(target)
	if !ok {
		return nil, session.ErrNoContents
	}
	return data, nil
}

func (s *Session) Publish(o *session.Offer) error {
	s.mu.Lock()
	prev := s.offer
	s.offer = o
	s.stored = false
	o.MarkPublished()
	s.mu.Unlock()

	if prev != nil {
		prev.Clear()
	}
	return nil
}

func (s *Session) RequestStore() error {
	s.mu.Lock()
	s.stored = true
	s.mu.Unlock()
	return nil
}

func (s *Session) Clear() error {
	s.mu.Lock()
	prev := s.offer
	s.offer = nil
	s.stored = false
	s.mu.Unlock()

	if prev != nil {
		prev.Clear()
	}
	return nil
}

func (s *Session) HasTarget(target string) (bool, error) {
	s.mu.Lock()
	off := s.offer
	s.mu.Unlock()

	if off == nil {
		return false, nil
	}

	for _, t := range off.Targets() {
		if t == target {
			return true, nil
		}
	}
	return false, nil
}

// Current exposes the live offer for assertions.
func (s *Session) Current() *session.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offer
}

// Stored reports whether the last publish was followed by a store
// request.
func (s *Session) Stored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stored
}
