package events

import (
	"sync"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/ternarybob/arbor"
)

const subscriberBuffer = 64

// Service implements EventService with buffered channel fanout. A subscriber
// that falls behind loses events instead of blocking the publisher.
type Service struct {
	mu          sync.RWMutex
	subscribers map[int]chan interfaces.Event
	nextID      int
	logger      arbor.ILogger
}

// NewService creates a new event service
func NewService() *Service {
	return &Service{
		subscribers: make(map[int]chan interfaces.Event),
		logger:      common.GetLogger(),
	}
}

// Publish sends an event to all subscribers without blocking
func (s *Service) Publish(event interfaces.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			s.logger.Warn().
				Str("event_type", event.Type).
				Int("subscriber", id).
				Msg("Subscriber buffer full, dropping event")
		}
	}
}

// Subscribe registers a new subscriber and returns its channel plus a cancel
// function that must be called exactly once when done.
func (s *Service) Subscribe() (<-chan interfaces.Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan interfaces.Event, subscriberBuffer)
	s.subscribers[id] = ch

	s.logger.Debug().Int("subscriber", id).Msg("Event subscriber registered")

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(existing)
		}
	}
	return ch, cancel
}

// Close drops all subscribers
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	s.logger.Info().Msg("Event service closed")
}

// Ensure interface compliance
var _ interfaces.EventService = (*Service)(nil)
