package feeding

import "time"

type EventType string

const (
	EventAppended EventType = "appended"
	EventEdited   EventType = "edited"
	EventDeleted  EventType = "deleted"
	EventReset    EventType = "reset"
)

// Event describes a completed mutation.
type Event struct {
	Type     EventType
	ID       string // empty for EventReset
	Affected int64
	At       time.Time
}

// Listener is called synchronously after each mutation. Listeners must not
// block; hand work off to a goroutine if needed.
type Listener func(Event)

// Subscribe registers l for every future mutation.
func (s *Service) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Service) emit(e Event) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(e)
	}
}
