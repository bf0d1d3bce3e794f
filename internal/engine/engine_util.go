package engine

// NewSession opens a fresh queue. The organizer is not auto-queued; they
// join like everyone else.
func NewSession(organizer Player) Session {
	return Session{
		Organizer: organizer,
		Queue:     []Player{},
		Phase:     PhaseOpen,
	}
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
