package domain

// EventType defines the type of real-time event pushed to viewers.
type EventType string

const (
	EventNewQuestion    EventType = "new_question"
	EventUpdateQuestion EventType = "update_question"
	EventNewAnswer      EventType = "new_answer"
	EventDeleteQuestion EventType = "delete_question"
	EventDeleteAnswer   EventType = "delete_answer"
)

// Event is the envelope sent over WebSocket. Events are value objects:
// immutable once constructed, never persisted, and carry only the
// fields listeners need for the given type.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}
