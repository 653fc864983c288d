package domain

// Phase is the state of the turn currently being resolved.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSending    Phase = "sending"
	PhaseBackingOff Phase = "backing_off"
	PhaseDone       Phase = "done"
)

// ConversationState is a point-in-time copy of a widget session.
type ConversationState struct {
	SessionID string
	Messages  []Message
	Pending   bool
	Open      bool
	Phase     Phase
	Attempt   int

	// Derived rendering hints.
	Typing          bool
	ShowSuggestions bool
	Unread          bool
}

// Derive fills in the rendering hints from the stored fields.
func (s ConversationState) Derive() ConversationState {
	n := len(s.Messages)
	s.Typing = s.Pending && n > 0
	s.ShowSuggestions = n <= 1
	s.Unread = !s.Open && n > 1
	return s
}
