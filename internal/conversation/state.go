// Package conversation owns the chat turn history and the state machine that
// decides whether a user message fills placeholders in the previous section
// or requests a new one.
package conversation

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation. Turns are append-only and never
// reordered; index order is chronological.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// State holds one session's conversation. LastSection, when non-empty, always
// equals the content of the last assistant turn, including any substitutions
// applied in place.
type State struct {
	Turns       []Turn
	LastSection string
	Suggestions []string
}

// NewState seeds a session with the opening assistant greeting.
func NewState(greeting string) *State {
	s := &State{}
	if greeting != "" {
		s.Turns = append(s.Turns, Turn{Role: RoleAssistant, Content: greeting})
	}
	return s
}

// lastAssistantIndex returns the index of the most recent assistant turn, or
// -1 when none exists.
func (s *State) lastAssistantIndex() int {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleAssistant {
			return i
		}
	}
	return -1
}
