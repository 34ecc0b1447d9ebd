package models

// Role identifies who produced a Turn. The values match the chat roles used on
// the wire by the simulator UI.
type Role string

const (
	// RoleSystem turns carry scenario setup and are never shown to the judge.
	RoleSystem Role = "system"
	// RoleOperator is the human practising the conversation.
	RoleOperator Role = "user"
	// RoleCounterpart is the simulated client or direct report.
	RoleCounterpart Role = "assistant"
)

// Turn is one message in a transcript.
type Turn struct {
	Role Role   `json:"role" yaml:"role"`
	Text string `json:"content" yaml:"content"`
}

// Transcript is a chronological sequence of turns.
type Transcript []Turn

// Judged returns the turns that are visible to the judge, in order. System
// turns are dropped.
func (t Transcript) Judged() Transcript {
	judged := make(Transcript, 0, len(t))
	for _, turn := range t {
		if turn.Role == RoleSystem {
			continue
		}
		judged = append(judged, turn)
	}
	return judged
}
