package domain

type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Turn is one conversational entry in a session's short-term memory.
type Turn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
}

// MaxSessionTurns bounds the per-session ring buffer: the last 3 exchanges.
const MaxSessionTurns = 6
