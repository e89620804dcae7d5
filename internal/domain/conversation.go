package domain

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered history of one session's exchange with the
// generation backend. It is seeded with a single system turn and grows by
// exactly two turns (user, assistant) per successful query. Owned exclusively
// by one session; never shared, so it needs no locking.
type Conversation struct {
	turns []Turn
}

// NewConversation seeds a conversation with the given system prompt.
func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{
		turns: []Turn{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Append adds a turn to the history.
func (c *Conversation) Append(role Role, content string) {
	c.turns = append(c.turns, Turn{Role: role, Content: content})
}

// Turns returns a copy of the history so callers cannot mutate it.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns including the system seed.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Reset drops everything but a fresh system seed.
func (c *Conversation) Reset(systemPrompt string) {
	c.turns = []Turn{{Role: RoleSystem, Content: systemPrompt}}
}
