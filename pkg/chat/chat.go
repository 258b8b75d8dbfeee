package chat

import "fmt"

const (
	RoleUser      = "user"      // The player
	RoleAssistant = "assistant" // The NPC
	RoleSystem    = "system"    // Prompt instructions and game context
)

// Message is a single chat message in a conversation with the LLM.
// The role/content shape is shared by all supported providers.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// History is an ordered conversation transcript. The zero value is usable.
type History []Message

// Add appends a message to the history.
func (h *History) Add(role, content string) {
	*h = append(*h, Message{Role: role, Content: content})
}

// Tail returns the last n messages, or the whole history if it is shorter.
func (h History) Tail(n int) History {
	if len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}

// Validate checks that a message is structurally usable before it is sent
// to a provider.
func (m Message) Validate() error {
	if m.Role == "" {
		return fmt.Errorf("message role cannot be empty")
	}
	if m.Content == "" {
		return fmt.Errorf("message content cannot be empty")
	}
	return nil
}
