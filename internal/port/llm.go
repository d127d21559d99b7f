package port

// Message is one entry in a chat-completions conversation.
type Message struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// LLM represents a hosted language model for text generation.
type LLM interface {
	// Generate generates text based on the prompt.
	Generate(prompt string) (string, error)

	// GenerateWithSystem generates text with a system prompt.
	GenerateWithSystem(systemPrompt, userPrompt string) (string, error)

	// Chat generates a completion for a full message history.
	Chat(messages []Message) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
