package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Image is an inline image attached to a message. Data is base64 without
// any data: URI prefix.
type Image struct {
	MIMEType string
	Data     string
}

// DataURI renders the image as a data: URI.
func (img Image) DataURI() string {
	return "data:" + img.MIMEType + ";base64," + img.Data
}

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
	Images  []Image
}

// Schema is an OpenAPI-style object schema for structured output. Providers
// with native schema support send it; others rely on JSONMode and the prompt.
type Schema struct {
	Properties map[string]string
	Required   []string
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model          string
	Messages       []Message
	MaxTokens      int
	Temperature    float64
	JSONMode       bool
	ResponseSchema *Schema
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
