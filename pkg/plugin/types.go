package plugin

// Capability expresses optional features an action may request access to.
type Capability string

const (
	// CapabilityNetwork is requested by actions that call remote APIs.
	CapabilityNetwork Capability = "network"
	// CapabilityFilesystem is requested by actions that touch local files.
	CapabilityFilesystem Capability = "filesystem"
)

// Info contains descriptive metadata for a plugin implementation.
type Info struct {
	ID          string
	Name        string
	Description string
	Version     string
	// Settings is a JSON schema describing the settings the plugin reads from the runtime.
	Settings any
}

// Message is the conversation message that triggered an action.
type Message struct {
	UserID string `json:"user_id,omitempty"`
	Text   string `json:"text"`
}

// Example is one turn of a sample conversation shown to the host when it selects actions.
type Example struct {
	User   string `json:"user"`
	Text   string `json:"text"`
	Action string `json:"action,omitempty"`
}

// ErrorContent carries the machine readable error of a soft failure.
type ErrorContent struct {
	Error string `json:"error"`
}

// Content is the payload delivered back to the host through a Callback.
type Content struct {
	Text    string        `json:"text"`
	Content *ErrorContent `json:"content,omitempty"`
}

// Failed reports whether the content describes a soft failure.
func (c Content) Failed() bool {
	return c.Content != nil && c.Content.Error != ""
}

// Callback delivers an action result to the host. A nil Callback is valid and means
// the host does not want the result.
type Callback func(Content) error
