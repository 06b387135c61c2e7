package domain

// Role identifies the speaker of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// Turn is a single message in a conversation.
type Turn struct {
	Role    Role
	Content string
}

// UserTurn returns a turn spoken by the user.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn returns a turn produced by the assistant.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// Reply is what the voice assistant returns for one query.
type Reply struct {
	// Text is the assistant's reply.
	Text string

	// Audio is the synthesised speech, nil when not requested or unavailable.
	Audio []byte

	// AudioErr is set when synthesis was requested but failed.
	// The text reply is still valid.
	AudioErr error
}

// HasAudio returns true if the reply carries synthesised speech.
func (r *Reply) HasAudio() bool {
	return r != nil && len(r.Audio) > 0
}
