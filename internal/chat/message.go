// Package chat holds the session engine: message validation, the per-connection
// lifecycle and the system announcements it produces.
package chat

// Message is one chat line as broadcast to clients. Synthesized messages always
// carry the reserved system name as sender.
type Message struct {
	Text   string
	Sender string
	System bool
	Error  bool
}

// Reason is a user-visible validation failure code
type Reason string

const (
	ReasonMessageMissing    Reason = "message_missing"
	ReasonMessageNotString  Reason = "message_not_string"
	ReasonMessageTooLong    Reason = "message_too_long"
	ReasonUsernameMissing   Reason = "username_missing"
	ReasonUserNotRegistered Reason = "user_not_registered"
)

func (r Reason) Error() string {
	return string(r)
}
