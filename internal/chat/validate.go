package chat

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Candidate is an inbound message before validation. Fields keep whatever JSON
// type the client sent.
type Candidate struct {
	Text   any
	Sender any
}

// Membership answers whether a name is currently registered
type Membership interface {
	Contains(ctx context.Context, name string) (bool, error)
}

// Validator checks inbound messages before they are broadcast
type Validator struct {
	maxLength int
}

func NewValidator(maxLength int) *Validator {
	return &Validator{maxLength: maxLength}
}

// Validate runs the checks in a fixed order and reports the first failure as a
// Reason. Errors from members are returned wrapped and are never a Reason.
func (v *Validator) Validate(ctx context.Context, c Candidate, members Membership) (Message, error) {
	if blank(c.Text) {
		return Message{}, ReasonMessageMissing
	}
	text, ok := c.Text.(string)
	if !ok {
		return Message{}, ReasonMessageNotString
	}
	if utf8.RuneCountInString(text) > v.maxLength {
		return Message{}, ReasonMessageTooLong
	}
	if blank(c.Sender) {
		return Message{}, ReasonUsernameMissing
	}
	sender, ok := c.Sender.(string)
	if !ok {
		return Message{}, ReasonUserNotRegistered
	}
	registered, err := members.Contains(ctx, sender)
	if err != nil {
		return Message{}, fmt.Errorf("failed to check sender: %w", err)
	}
	if !registered {
		return Message{}, ReasonUserNotRegistered
	}
	return Message{Text: text, Sender: sender}, nil
}

// AsReason extracts the validation Reason from err, if any
func AsReason(err error) (Reason, bool) {
	var r Reason
	if errors.As(err, &r) {
		return r, true
	}
	return "", false
}

// blank reports JSON values a client would consider empty: null, "", false and 0
func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case float32:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	default:
		return false
	}
}
