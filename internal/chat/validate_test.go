package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type members map[string]bool

func (m members) Contains(_ context.Context, name string) (bool, error) {
	return m[name], nil
}

type brokenMembers struct{}

func (brokenMembers) Contains(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(5)
	online := members{"Alice": true}

	tests := []struct {
		name string
		in   Candidate
		want Reason
	}{
		{"nil text", Candidate{Text: nil, Sender: "Alice"}, ReasonMessageMissing},
		{"empty text", Candidate{Text: "", Sender: "Alice"}, ReasonMessageMissing},
		{"false text", Candidate{Text: false, Sender: "Alice"}, ReasonMessageMissing},
		{"zero text", Candidate{Text: float64(0), Sender: "Alice"}, ReasonMessageMissing},
		{"empty text unregistered sender", Candidate{Text: "", Sender: "Nobody"}, ReasonMessageMissing},
		{"empty text no sender", Candidate{Text: ""}, ReasonMessageMissing},
		{"number text", Candidate{Text: float64(42), Sender: "Alice"}, ReasonMessageNotString},
		{"true text", Candidate{Text: true, Sender: "Alice"}, ReasonMessageNotString},
		{"object text", Candidate{Text: map[string]any{}, Sender: "Alice"}, ReasonMessageNotString},
		{"array text", Candidate{Text: []any{"hi"}, Sender: "Alice"}, ReasonMessageNotString},
		{"too long", Candidate{Text: "hello!", Sender: "Alice"}, ReasonMessageTooLong},
		{"too long without sender", Candidate{Text: "hello!"}, ReasonMessageTooLong},
		{"missing sender", Candidate{Text: "hi"}, ReasonUsernameMissing},
		{"empty sender", Candidate{Text: "hi", Sender: ""}, ReasonUsernameMissing},
		{"zero sender", Candidate{Text: "hi", Sender: float64(0)}, ReasonUsernameMissing},
		{"non-string sender", Candidate{Text: "hi", Sender: float64(7)}, ReasonUserNotRegistered},
		{"unregistered sender", Candidate{Text: "hello", Sender: "Bob"}, ReasonUserNotRegistered},
		{"case differs", Candidate{Text: "hi", Sender: "alice"}, ReasonUserNotRegistered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(context.Background(), tt.in, online)
			require.Error(t, err)
			reason, ok := AsReason(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, reason)
			assert.Equal(t, string(tt.want), err.Error())
		})
	}
}

func TestValidator_Accepts(t *testing.T) {
	v := NewValidator(5)
	online := members{"Alice": true}

	msg, err := v.Validate(context.Background(), Candidate{Text: "hello", Sender: "Alice"}, online)
	require.NoError(t, err)
	assert.Equal(t, Message{Text: "hello", Sender: "Alice"}, msg)

	// length is counted in characters, not bytes
	msg, err = v.Validate(context.Background(), Candidate{Text: "héllo", Sender: "Alice"}, online)
	require.NoError(t, err)
	assert.Equal(t, "héllo", msg.Text)

	// markup passes through untouched
	msg, err = v.Validate(context.Background(), Candidate{Text: "<b>", Sender: "Alice"}, online)
	require.NoError(t, err)
	assert.Equal(t, "<b>", msg.Text)
}

func TestValidator_MembershipError(t *testing.T) {
	v := NewValidator(5)

	_, err := v.Validate(context.Background(), Candidate{Text: "hi", Sender: "Alice"}, brokenMembers{})
	require.Error(t, err)
	_, isReason := AsReason(err)
	assert.False(t, isReason)
	assert.Contains(t, err.Error(), "connection refused")
}
