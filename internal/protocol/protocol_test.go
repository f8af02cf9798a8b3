package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Inbound
	}{
		{"register", `{"event":"register","data":"Ann"}`, Register{Name: "Ann"}},
		{"register keeps spaces", `{"event":"register","data":" Ann "}`, Register{Name: " Ann "}},
		{"register empty", `{"event":"register","data":""}`, Register{Name: ""}},
		{"message", `{"event":"new_message","data":{"message":"hi","username":"Ann"}}`,
			NewMessage{Text: "hi", Sender: "Ann"}},
		{"message raw types", `{"event":"new_message","data":{"message":12,"username":false}}`,
			NewMessage{Text: float64(12), Sender: false}},
		{"message without fields", `{"event":"new_message","data":{}}`, NewMessage{}},
		{"message without data", `{"event":"new_message"}`, NewMessage{}},
		{"message null text", `{"event":"new_message","data":{"message":null,"username":"Ann"}}`,
			NewMessage{Text: nil, Sender: "Ann"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_ObjectText(t *testing.T) {
	got, err := Decode([]byte(`{"event":"new_message","data":{"message":{"a":1},"username":"Ann"}}`))
	require.NoError(t, err)
	msg, ok := got.(NewMessage)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"a": float64(1)}, msg.Text)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"invalid json", `{"event":`, ErrMalformedFrame},
		{"not an object", `["register","Ann"]`, ErrMalformedFrame},
		{"register number", `{"event":"register","data":5}`, ErrMalformedFrame},
		{"register missing", `{"event":"register"}`, ErrMalformedFrame},
		{"unknown", `{"event":"typing","data":true}`, ErrUnknownEvent},
		{"disconnect is transport only", `{"event":"disconnect"}`, ErrUnknownEvent},
		{"no event", `{"data":"x"}`, ErrUnknownEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   Outbound
		want string
	}{
		{"registration ok", RegistrationResult{Success: true}, `{"event":"registration_result","data":{"success":true}}`},
		{"registration failed", RegistrationResult{}, `{"event":"registration_result","data":{"success":false}}`},
		{"idle notice", IdleDisconnectNotice{}, `{"event":"disconnect_idle"}`},
		{"presence", PresenceUpdate{Names: []string{"Ann", "Bea"}}, `{"event":"online_users_update","data":["Ann","Bea"]}`},
		{"presence empty", PresenceUpdate{}, `{"event":"online_users_update","data":[]}`},
		{"chat", ChatEvent{Message: "hi", Username: "Ann"},
			`{"event":"new_message","data":{"message":"hi","username":"Ann","system":false,"error":false}}`},
		{"system error", ChatEvent{Message: "message_missing", Username: "System", System: true, Error: true},
			`{"event":"new_message","data":{"message":"message_missing","username":"System","system":true,"error":true}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

type bogus struct{}

func (bogus) Event() string { return "bogus" }

func TestEncode_Unknown(t *testing.T) {
	_, err := Encode(bogus{})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
