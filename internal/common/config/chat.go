package config

import "time"

type (
	// ChatConfig holds the already-resolved values the session engine consumes
	ChatConfig struct {
		MaxMessageLength int                `yaml:"max_message_length" validate:"gt=0"`
		IdleTimeout      time.Duration      `yaml:"idle_timeout" validate:"gt=0"`
		SystemName       string             `yaml:"system_name" validate:"required"`
		Announcements    AnnouncementConfig `yaml:"announcements"`
	}

	// AnnouncementConfig holds the text/template sources for synthesized system messages.
	// Templates are executed with a value exposing .Username.
	AnnouncementConfig struct {
		Joined string `yaml:"joined"`
		Left   string `yaml:"left"`
		Idle   string `yaml:"idle"`
	}

	// TransportConfig tunes the websocket connections
	TransportConfig struct {
		SendBuffer   int           `yaml:"send_buffer" validate:"gt=0"`
		MaxFrameSize int64         `yaml:"max_frame_size" validate:"gt=0"`
		WriteWait    time.Duration `yaml:"write_wait" validate:"gt=0"`
		PongWait     time.Duration `yaml:"pong_wait" validate:"gt=0"`
	}
)

const (
	DefaultJoinedTemplate = "<i>{{ .Username }} connected</i>"
	DefaultLeftTemplate   = "<i>{{ .Username }} left chat</i>"
	DefaultIdleTemplate   = "<i>{{ .Username }} disconnected due to inactivity</i>"
)

func (a *AnnouncementConfig) setDefaults() {
	if a.Joined == "" {
		a.Joined = DefaultJoinedTemplate
	}
	if a.Left == "" {
		a.Left = DefaultLeftTemplate
	}
	if a.Idle == "" {
		a.Idle = DefaultIdleTemplate
	}
}

func (t *TransportConfig) setDefaults() {
	if t.SendBuffer == 0 {
		t.SendBuffer = 256
	}
	if t.MaxFrameSize == 0 {
		t.MaxFrameSize = 4096
	}
	if t.WriteWait == 0 {
		t.WriteWait = 10 * time.Second
	}
	if t.PongWait == 0 {
		t.PongWait = 60 * time.Second
	}
}

// PingPeriod returns how often pings are written; it must stay below PongWait
func (t TransportConfig) PingPeriod() time.Duration {
	return (t.PongWait * 9) / 10
}
