package chat

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/amoylab/huddle/internal/common/config"
)

// Announcer renders the system messages sent on joins, departures and rejections
type Announcer struct {
	system string
	joined *template.Template
	left   *template.Template
	idle   *template.Template
}

type announcement struct {
	Username string
}

// NewAnnouncer parses the configured templates; empty templates fall back to the defaults
func NewAnnouncer(systemName string, cfg config.AnnouncementConfig) (*Announcer, error) {
	a := &Announcer{system: systemName}
	var err error
	if a.joined, err = parseAnnouncement("joined", cfg.Joined, config.DefaultJoinedTemplate); err != nil {
		return nil, err
	}
	if a.left, err = parseAnnouncement("left", cfg.Left, config.DefaultLeftTemplate); err != nil {
		return nil, err
	}
	if a.idle, err = parseAnnouncement("idle", cfg.Idle, config.DefaultIdleTemplate); err != nil {
		return nil, err
	}
	return a, nil
}

func parseAnnouncement(name, src, fallback string) (*template.Template, error) {
	if src == "" {
		src = fallback
	}
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("invalid %s announcement template: %w", name, err)
	}
	return tmpl, nil
}

// SystemName is the reserved sender of every synthesized message
func (a *Announcer) SystemName() string {
	return a.system
}

func (a *Announcer) Joined(username string) Message {
	return a.render(a.joined, config.DefaultJoinedTemplate, username)
}

// Departed picks the wording for how the session ended
func (a *Announcer) Departed(username string, reason TerminationReason) Message {
	if reason == TerminationIdleTimeout {
		return a.render(a.idle, config.DefaultIdleTemplate, username)
	}
	return a.render(a.left, config.DefaultLeftTemplate, username)
}

// Rejected is the error notice sent back to the originator of an invalid message
func (a *Announcer) Rejected(reason Reason) Message {
	return Message{Text: string(reason), Sender: a.system, System: true, Error: true}
}

func (a *Announcer) render(tmpl *template.Template, fallback, username string) Message {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, announcement{Username: username}); err != nil {
		buf.Reset()
		// the default templates only reference .Username and cannot fail
		_ = template.Must(template.New("fallback").Parse(fallback)).Execute(&buf, announcement{Username: username})
	}
	return Message{Text: buf.String(), Sender: a.system, System: true}
}
