package chat

// State of a session; transitions only move forward
type State int

const (
	StateUnregistered State = iota
	StateRegistered
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateRegistered:
		return "registered"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// TerminationReason records why a session ended
type TerminationReason int

const (
	TerminationNone TerminationReason = iota
	TerminationVoluntary
	TerminationIdleTimeout
)

func (r TerminationReason) String() string {
	switch r {
	case TerminationVoluntary:
		return "voluntary"
	case TerminationIdleTimeout:
		return "idle_timeout"
	default:
		return "none"
	}
}

// Session is the per-connection state owned by the dispatcher loop. It is not
// safe for concurrent use.
type Session struct {
	id         string
	username   string
	state      State
	reason     TerminationReason
	timer      Timer
	generation uint64
}

func NewSession(id string) *Session {
	return &Session{id: id}
}

func (s *Session) ID() string { return s.id }

// Username is empty until registration succeeds
func (s *Session) Username() string { return s.username }

func (s *Session) State() State { return s.state }

func (s *Session) Reason() TerminationReason { return s.reason }

// Generation identifies the currently armed idle timer
func (s *Session) Generation() uint64 { return s.generation }

// disarm stops the idle timer and invalidates any firing already in flight
func (s *Session) disarm() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}
