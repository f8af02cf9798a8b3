package cnst

// Tracer names used across the service
const (
	// TraceDispatcher is the tracer name for the session/broadcast event loop
	TraceDispatcher = "huddle/dispatcher"
	// TraceTransport is the tracer name for the websocket transport
	TraceTransport = "huddle/transport"
)

// Span names
const (
	// SpanDispatchPrefix prefixes spans for handling one inbound event
	SpanDispatchPrefix = "huddle.dispatch."
	// SpanWSConnect represents accepting a websocket connection
	SpanWSConnect = "huddle.ws.connect"
)

// Attribute keys
const (
	AttrConnID       = "huddle.conn_id"
	AttrUsername     = "huddle.username"
	AttrSessionState = "huddle.session_state"
	AttrRejectReason = "huddle.reject_reason"
	AttrClientAddr   = "client.remote_addr"
)
