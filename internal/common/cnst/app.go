package cnst

const (
	// AppName is the name of the application
	AppName = "huddle"
	// CommandName is the name of the CLI binary
	CommandName = "huddle"
)
