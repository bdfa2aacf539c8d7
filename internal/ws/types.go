package ws

const (
	// client - server
	MsgStart  = "start"
	MsgClick  = "click"
	MsgConfig = "config"
	MsgSubmit = "submit"
	MsgPing   = "ping"

	// server - client
	MsgReady     = "ready"
	MsgState     = "state"
	MsgCompleted = "completed"
	MsgSubmitted = "submitted"
	MsgError     = "error"
	MsgPong      = "pong"
)
