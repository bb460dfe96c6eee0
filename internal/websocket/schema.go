package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventHello Event = "hello"
	EventError Event = "error"
	EventPong  Event = "pong"
)

// HelloResponse is sent once on connect so the client knows which snapshot
// generation it is looking at before any refresh arrives.
type HelloResponse struct {
	Event      Event `json:"event"`
	Generation int64 `json:"generation"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
