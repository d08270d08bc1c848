// Package protocol defines the tabctl wire protocol and the command
// encoder that translates tokenized command lines into requests.
//
// The wire format is one JSON object per line: the client writes exactly
// one Request per connection and the daemon answers with exactly one
// newline-terminated Response.
package protocol

// Action identifies the daemon operation a request asks for.
type Action string

const (
	ActionNavigate   Action = "navigate"
	ActionClick      Action = "click"
	ActionFill       Action = "fill"
	ActionType       Action = "type"
	ActionHover      Action = "hover"
	ActionSnapshot   Action = "snapshot"
	ActionScreenshot Action = "screenshot"
	ActionGetText    Action = "get_text"
	ActionGetURL     Action = "get_url"
	ActionGetTitle   Action = "get_title"
	ActionPress      Action = "press"
	ActionWait       Action = "wait"
	ActionBack       Action = "back"
	ActionForward    Action = "forward"
	ActionReload     Action = "reload"
	ActionEval       Action = "eval"
	ActionClose      Action = "close"
)

// Request is a single command sent to the daemon. Fields beyond ID and
// Action are action-specific; unused ones are omitted from the wire form.
type Request struct {
	ID     string `json:"id"`
	Action Action `json:"action"`

	URL      string `json:"url,omitempty"`
	Selector string `json:"selector,omitempty"`
	Value    string `json:"value,omitempty"`
	Text     string `json:"text,omitempty"`
	Key      string `json:"key,omitempty"`
	Script   string `json:"script,omitempty"`
	Path     string `json:"path,omitempty"`
	Timeout  int    `json:"timeout,omitempty"`

	// Snapshot options.
	Interactive bool `json:"interactive,omitempty"`
	Compact     bool `json:"compact,omitempty"`
	Depth       int  `json:"depth,omitempty"`
}

// Response is the daemon's answer to a Request, correlated by ID.
type Response struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failure synthesizes a failed Response for a request that never produced
// one, carrying the request id and the error text. Used when an exchange
// itself fails (connection or timeout error).
func Failure(req *Request, err error) *Response {
	id := ""
	if req != nil {
		id = req.ID
	}
	return &Response{ID: id, Success: false, Error: err.Error()}
}
