package calculator

// ActionRequest is the JSON form of an action:
// {"type": "add_digit", "payload": {"digit": "7"}}.
type ActionRequest struct {
	Type    Kind          `json:"type"`
	Payload ActionPayload `json:"payload"`
}

// ActionPayload carries the optional action arguments.
type ActionPayload struct {
	Digit     string `json:"digit,omitempty"`
	Operation string `json:"operation,omitempty"`
}

// Action decodes the request into an Action.
func (r ActionRequest) Action() (Action, error) {
	return ParseAction(r.Type, r.Payload.Digit, r.Payload.Operation)
}

// NewActionRequest encodes action in its JSON form.
func NewActionRequest(action Action) ActionRequest {
	switch a := action.(type) {
	case AddDigit:
		return ActionRequest{Type: KindAddDigit, Payload: ActionPayload{Digit: a.Digit}}
	case ChooseOperation:
		return ActionRequest{Type: KindChooseOperation, Payload: ActionPayload{Operation: string(a.Operation)}}
	case nil:
		return ActionRequest{}
	default:
		return ActionRequest{Type: a.Kind()}
	}
}

// ReduceRequest is the JSON body for POST /calculator/reduce.
type ReduceRequest struct {
	State  State         `json:"state"`
	Action ActionRequest `json:"action"`
}

// ReduceResponse is the JSON response for POST /calculator/reduce.
type ReduceResponse struct {
	State   State  `json:"state"`
	Kind    Kind   `json:"kind"`
	Changed bool   `json:"changed"`
	Ignored string `json:"ignored,omitempty"` // set when the action kind was not recognized
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Previous  string `json:"previous"`
	Operation string `json:"operation"`
	Current   string `json:"current"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Previous  string `json:"previous"`
	Operation string `json:"operation"`
	Current   string `json:"current"`
	Result    string `json:"result"`
}

// ReplayRequest is the JSON body for POST /calculator/replay. Replay starts
// from State (empty when omitted) and applies either Actions or a keypad
// sequence such as "3+4+5="; Keys wins when both are set.
type ReplayRequest struct {
	State   State           `json:"state"`
	Actions []ActionRequest `json:"actions"`
	Keys    string          `json:"keys"`
}

// ReplayResponse is the JSON response for POST /calculator/replay.
type ReplayResponse struct {
	Initial State        `json:"initial"`
	Steps   []ReplayStep `json:"steps"`
	State   State        `json:"state"`
}

// ReplayStep records one applied action.
type ReplayStep struct {
	Action  ActionRequest `json:"action"`
	State   State         `json:"state"`
	Changed bool          `json:"changed"`
}
