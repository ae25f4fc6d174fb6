package connectivity

import "context"

// Result is the outcome of a remote command.
//
// A transport fault (timeout, broker loss) is reported by the Executor
// as an error return; the coordinator treats it identically to
// Success=false.
type Result struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Executor performs a named remote operation against the device
// backend. Implementations are asynchronous under the hood but present
// a blocking call that resolves with the backend's result.
//
// The production implementation lives in internal/executor; tests
// substitute scripted stubs.
type Executor interface {
	Execute(ctx context.Context, name string, args map[string]any) (*Result, error)
}

// Bus is the many-to-many publish/subscribe channel the coordinator
// emits lifecycle events on and receives UI intents from. Topics use
// the canonical colon-separated form.
//
// Publish marshals the payload for the wire; Subscribe delivers raw
// payload bytes to the handler. Handler errors are logged by the bus
// implementation, not propagated to the publisher.
type Bus interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(topic string, payload []byte) error) error
}
