package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/melohub/melohub-core/internal/connectivity"
	"github.com/melohub/melohub-core/internal/infrastructure/mqtt"
)

// defaultTimeout bounds a request when no timeout is configured.
const defaultTimeout = 15 * time.Second

// Transport is the subset of the MQTT client used by the executor.
// Satisfied by *mqtt.Client; tests substitute a fake.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Logger is the minimal logging interface the executor needs.
type Logger interface {
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// RequestMessage is the wire format for backend command requests.
type RequestMessage struct {
	RequestID string         `json:"request_id"`
	Command   string         `json:"command"`
	Args      map[string]any `json:"args,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ResponseMessage is the wire format for backend command responses.
type ResponseMessage struct {
	RequestID string         `json:"request_id"`
	Success   bool           `json:"success"`
	Data      map[string]any `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Options configures an Executor.
type Options struct {
	// Backend is the backend service name (e.g. "devicesd").
	Backend string

	// QoS is the MQTT QoS level for request and response traffic.
	QoS byte

	// Timeout bounds each request. Zero means defaultTimeout.
	Timeout time.Duration

	// Logger is optional.
	Logger Logger
}

// Executor sends commands to a device backend over MQTT request/response
// topics and correlates replies by request ID.
//
// Each Execute call publishes a request on melohub/request/{backend}/{id}
// and waits for the matching response on melohub/response/{backend}/{id}.
// A backend that does not answer within the timeout is treated as
// unavailable.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Executor struct {
	transport Transport
	topics    mqtt.Topics
	backend   string
	qos       byte
	timeout   time.Duration
	logger    Logger

	pending map[string]chan ResponseMessage
	mu      sync.Mutex
}

// New creates an executor for the given backend and subscribes to its
// response topic. The subscription is shared by all in-flight requests.
func New(transport Transport, opts Options) (*Executor, error) {
	if opts.Backend == "" {
		return nil, fmt.Errorf("executor: backend name is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	e := &Executor{
		transport: transport,
		backend:   opts.Backend,
		qos:       opts.QoS,
		timeout:   timeout,
		logger:    opts.Logger,
		pending:   make(map[string]chan ResponseMessage),
	}

	pattern := e.topics.AllBackendResponses(opts.Backend)
	if err := transport.Subscribe(pattern, opts.QoS, e.handleResponse); err != nil {
		return nil, fmt.Errorf("executor: subscribing to %s: %w", pattern, err)
	}

	return e, nil
}

// Backend returns the backend name this executor targets.
func (e *Executor) Backend() string {
	return e.backend
}

// Execute sends a command to the backend and waits for its response.
//
// A transport failure, timeout, or cancelled context yields an error
// wrapping connectivity.ErrBackendUnavailable. A response with
// success=false is not an error here; it is returned in the Result for
// the caller to interpret.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (*connectivity.Result, error) {
	requestID := "req-" + uuid.NewString()

	req := RequestMessage{
		RequestID: requestID,
		Command:   name,
		Args:      args,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("executor: encoding request: %w", err)
	}

	ch := make(chan ResponseMessage, 1)
	e.mu.Lock()
	e.pending[requestID] = ch
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.pending, requestID)
		e.mu.Unlock()
	}()

	topic := e.topics.BackendRequest(e.backend, requestID)
	if err := e.transport.Publish(topic, payload, e.qos, false); err != nil {
		return nil, fmt.Errorf("%w: publishing %s: %w", connectivity.ErrBackendUnavailable, name, err)
	}

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		return &connectivity.Result{
			Success: resp.Success,
			Data:    resp.Data,
			Error:   resp.Error,
		}, nil
	case <-timer.C:
		e.warn("backend request timed out", "backend", e.backend, "command", name, "request_id", requestID)
		return nil, fmt.Errorf("%w: %s timed out after %v", connectivity.ErrBackendUnavailable, name, e.timeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %w", connectivity.ErrBackendUnavailable, name, ctx.Err())
	}
}

// handleResponse routes a backend response to the waiting Execute call.
// Responses with no matching pending request are dropped; they belong to
// a request that already timed out.
func (e *Executor) handleResponse(topic string, payload []byte) error {
	var resp ResponseMessage
	if err := json.Unmarshal(payload, &resp); err != nil {
		e.warn("malformed backend response", "topic", topic, "error", err)
		return nil
	}

	requestID := resp.RequestID
	if requestID == "" {
		// Fall back to the topic's trailing segment.
		if idx := strings.LastIndex(topic, "/"); idx >= 0 {
			requestID = topic[idx+1:]
		}
	}

	e.mu.Lock()
	ch, ok := e.pending[requestID]
	e.mu.Unlock()

	if !ok {
		e.debug("response for unknown request", "request_id", requestID)
		return nil
	}

	select {
	case ch <- resp:
	default:
	}
	return nil
}

func (e *Executor) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

func (e *Executor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
