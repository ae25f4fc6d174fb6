package connectivity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// stubExecutor is a scripted Executor. Each command name maps to a
// response; unmapped commands succeed with an empty payload. Calls are
// recorded for assertion, and an optional gate blocks resolution so
// tests can observe in-flight behaviour.
type stubExecutor struct {
	mu        sync.Mutex
	responses map[string]*Result
	errs      map[string]error
	calls     []string
	gate      chan struct{} // when non-nil, Execute blocks until closed
}

func newStubExecutor() *stubExecutor {
	return &stubExecutor{
		responses: make(map[string]*Result),
		errs:      make(map[string]error),
	}
}

func (s *stubExecutor) respond(command string, res *Result) {
	s.mu.Lock()
	s.responses[command] = res
	s.mu.Unlock()
}

func (s *stubExecutor) fail(command string, err error) {
	s.mu.Lock()
	s.errs[command] = err
	s.mu.Unlock()
}

func (s *stubExecutor) Execute(_ context.Context, name string, _ map[string]any) (*Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	gate := s.gate
	res, hasRes := s.responses[name]
	err := s.errs[name]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if hasRes {
		return res, nil
	}
	return &Result{Success: true, Data: map[string]any{}}, nil
}

func (s *stubExecutor) callCount(command string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == command {
			n++
		}
	}
	return n
}

// recordingBus captures publications and subscriptions in memory.
type recordingBus struct {
	mu       sync.Mutex
	events   []busEvent
	handlers map[string]func(string, []byte) error
}

type busEvent struct {
	topic   string
	payload map[string]any
}

func newRecordingBus() *recordingBus {
	return &recordingBus{handlers: make(map[string]func(string, []byte) error)}
}

func (b *recordingBus) Publish(topic string, payload any) error {
	m, _ := payload.(map[string]any)
	b.mu.Lock()
	b.events = append(b.events, busEvent{topic: topic, payload: m})
	b.mu.Unlock()
	return nil
}

func (b *recordingBus) Subscribe(topic string, handler func(string, []byte) error) error {
	b.mu.Lock()
	b.handlers[topic] = handler
	b.mu.Unlock()
	return nil
}

func (b *recordingBus) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	topics := make([]string, len(b.events))
	for i, e := range b.events {
		topics[i] = e.topic
	}
	return topics
}

func (b *recordingBus) last(topic string) (map[string]any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].topic == topic {
			return b.events[i].payload, true
		}
	}
	return nil, false
}

func instrumentListResult(devices ...map[string]any) *Result {
	list := make([]any, len(devices))
	for i, d := range devices {
		list[i] = d
	}
	return &Result{Success: true, Data: map[string]any{"instruments": list}}
}

// TestScan_TwoInstruments: a scan returning two instruments (one
// connected) populates the registry and publishes scan-complete with
// the derived counters.
func TestScan_TwoInstruments(t *testing.T) {
	exec := newStubExecutor()
	exec.respond("list_devices", instrumentListResult(
		map[string]any{"id": "A", "name": "Grand Piano", "connected": true},
		map[string]any{"id": "B", "name": "Synth", "connected": false},
	))
	bus := newRecordingBus()
	c := NewCoordinator(Instruments(), exec, bus, Options{})

	devices, err := c.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("Scan() returned %d devices, want 2", len(devices))
	}
	if got := c.Counters(); got.Total != 2 || got.Connected != 1 {
		t.Errorf("Counters() = %+v, want Total=2 Connected=1", got)
	}
	if c.LastScan().IsZero() {
		t.Error("LastScan() not stamped after successful scan")
	}

	payload, ok := bus.last("instruments:scan:complete")
	if !ok {
		t.Fatal("scan:complete event not published")
	}
	if payload["total"] != 2 || payload["connected"] != 1 {
		t.Errorf("scan:complete payload = %v, want total:2 connected:1", payload)
	}

	// Started before complete, in order.
	topics := bus.topics()
	if len(topics) != 2 || topics[0] != "instruments:scan:started" || topics[1] != "instruments:scan:complete" {
		t.Errorf("event order = %v", topics)
	}
}

// TestConnect_UpdatesCacheAndCounter: a successful connect flips the
// cached record to connected and bumps the connected counter.
func TestConnect_UpdatesCacheAndCounter(t *testing.T) {
	exec := newStubExecutor()
	exec.respond("list_devices", instrumentListResult(
		map[string]any{"id": "A", "name": "Grand Piano", "connected": true},
		map[string]any{"id": "B", "name": "Synth", "connected": false},
	))
	bus := newRecordingBus()
	c := NewCoordinator(Instruments(), exec, bus, Options{})
	if _, err := c.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if err := c.Connect(context.Background(), "B"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	got, ok := c.Get("B")
	if !ok || !got.Connected {
		t.Errorf("record B connected = %v, want true", got)
	}
	if counters := c.Counters(); counters.Connected != 2 {
		t.Errorf("Counters().Connected = %d, want 2", counters.Connected)
	}

	payload, ok := bus.last("instruments:connected")
	if !ok {
		t.Fatal("connected event not published")
	}
	if payload["instrumentId"] != "B" {
		t.Errorf("connected payload id = %v, want B", payload["instrumentId"])
	}
	record, ok := payload["instrument"].(*Device)
	if !ok || record == nil || !record.Connected {
		t.Errorf("connected payload record = %v, want post-mutation copy", payload["instrument"])
	}
}

// TestScan_SingleFlight: a second scan while the first is pending
// returns the pre-scan snapshot synchronously and issues no second
// remote call.
func TestScan_SingleFlight(t *testing.T) {
	exec := newStubExecutor()
	exec.gate = make(chan struct{})
	exec.respond("list_devices", instrumentListResult(
		map[string]any{"id": "A", "name": "Grand Piano"},
	))
	bus := newRecordingBus()
	c := NewCoordinator(Instruments(), exec, bus, Options{})

	firstDone := make(chan error, 1)
	go func() {
		_, err := c.Scan(context.Background())
		firstDone <- err
	}()

	// Wait until the first scan is inside the executor.
	deadline := time.After(2 * time.Second)
	for exec.callCount("list_devices") == 0 {
		select {
		case <-deadline:
			t.Fatal("first scan never reached the executor")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	snapshot, err := c.Scan(context.Background())
	if err != nil {
		t.Fatalf("guarded Scan() error = %v", err)
	}
	if len(snapshot) != 0 {
		t.Errorf("guarded Scan() returned %d devices, want pre-scan snapshot of 0", len(snapshot))
	}
	if got := exec.callCount("list_devices"); got != 1 {
		t.Errorf("remote list calls = %d, want 1", got)
	}

	close(exec.gate)
	if err := <-firstDone; err != nil {
		t.Fatalf("first Scan() error = %v", err)
	}
	if got := c.Counters().Total; got != 1 {
		t.Errorf("Counters().Total after resolve = %d, want 1", got)
	}

	// The universe returned to idle; a fresh scan runs again.
	exec.gate = nil
	if _, err := c.Scan(context.Background()); err != nil {
		t.Fatalf("post-resolve Scan() error = %v", err)
	}
	if got := exec.callCount("list_devices"); got != 2 {
		t.Errorf("remote list calls = %d, want 2", got)
	}
}

// TestConnect_UnknownDevice: the remote command is still issued for an
// identifier absent from the cache, no registry entry is created, and
// the success event fires with a null record.
func TestConnect_UnknownDevice(t *testing.T) {
	exec := newStubExecutor()
	bus := newRecordingBus()
	c := NewCoordinator(Instruments(), exec, bus, Options{})

	if err := c.Connect(context.Background(), "X"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if got := exec.callCount("connect_device"); got != 1 {
		t.Errorf("remote connect calls = %d, want 1", got)
	}
	if _, ok := c.Get("X"); ok {
		t.Error("registry entry created for unknown device")
	}

	payload, ok := bus.last("instruments:connected")
	if !ok {
		t.Fatal("connected event not published")
	}
	if payload["instrumentId"] != "X" {
		t.Errorf("connected payload id = %v, want X", payload["instrumentId"])
	}
	record, present := payload["instrument"]
	if !present {
		t.Error("instrument key absent from connected payload")
	} else if record != nil {
		t.Errorf("connected payload record = %v, want null", record)
	}
}

// TestScan_RemoteFailure: a failed scan leaves the registry unchanged,
// publishes scan:error with the backend message, and rejects with that
// message.
func TestScan_RemoteFailure(t *testing.T) {
	exec := newStubExecutor()
	exec.respond("list_devices", instrumentListResult(
		map[string]any{"id": "A", "name": "Grand Piano"},
	))
	bus := newRecordingBus()
	c := NewCoordinator(Instruments(), exec, bus, Options{})
	if _, err := c.Scan(context.Background()); err != nil {
		t.Fatalf("seeding Scan() error = %v", err)
	}

	exec.respond("list_devices", &Result{Success: false, Error: "timeout"})

	_, err := c.Scan(context.Background())
	if err == nil {
		t.Fatal("Scan() succeeded, want failure")
	}
	if !errors.Is(err, ErrRemoteFailure) {
		t.Errorf("error = %v, want ErrRemoteFailure", err)
	}
	if err.Error() != "timeout" {
		t.Errorf("error message = %q, want backend message %q", err.Error(), "timeout")
	}

	if got := c.Counters().Total; got != 1 {
		t.Errorf("registry changed by failed scan: Total = %d, want 1", got)
	}

	payload, ok := bus.last("instruments:scan:error")
	if !ok {
		t.Fatal("scan:error event not published")
	}
	if payload["error"] != "timeout" {
		t.Errorf("scan:error payload = %v, want error:timeout", payload)
	}

	// The guard released: the universe is not stuck in scanning.
	if c.Scanning() {
		t.Error("coordinator stuck in scanning state after failure")
	}
	if _, err := c.Scan(context.Background()); err == nil {
		t.Error("expected repeat failure, executor still scripted to fail")
	}
}

func TestScan_BackendUnavailable(t *testing.T) {
	bus := newRecordingBus()
	c := NewCoordinator(Instruments(), nil, bus, Options{})

	_, err := c.Scan(context.Background())
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("Scan() error = %v, want ErrBackendUnavailable", err)
	}
	// Failing the precondition never enters scanning and emits nothing.
	if len(bus.topics()) != 0 {
		t.Errorf("events published without executor: %v", bus.topics())
	}
	if c.Scanning() {
		t.Error("scanning flag set without executor")
	}

	if err := c.Connect(context.Background(), "A"); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("Connect() error = %v, want ErrBackendUnavailable", err)
	}
}

func TestDisconnect_CounterNeverNegative(t *testing.T) {
	exec := newStubExecutor()
	exec.respond("list_devices", instrumentListResult(
		map[string]any{"id": "A", "name": "Grand Piano", "connected": false},
	))
	bus := newRecordingBus()
	c := NewCoordinator(Instruments(), exec, bus, Options{})
	if _, err := c.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	// Repeated disconnects of an already-disconnected device.
	for i := 0; i < 3; i++ {
		if err := c.Disconnect(context.Background(), "A"); err != nil {
			t.Fatalf("Disconnect() #%d error = %v", i+1, err)
		}
		if got := c.Counters().Connected; got < 0 {
			t.Fatalf("Counters().Connected = %d, went negative", got)
		}
	}
	if got := c.Counters().Connected; got != 0 {
		t.Errorf("Counters().Connected = %d, want 0", got)
	}
}

func TestConnect_RemoteFailureDoesNotMutate(t *testing.T) {
	exec := newStubExecutor()
	exec.respond("list_devices", instrumentListResult(
		map[string]any{"id": "A", "name": "Grand Piano", "connected": false},
	))
	bus := newRecordingBus()
	c := NewCoordinator(Instruments(), exec, bus, Options{})
	if _, err := c.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	exec.respond("connect_device", &Result{Success: false, Error: "device busy"})

	err := c.Connect(context.Background(), "A")
	if !errors.Is(err, ErrRemoteFailure) {
		t.Fatalf("Connect() error = %v, want ErrRemoteFailure", err)
	}

	got, _ := c.Get("A")
	if got.Connected {
		t.Error("cache mutated despite remote failure")
	}
	payload, ok := bus.last("instruments:connect_failed")
	if !ok {
		t.Fatal("connect_failed event not published")
	}
	if payload["error"] != "device busy" {
		t.Errorf("connect_failed payload = %v", payload)
	}
	if _, ok := bus.last("instruments:connected"); ok {
		t.Error("connected event published for failed operation")
	}
}

func TestPair_RefreshesAuthoritativeList(t *testing.T) {
	exec := newStubExecutor()
	exec.respond("paired_devices", &Result{Success: true, Data: map[string]any{
		"devices": []any{
			map[string]any{"id": "bt-1", "name": "Buds", "connected": false},
		},
	}})
	bus := newRecordingBus()
	c := NewCoordinator(Bluetooth(), exec, bus, Options{})

	if err := c.Pair(context.Background(), "bt-1"); err != nil {
		t.Fatalf("Pair() error = %v", err)
	}

	if got := exec.callCount("pair"); got != 1 {
		t.Errorf("pair calls = %d, want 1", got)
	}
	// Pairing state is never guessed locally: the paired list is
	// re-fetched from the backend.
	if got := exec.callCount("paired_devices"); got != 1 {
		t.Errorf("paired_devices calls = %d, want 1", got)
	}

	paired := c.Paired()
	if len(paired) != 1 || paired[0].ID != "bt-1" {
		t.Errorf("Paired() = %v, want [bt-1]", paired)
	}
	if paired[0].Kind != KindBluetoothPaired {
		t.Errorf("paired record kind = %q, want %q", paired[0].Kind, KindBluetoothPaired)
	}

	if _, ok := bus.last("bluetooth:paired_list"); !ok {
		t.Error("paired_list event not published")
	}
	if payload, ok := bus.last("bluetooth:paired"); !ok || payload["device_id"] != "bt-1" {
		t.Errorf("paired event payload = %v", payload)
	}
}

func TestForget_Idempotent(t *testing.T) {
	exec := newStubExecutor()
	// Backend tolerates repeated forgets; the paired list is empty after
	// the first one.
	exec.respond("paired_devices", &Result{Success: true, Data: map[string]any{
		"devices": []any{},
	}})
	bus := newRecordingBus()
	c := NewCoordinator(Bluetooth(), exec, bus, Options{})

	if err := c.Forget(context.Background(), "bt-1"); err != nil {
		t.Fatalf("first Forget() error = %v", err)
	}
	if err := c.Forget(context.Background(), "bt-1"); err != nil {
		t.Fatalf("second Forget() error = %v", err)
	}

	if got := len(c.Paired()); got != 0 {
		t.Errorf("Paired() length = %d, want 0", got)
	}
	if got := exec.callCount("forget"); got != 2 {
		t.Errorf("forget calls = %d, want 2", got)
	}
}

func TestPairForget_UnsupportedUniverse(t *testing.T) {
	c := NewCoordinator(Instruments(), newStubExecutor(), newRecordingBus(), Options{})

	if err := c.Pair(context.Background(), "A"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Pair() error = %v, want ErrUnsupported", err)
	}
	if err := c.Forget(context.Background(), "A"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Forget() error = %v, want ErrUnsupported", err)
	}
	if c.Paired() != nil {
		t.Error("Paired() non-nil for universe without pairing")
	}
}

// staticAliases is a fixed AliasSource for overlay tests.
type staticAliases map[string]string

func (a staticAliases) Aliases(context.Context) (map[string]string, error) {
	return a, nil
}

func TestScan_AliasOverlay(t *testing.T) {
	exec := newStubExecutor()
	exec.respond("list_devices", instrumentListResult(
		map[string]any{"id": "A", "name": "USB MIDI Device 2"},
		map[string]any{"id": "B", "name": "Synth"},
	))
	c := NewCoordinator(Instruments(), exec, newRecordingBus(), Options{
		Aliases: staticAliases{"A": "Studio Keyboard"},
	})

	devices, err := c.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if devices[0].Name != "Studio Keyboard" {
		t.Errorf("aliased name = %q, want %q", devices[0].Name, "Studio Keyboard")
	}
	if devices[1].Name != "Synth" {
		t.Errorf("unaliased name = %q, want %q", devices[1].Name, "Synth")
	}
}

func TestScan_TransportFaultTreatedAsFailure(t *testing.T) {
	exec := newStubExecutor()
	exec.fail("list_devices", errors.New("broker unreachable"))
	bus := newRecordingBus()
	c := NewCoordinator(Instruments(), exec, bus, Options{})

	_, err := c.Scan(context.Background())
	if !errors.Is(err, ErrRemoteFailure) {
		t.Fatalf("Scan() error = %v, want ErrRemoteFailure", err)
	}
	if payload, ok := bus.last("instruments:scan:error"); !ok || payload["error"] != "broker unreachable" {
		t.Errorf("scan:error payload = %v", payload)
	}
}

// An executor timeout wraps ErrBackendUnavailable; that identity must
// survive normalization so callers can distinguish a dead backend from
// a backend that answered with a failure.
func TestExecutorUnavailable_KeepsIdentity(t *testing.T) {
	exec := newStubExecutor()
	exec.fail("connect_device", fmt.Errorf("request timed out: %w", ErrBackendUnavailable))
	c := NewCoordinator(Instruments(), exec, newRecordingBus(), Options{})

	err := c.Connect(context.Background(), "A")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("Connect() error = %v, want ErrBackendUnavailable", err)
	}
	if errors.Is(err, ErrRemoteFailure) {
		t.Error("transport fault also matched ErrRemoteFailure")
	}
}
