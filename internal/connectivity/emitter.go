package connectivity

// Emitter translates coordinator outcomes into canonical bus
// publications. It holds no business logic: each outcome maps to
// exactly one topic with one payload shape.
//
// Publish failures are logged and absorbed — lifecycle events follow
// state, they do not gate it. Observers reading the registry inside an
// event handler always see post-mutation state because every emit
// happens strictly after the corresponding mutation.
type Emitter struct {
	bus    Bus
	topics TopicSet
	keys   PayloadKeys
	logger Logger
}

// NewEmitter creates an emitter for one universe's topic set.
// A nil bus is allowed; every emit becomes a no-op.
func NewEmitter(bus Bus, universe Universe, logger Logger) *Emitter {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Emitter{
		bus:    bus,
		topics: universe.Topics,
		keys:   universe.Payload,
		logger: logger,
	}
}

func (e *Emitter) publish(topic string, payload map[string]any) {
	if e.bus == nil || topic == "" {
		return
	}
	if err := e.bus.Publish(topic, payload); err != nil {
		e.logger.Warn("lifecycle event publish failed", "topic", topic, "error", err)
	}
}

// ScanStarted announces that a discovery operation has begun, before
// the remote call is issued, so observers can show progress immediately.
func (e *Emitter) ScanStarted() {
	e.publish(e.topics.ScanStarted, map[string]any{})
}

// ScanComplete carries the full replacement device list and the derived
// counters.
func (e *Emitter) ScanComplete(devices []Device, counters Counters) {
	e.publish(e.topics.ScanComplete, map[string]any{
		e.keys.List: devices,
		"total":     counters.Total,
		"connected": counters.Connected,
	})
}

// ScanError carries the backend's error message.
func (e *Emitter) ScanError(err error) {
	e.publish(e.topics.ScanError, map[string]any{
		"error": err.Error(),
	})
}

// Connected announces a successful connect. The record is nil when the
// device was absent from the cache (the remote command still ran).
func (e *Emitter) Connected(id string, record *Device) {
	e.publish(e.topics.Connected, e.recordPayload(id, record))
}

// Disconnected announces a successful disconnect.
func (e *Emitter) Disconnected(id string, record *Device) {
	e.publish(e.topics.Disconnected, e.recordPayload(id, record))
}

// ConnectFailed announces a failed connect or disconnect.
func (e *Emitter) ConnectFailed(id string, err error) {
	e.publish(e.topics.ConnectFailed, map[string]any{
		e.keys.ID: id,
		"error":   err.Error(),
	})
}

// Paired announces a backend-confirmed pairing.
func (e *Emitter) Paired(id string) {
	e.publish(e.topics.Paired, map[string]any{e.keys.ID: id})
}

// PairFailed announces a failed pairing attempt.
func (e *Emitter) PairFailed(id string, err error) {
	e.publish(e.topics.PairFailed, map[string]any{
		e.keys.ID: id,
		"error":   err.Error(),
	})
}

// Forgotten announces a backend-confirmed forget.
func (e *Emitter) Forgotten(id string) {
	e.publish(e.topics.Forgotten, map[string]any{e.keys.ID: id})
}

// PairedList carries the authoritative paired-device list after a
// refresh from the backend.
func (e *Emitter) PairedList(devices []Device) {
	e.publish(e.topics.PairedList, map[string]any{
		e.keys.List: devices,
	})
}

func (e *Emitter) recordPayload(id string, record *Device) map[string]any {
	payload := map[string]any{e.keys.ID: id}
	if record != nil {
		payload[e.keys.Record] = record
	} else {
		// The cache is a read optimization; an unknown identifier still
		// produces the event, with an explicit null record.
		payload[e.keys.Record] = nil
	}
	return payload
}
