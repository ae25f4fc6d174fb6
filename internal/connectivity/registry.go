package connectivity

import "sync"

// Logger defines the logging interface used by this package.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the authoritative in-memory cache of one device universe.
//
// It preserves backend-reported order (relevant for Bluetooth views,
// where ordering may convey signal strength or recency) while keying
// records by identifier for O(1) lookup.
//
// The registry is exclusively mutated by its owning coordinator;
// external readers receive deep copies only. All public methods are
// thread-safe.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Device
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]*Device),
	}
}

// ReplaceAll discards the current contents and inserts the given records
// wholesale, keeping their order. Stale entries from a previous scan are
// not merged.
//
// The replacement is built aside and swapped in atomically: if any
// record is invalid (empty or duplicate identifier) the registry keeps
// its previous consistent contents and the error is returned.
func (r *Registry) ReplaceAll(devices []Device) error {
	order := make([]string, 0, len(devices))
	byID := make(map[string]*Device, len(devices))

	for i := range devices {
		d := devices[i]
		if d.ID == "" {
			return ErrMissingID
		}
		if _, dup := byID[d.ID]; dup {
			return ErrDuplicateID
		}
		order = append(order, d.ID)
		byID[d.ID] = d.DeepCopy()
	}

	r.mu.Lock()
	r.order = order
	r.byID = byID
	r.mu.Unlock()
	return nil
}

// Get returns a deep copy of the record, or false if the identifier is
// unknown. Callers that mutate the copy must write back through Upsert.
func (r *Registry) Get(id string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return d.DeepCopy(), true
}

// Upsert applies a field-level mutation to an existing record.
// Returns ErrNotFound if the identifier is unknown.
//
// The mutation runs on a deep copy which is swapped in afterwards, so a
// concurrent reader never observes a half-applied update.
func (r *Registry) Upsert(id string, mutate func(*Device)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	updated := cur.DeepCopy()
	mutate(updated)
	updated.ID = id // the identifier is immutable
	r.byID[id] = updated
	return nil
}

// Remove deletes the record. Removing an absent identifier is not an
// error (idempotent).
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// All returns deep copies of every record in backend-reported order.
func (r *Registry) All() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]Device, 0, len(r.order))
	for _, id := range r.order {
		devices = append(devices, *r.byID[id].DeepCopy())
	}
	return devices
}

// Filter returns deep copies of the records matching the predicate,
// in backend-reported order.
func (r *Registry) Filter(pred func(*Device) bool) []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var devices []Device
	for _, id := range r.order {
		if d := r.byID[id]; pred(d) {
			devices = append(devices, *d.DeepCopy())
		}
	}
	return devices
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Counters recomputes the derived counts from the current contents.
// Because they are derived on every call, Connected always equals the
// number of records with the connection flag set, and repeated
// disconnects can never drive it below zero.
func (r *Registry) Counters() Counters {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := Counters{Total: len(r.byID)}
	for _, d := range r.byID {
		if d.Connected {
			c.Connected++
		}
	}
	return c
}
