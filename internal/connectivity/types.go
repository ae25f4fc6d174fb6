package connectivity

import "time"

// Kind identifies the device universe a record belongs to.
type Kind string

// Device universes. Instruments and Bluetooth devices are managed by
// independent coordinators; a Bluetooth device may be "available"
// (visible in a scan) without being "paired".
const (
	KindInstrument         Kind = "instrument"
	KindBluetoothAvailable Kind = "bluetooth_available"
	KindBluetoothPaired    Kind = "bluetooth_paired"
)

// Device represents an external peripheral known to the hub.
//
// The identifier is unique within a universe and immutable for the
// record's lifetime. Meta carries opaque transport metadata reported by
// the backend (address, signal strength, port name); it is passed
// through unmodified and never interpreted here.
type Device struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category,omitempty"`
	Connected bool           `json:"connected"`
	Kind      Kind           `json:"kind,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// DeepCopy creates a complete independent copy of the Device.
// The Meta map is cloned so modifications to the copy do not affect
// the original. This is essential for cache isolation.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d
	cpy.Meta = deepCopyMap(d.Meta)
	return &cpy
}

// deepCopyMap creates a deep copy of a map[string]any.
// Nested maps and slices are recursively copied.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, float64, etc.) copy by value.
		return v
	}
}

// Counters are derived from registry contents on every read. They are
// never stored independently, so they cannot drift from the records.
type Counters struct {
	Total     int `json:"total"`
	Connected int `json:"connected"`
}

// Snapshot is a read-only view of a universe's registry, in the order
// the backend reported the devices.
type Snapshot struct {
	Devices  []Device  `json:"devices"`
	Counters Counters  `json:"counters"`
	LastScan time.Time `json:"last_scan,omitzero"`
}
