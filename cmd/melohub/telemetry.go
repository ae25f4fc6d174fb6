package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/melohub/melohub-core/internal/connectivity"
	"github.com/melohub/melohub-core/internal/infrastructure/influxdb"
	"github.com/melohub/melohub-core/internal/infrastructure/logging"
	"github.com/melohub/melohub-core/internal/infrastructure/mqtt"
)

// telemetryRelay mirrors lifecycle events from the bus into InfluxDB.
// It is a pure observer: it subscribes alongside everything else and
// never feeds back into the coordinators.
type telemetryRelay struct {
	influx *influxdb.Client
	log    *logging.Logger

	mu        sync.Mutex
	scanStart map[string]time.Time // universe name -> time of last scan:started
}

// bindTelemetry subscribes the relay to both universes' lifecycle topics.
func bindTelemetry(bus *mqtt.Bus, influx *influxdb.Client, instruments, bluetooth *connectivity.Coordinator, log *logging.Logger) error {
	relay := &telemetryRelay{
		influx:    influx,
		log:       log,
		scanStart: make(map[string]time.Time),
	}

	for _, coord := range []*connectivity.Coordinator{instruments, bluetooth} {
		if err := relay.bindUniverse(bus, coord.Universe()); err != nil {
			return err
		}
	}
	return nil
}

func (r *telemetryRelay) bindUniverse(bus *mqtt.Bus, u connectivity.Universe) error {
	name := u.Name
	idKey := u.Payload.ID

	bindings := []struct {
		topic   string
		handler func(topic string, payload []byte) error
	}{
		{u.Topics.ScanStarted, func(string, []byte) error {
			r.markScanStart(name)
			return nil
		}},
		{u.Topics.ScanComplete, func(_ string, payload []byte) error {
			fields := decodeFields(payload)
			total := intField(fields, "total")
			connected := intField(fields, "connected")
			r.influx.WriteScanMetric(name, r.scanDuration(name), total, true)
			r.influx.WriteCounterSnapshot(name, total, connected)
			return nil
		}},
		{u.Topics.ScanError, func(string, []byte) error {
			r.influx.WriteScanMetric(name, r.scanDuration(name), 0, false)
			return nil
		}},
		{u.Topics.Connected, r.operation(name, "connect", idKey, true)},
		{u.Topics.Disconnected, r.operation(name, "disconnect", idKey, true)},
		{u.Topics.ConnectFailed, r.operation(name, "connect", idKey, false)},
		{u.Topics.Paired, r.operation(name, "pair", idKey, true)},
		{u.Topics.PairFailed, r.operation(name, "pair", idKey, false)},
		{u.Topics.Forgotten, r.operation(name, "forget", idKey, true)},
	}

	for _, b := range bindings {
		if b.topic == "" {
			continue // universe does not emit this event
		}
		if err := bus.Subscribe(b.topic, b.handler); err != nil {
			return err
		}
	}

	r.log.Debug("telemetry bound", "universe", name)
	return nil
}

// operation builds a handler writing one device_operations point.
func (r *telemetryRelay) operation(universe, op, idKey string, success bool) func(string, []byte) error {
	return func(_ string, payload []byte) error {
		fields := decodeFields(payload)
		deviceID, _ := fields[idKey].(string)
		r.influx.WriteOperationMetric(universe, op, deviceID, success)
		return nil
	}
}

func (r *telemetryRelay) markScanStart(universe string) {
	r.mu.Lock()
	r.scanStart[universe] = time.Now()
	r.mu.Unlock()
}

// scanDuration returns elapsed time since the last scan:started for the
// universe, or zero when the start event was never observed (relay
// attached mid-scan).
func (r *telemetryRelay) scanDuration(universe string) time.Duration {
	r.mu.Lock()
	start, ok := r.scanStart[universe]
	delete(r.scanStart, universe)
	r.mu.Unlock()
	if !ok {
		return 0
	}
	return time.Since(start)
}

func decodeFields(payload []byte) map[string]any {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return map[string]any{}
	}
	return fields
}

func intField(fields map[string]any, key string) int {
	if v, ok := fields[key].(float64); ok {
		return int(v)
	}
	return 0
}
