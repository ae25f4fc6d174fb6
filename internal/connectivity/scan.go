package connectivity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Scan runs a discovery operation for the universe and replaces the
// registry wholesale with the result.
//
// Single-flight policy: at most one scan is outstanding per universe.
// A call made while a scan is already in progress is a guarded no-op
// that returns the current snapshot synchronously and issues no second
// remote call. Success and failure both return the universe to idle;
// the guard is released on every exit path, so one failed call can
// never leave the universe stuck in a scanning state.
//
// On success the returned list is the new registry contents, stale
// entries from the previous scan are discarded, and a scan-complete
// event carrying the list and derived counters is published. On failure
// the registry is left unchanged, a scan-error event is published, and
// the failure propagates to the caller.
func (c *Coordinator) Scan(ctx context.Context) ([]Device, error) {
	c.scanMu.Lock()
	exec := c.exec
	if exec == nil {
		c.scanMu.Unlock()
		return nil, ErrBackendUnavailable
	}
	if c.scanning {
		c.scanMu.Unlock()
		c.logger.Debug("scan already in progress, returning snapshot",
			"universe", c.universe.Name,
		)
		return c.registry.All(), nil
	}
	c.scanning = true
	c.scanMu.Unlock()

	defer func() {
		c.scanMu.Lock()
		c.scanning = false
		c.scanMu.Unlock()
	}()

	c.emitter.ScanStarted()
	started := time.Now()

	res, err := exec.Execute(ctx, c.universe.Commands.List, map[string]any{})
	if rerr := remoteError(c.universe.Commands.List, res, err); rerr != nil {
		c.logger.Warn("scan failed",
			"universe", c.universe.Name,
			"error", rerr,
		)
		c.emitter.ScanError(rerr)
		return nil, rerr
	}

	devices, err := c.decodeDevices(ctx, res.Data, c.universe.Kind)
	if err != nil {
		c.logger.Warn("scan result rejected",
			"universe", c.universe.Name,
			"error", err,
		)
		c.emitter.ScanError(err)
		return nil, err
	}

	if err := c.registry.ReplaceAll(devices); err != nil {
		c.emitter.ScanError(err)
		return nil, err
	}

	c.scanMu.Lock()
	c.lastScan = time.Now().UTC()
	c.scanMu.Unlock()

	all := c.registry.All()
	counters := c.registry.Counters()
	c.logger.Info("scan complete",
		"universe", c.universe.Name,
		"total", counters.Total,
		"connected", counters.Connected,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	c.emitter.ScanComplete(all, counters)
	return all, nil
}

// Scanning reports whether a scan is currently in flight.
func (c *Coordinator) Scanning() bool {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	return c.scanning
}

// LastScan returns the completion time of the most recent successful
// scan, or the zero time if none has completed.
func (c *Coordinator) LastScan() time.Time {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	return c.lastScan
}

// decodeDevices extracts the device list from a backend payload and
// applies the alias overlay. The list sits under the universe's list
// key ("instruments" or "devices"); a missing key is an empty result,
// not an error.
func (c *Coordinator) decodeDevices(ctx context.Context, data map[string]any, kind Kind) ([]Device, error) {
	raw, ok := data[c.universe.Payload.List]
	if !ok || raw == nil {
		return []Device{}, nil
	}

	// Round-trip through JSON: the executor delivers generic maps and
	// the wire format already is JSON.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding device list: %w", err)
	}
	var devices []Device
	if err := json.Unmarshal(encoded, &devices); err != nil {
		return nil, fmt.Errorf("decoding device list: %w", err)
	}

	for i := range devices {
		devices[i].Kind = kind
	}

	c.applyAliases(ctx, devices)
	return devices, nil
}

// applyAliases overlays persisted display-name overrides. Overlay
// failures are logged and ignored — the scan result stands on its own.
func (c *Coordinator) applyAliases(ctx context.Context, devices []Device) {
	if c.aliases == nil || len(devices) == 0 {
		return
	}
	aliases, err := c.aliases.Aliases(ctx)
	if err != nil {
		c.logger.Warn("alias overlay unavailable",
			"universe", c.universe.Name,
			"error", err,
		)
		return
	}
	for i := range devices {
		if alias, ok := aliases[devices[i].ID]; ok && alias != "" {
			devices[i].Name = alias
		}
	}
}
