package connectivity

import (
	"context"
	"errors"
	"sync"
	"time"
)

// AliasSource supplies user-assigned display-name overrides applied to
// scan results. Implemented by the profile store; optional.
type AliasSource interface {
	Aliases(ctx context.Context) (map[string]string, error)
}

// Coordinator owns the device lifecycle for one universe: it serializes
// discovery, keeps the registry consistent with asynchronous backend
// operations, and emits lifecycle events so observers can react without
// polling.
//
// One Coordinator instance exists per universe (instruments, Bluetooth);
// all behavioural differences live in the Universe configuration.
//
// All public methods are thread-safe. Operations on different device
// identifiers are independent and may run concurrently; cache mutations
// are serialized by the registry, and the outcome of interleaved
// operations on the same identifier follows backend resolution order.
type Coordinator struct {
	universe Universe
	registry *Registry
	paired   *Registry // non-nil only when the universe supports pairing
	exec     Executor
	emitter  *Emitter
	aliases  AliasSource
	logger   Logger

	// Single-flight scan guard. Exactly one scan session per universe.
	scanMu   sync.Mutex
	scanning bool
	lastScan time.Time
}

// Options configures optional coordinator collaborators.
type Options struct {
	// Aliases overlays persisted display-name overrides onto scan
	// results. May be nil.
	Aliases AliasSource

	// Logger receives operational logging. May be nil.
	Logger Logger
}

// NewCoordinator creates a coordinator for the given universe.
//
// The executor may be nil; every operation then fails with
// ErrBackendUnavailable until SetExecutor is called. The bus may be nil;
// lifecycle events are then dropped.
func NewCoordinator(universe Universe, exec Executor, bus Bus, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	c := &Coordinator{
		universe: universe,
		registry: NewRegistry(),
		exec:     exec,
		emitter:  NewEmitter(bus, universe, logger),
		aliases:  opts.Aliases,
		logger:   logger,
	}
	if universe.SupportsPairing() {
		c.paired = NewRegistry()
	}
	return c
}

// SetExecutor replaces the command executor. In-flight operations keep
// the executor they started with.
func (c *Coordinator) SetExecutor(exec Executor) {
	c.scanMu.Lock()
	c.exec = exec
	c.scanMu.Unlock()
}

// Universe returns the coordinator's universe configuration.
func (c *Coordinator) Universe() Universe {
	return c.universe
}

// Snapshot returns a read-only copy of the universe's registry.
func (c *Coordinator) Snapshot() Snapshot {
	c.scanMu.Lock()
	last := c.lastScan
	c.scanMu.Unlock()

	return Snapshot{
		Devices:  c.registry.All(),
		Counters: c.registry.Counters(),
		LastScan: last,
	}
}

// Get returns a copy of one cached record.
func (c *Coordinator) Get(id string) (*Device, bool) {
	return c.registry.Get(id)
}

// Counters returns the derived counters for the universe.
func (c *Coordinator) Counters() Counters {
	return c.registry.Counters()
}

// Paired returns copies of the paired-device list, or nil when the
// universe does not support pairing.
func (c *Coordinator) Paired() []Device {
	if c.paired == nil {
		return nil
	}
	return c.paired.All()
}

// Connect issues the remote connect command for the identifier and, on
// success, sets the cached record's connection flag.
//
// The command is issued even when the identifier is absent from the
// cache — the cache is a read optimization, not an authorization gate.
// A cache miss skips the mutation but the operation still succeeds and
// the connected event still fires (with a null record).
func (c *Coordinator) Connect(ctx context.Context, id string) error {
	return c.setConnection(ctx, id, true)
}

// Disconnect issues the remote disconnect command and, on success,
// clears the cached record's connection flag. Disconnecting an
// already-disconnected device is harmless; the derived connected count
// can never go below zero.
func (c *Coordinator) Disconnect(ctx context.Context, id string) error {
	return c.setConnection(ctx, id, false)
}

func (c *Coordinator) setConnection(ctx context.Context, id string, connected bool) error {
	command := c.universe.Commands.Connect
	if !connected {
		command = c.universe.Commands.Disconnect
	}

	if err := c.execute(ctx, command, map[string]any{"device_id": id}); err != nil {
		c.logger.Warn("connection command failed",
			"universe", c.universe.Name,
			"command", command,
			"device_id", id,
			"error", err,
		)
		c.emitter.ConnectFailed(id, err)
		return err
	}

	// Optimistic cache mutation. ErrNotFound is recovered locally: the
	// remote state is authoritative and the overall operation succeeded.
	if err := c.registry.Upsert(id, func(d *Device) { d.Connected = connected }); err != nil {
		c.logger.Debug("connection state not cached",
			"universe", c.universe.Name,
			"device_id", id,
		)
	}

	record, _ := c.registry.Get(id)
	if connected {
		c.emitter.Connected(id, record)
	} else {
		c.emitter.Disconnected(id, record)
	}
	return nil
}

// Pair issues the remote pair command. The cache is not mutated
// directly: the backend is the source of truth for pairing state, so a
// successful pair triggers a refresh of the paired-device list instead
// of a locally-guessed transition.
func (c *Coordinator) Pair(ctx context.Context, id string) error {
	if c.universe.Commands.Pair == "" {
		return ErrUnsupported
	}

	if err := c.execute(ctx, c.universe.Commands.Pair, map[string]any{"device_id": id}); err != nil {
		c.logger.Warn("pair command failed",
			"universe", c.universe.Name,
			"device_id", id,
			"error", err,
		)
		c.emitter.PairFailed(id, err)
		return err
	}

	if err := c.RefreshPaired(ctx); err != nil {
		c.logger.Warn("paired list refresh after pair failed",
			"universe", c.universe.Name,
			"error", err,
		)
	}
	c.emitter.Paired(id)
	return nil
}

// Forget issues the remote forget command and refreshes the paired list
// from the backend. Repeating a forget after the device is already gone
// is not an error, given the backend tolerates the repeat.
func (c *Coordinator) Forget(ctx context.Context, id string) error {
	if c.universe.Commands.Forget == "" {
		return ErrUnsupported
	}

	if err := c.execute(ctx, c.universe.Commands.Forget, map[string]any{"device_id": id}); err != nil {
		c.logger.Warn("forget command failed",
			"universe", c.universe.Name,
			"device_id", id,
			"error", err,
		)
		c.emitter.PairFailed(id, err)
		return err
	}

	if err := c.RefreshPaired(ctx); err != nil {
		c.logger.Warn("paired list refresh after forget failed",
			"universe", c.universe.Name,
			"error", err,
		)
	}
	c.emitter.Forgotten(id)
	return nil
}

// RefreshPaired replaces the paired-device list with the backend's
// authoritative view and publishes the paired-list event.
func (c *Coordinator) RefreshPaired(ctx context.Context) error {
	if !c.universe.SupportsPairing() {
		return ErrUnsupported
	}

	exec := c.executor()
	if exec == nil {
		return ErrBackendUnavailable
	}

	res, err := exec.Execute(ctx, c.universe.Commands.ListPaired, map[string]any{})
	if err := remoteError(c.universe.Commands.ListPaired, res, err); err != nil {
		return err
	}

	devices, err := c.decodeDevices(ctx, res.Data, KindBluetoothPaired)
	if err != nil {
		return err
	}
	if err := c.paired.ReplaceAll(devices); err != nil {
		return err
	}
	c.emitter.PairedList(c.paired.All())
	return nil
}

// execute runs a remote command, folding transport faults and
// backend-reported failures into a single error shape.
func (c *Coordinator) execute(ctx context.Context, command string, args map[string]any) error {
	exec := c.executor()
	if exec == nil {
		return ErrBackendUnavailable
	}
	res, err := exec.Execute(ctx, command, args)
	return remoteError(command, res, err)
}

func (c *Coordinator) executor() Executor {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	return c.exec
}

// remoteError normalizes an executor outcome. Transport faults keep
// their ErrBackendUnavailable identity; everything else the executor
// reports, and any success=false result, becomes a RemoteError.
func remoteError(command string, res *Result, err error) error {
	if err != nil {
		if errors.Is(err, ErrBackendUnavailable) {
			return err
		}
		return &RemoteError{Command: command, Message: err.Error()}
	}
	if res == nil || !res.Success {
		msg := "unknown error"
		if res != nil && res.Error != "" {
			msg = res.Error
		}
		return &RemoteError{Command: command, Message: msg}
	}
	return nil
}
