// Package connectivity coordinates the lifecycle of external
// peripherals for MeloHub Core: MIDI/audio instruments and Bluetooth
// devices that presentation layers can discover, connect to, and
// disconnect from.
//
// # Architecture
//
//	┌────────────────────────────────────────────────────────────┐
//	│                       Coordinator                           │
//	│   (one instance per universe, configured by Universe)       │
//	│                                                             │
//	│  Scan ── single-flight guard ──▶ Executor.Execute           │
//	│  Connect/Disconnect ──▶ Executor ──▶ Registry mutation      │
//	│  Pair/Forget ──▶ Executor ──▶ RefreshPaired (authoritative) │
//	│          │                                                  │
//	│          └──▶ Emitter ──▶ Bus (lifecycle events)            │
//	└────────────────────────────────────────────────────────────┘
//
// The Registry is the authoritative local cache: ordered, keyed by
// identifier, replaced wholesale on every successful scan
// (last-writer-wins, no delta reconciliation). External holders only
// ever receive deep copies. Derived counters are recomputed from the
// registry on every read and are therefore always consistent with it.
//
// The Executor and Bus collaborators are narrow interfaces: the
// production implementations live in internal/executor and
// internal/infrastructure/mqtt, and tests substitute recording stubs.
//
// # Ordering
//
// Lifecycle events are published strictly after the corresponding
// registry mutation, so observers reading a snapshot inside an event
// handler always see post-mutation state. Scan events for one universe
// are totally ordered by the single-flight guard. Operations on
// different identifiers are independent; interleaved operations on the
// same identifier resolve in backend order.
package connectivity
