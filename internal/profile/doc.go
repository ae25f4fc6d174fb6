// Package profile persists per-device user configuration.
//
// A profile records the display alias overlaid on scan results and the
// auto-connect flag evaluated after startup scans. Profiles are configuration,
// not device state: the device cache is rebuilt from backend scans, while
// profiles survive restarts in SQLite.
//
// The repository's Aliases method satisfies the coordinator's alias source,
// so saved aliases show up on freshly scanned devices without any extra
// wiring.
package profile
