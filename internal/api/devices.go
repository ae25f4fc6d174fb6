package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/melohub/melohub-core/internal/connectivity"
)

// coordinatorFor resolves the {universe} route parameter to a coordinator.
func (s *Server) coordinatorFor(universe string) (*connectivity.Coordinator, bool) {
	switch universe {
	case "instruments":
		return s.instruments, true
	case "bluetooth":
		return s.bluetooth, true
	default:
		return nil, false
	}
}

// handleSnapshot returns the current registry contents for a universe.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.coordinatorFor(chi.URLParam(r, "universe"))
	if !ok {
		writeNotFound(w, "unknown device universe")
		return
	}

	writeJSON(w, http.StatusOK, coord.Snapshot())
}

// handleGetDevice returns a single device from the universe registry.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.coordinatorFor(chi.URLParam(r, "universe"))
	if !ok {
		writeNotFound(w, "unknown device universe")
		return
	}

	id := chi.URLParam(r, "id")
	dev, found := coord.Get(id)
	if !found {
		writeNotFound(w, "device not found: "+id)
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// handleScan triggers a discovery scan for the universe.
//
// If a scan is already in progress the coordinator returns the current
// snapshot without issuing a second backend call, so repeated POSTs from
// an impatient UI are harmless.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.coordinatorFor(chi.URLParam(r, "universe"))
	if !ok {
		writeNotFound(w, "unknown device universe")
		return
	}

	devices, err := coord.Scan(r.Context())
	if err != nil {
		writeConnectivityError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleConnect requests a connection to a device.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.coordinatorFor(chi.URLParam(r, "universe"))
	if !ok {
		writeNotFound(w, "unknown device universe")
		return
	}

	id := chi.URLParam(r, "id")
	if err := coord.Connect(r.Context(), id); err != nil {
		writeConnectivityError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "connected",
		"device_id": id,
	})
}

// handleDisconnect requests a disconnection from a device.
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.coordinatorFor(chi.URLParam(r, "universe"))
	if !ok {
		writeNotFound(w, "unknown device universe")
		return
	}

	id := chi.URLParam(r, "id")
	if err := coord.Disconnect(r.Context(), id); err != nil {
		writeConnectivityError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "disconnected",
		"device_id": id,
	})
}

// handlePair requests pairing with a device. Only universes with pairing
// support accept this; others get a 400 via ErrUnsupported.
func (s *Server) handlePair(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.coordinatorFor(chi.URLParam(r, "universe"))
	if !ok {
		writeNotFound(w, "unknown device universe")
		return
	}

	id := chi.URLParam(r, "id")
	if err := coord.Pair(r.Context(), id); err != nil {
		writeConnectivityError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "paired",
		"device_id": id,
	})
}

// handleForget requests removal of a device pairing.
func (s *Server) handleForget(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.coordinatorFor(chi.URLParam(r, "universe"))
	if !ok {
		writeNotFound(w, "unknown device universe")
		return
	}

	id := chi.URLParam(r, "id")
	if err := coord.Forget(r.Context(), id); err != nil {
		writeConnectivityError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "forgotten",
		"device_id": id,
	})
}

// handlePairedList returns the paired-device registry for the universe.
func (s *Server) handlePairedList(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.coordinatorFor(chi.URLParam(r, "universe"))
	if !ok {
		writeNotFound(w, "unknown device universe")
		return
	}

	devices := coord.Paired()
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleRefreshPaired re-queries the backend's paired-device list.
func (s *Server) handleRefreshPaired(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.coordinatorFor(chi.URLParam(r, "universe"))
	if !ok {
		writeNotFound(w, "unknown device universe")
		return
	}

	if err := coord.RefreshPaired(r.Context()); err != nil {
		writeConnectivityError(w, err)
		return
	}

	devices := coord.Paired()
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}
