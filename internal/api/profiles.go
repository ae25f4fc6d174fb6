package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/melohub/melohub-core/internal/profile"
)

// handleListProfiles returns all stored device profiles.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeInternalError(w, "profile store not configured")
		return
	}

	profiles, err := s.profiles.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list profiles", "error", err)
		writeInternalError(w, "failed to list profiles")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// handleGetProfile returns one device profile by device ID.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeInternalError(w, "profile store not configured")
		return
	}

	id := chi.URLParam(r, "id")
	p, err := s.profiles.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeNotFound(w, "profile not found: "+id)
			return
		}
		s.logger.Error("failed to get profile", "device_id", id, "error", err)
		writeInternalError(w, "failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// saveProfileRequest is the body for PUT /profiles/{id}. The device ID
// comes from the URL, not the body.
type saveProfileRequest struct {
	Alias       string `json:"alias"`
	AutoConnect bool   `json:"auto_connect"`
}

// handleSaveProfile creates or replaces a device profile.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeInternalError(w, "profile store not configured")
		return
	}

	var req saveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	p := &profile.Profile{
		DeviceID:    chi.URLParam(r, "id"),
		Alias:       req.Alias,
		AutoConnect: req.AutoConnect,
	}
	if err := s.profiles.Save(r.Context(), p); err != nil {
		if errors.Is(err, profile.ErrMissingDeviceID) {
			writeBadRequest(w, "device ID is required")
			return
		}
		s.logger.Error("failed to save profile", "device_id", p.DeviceID, "error", err)
		writeInternalError(w, "failed to save profile")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// handleDeleteProfile removes a device profile. Deleting a profile that
// does not exist succeeds; the end state is the same either way.
func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeInternalError(w, "profile store not configured")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.profiles.Delete(r.Context(), id); err != nil {
		s.logger.Error("failed to delete profile", "device_id", id, "error", err)
		writeInternalError(w, "failed to delete profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
