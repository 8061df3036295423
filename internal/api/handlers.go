package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lanternworks/kinesis-core/internal/preset"
	"github.com/lanternworks/kinesis-core/internal/script"
	"github.com/lanternworks/kinesis-core/internal/sessionlog"
)

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleStatus returns the current machine status snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Status())
}

// handleStop requests an emergency stop. It cannot fail: the latch is
// consumed by the next control tick regardless of machine state.
func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.engine.RequestStop()
	writeJSON(w, http.StatusOK, map[string]any{"status": "stopping"})
}

// handleListPresets returns all resolvable presets, builtins and custom.
func (s *Server) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"presets": s.library.List(),
	})
}

// handleApplyPreset applies a named preset to the machine state.
func (s *Server) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.engine.ApplyPreset(name); err != nil {
		if errors.Is(err, preset.ErrUnknownPreset) {
			writeNotFound(w, "unknown preset: "+name)
			return
		}
		writeInternalError(w, "failed to apply preset")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"applied": name})
}

// savePresetRequest is the request body for PUT /presets/{name}.
type savePresetRequest struct {
	Description string               `json:"description"`
	Values      preset.ControlValues `json:"values"`
}

// handleSavePreset creates or replaces a custom preset.
func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req savePresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	p := preset.Preset{
		Name:        name,
		Description: req.Description,
		Values:      req.Values,
	}

	if err := s.library.Merge(p); err != nil {
		switch {
		case errors.Is(err, preset.ErrInvalidName):
			writeBadRequest(w, "invalid preset name")
		case errors.Is(err, preset.ErrBuiltinPreset):
			writeConflict(w, "cannot overwrite a builtin preset")
		default:
			writeInternalError(w, "failed to save preset")
		}
		return
	}

	if s.presetRepo != nil {
		if err := s.presetRepo.Save(r.Context(), p); err != nil {
			s.logger.Error("failed to persist preset", "preset", name, "error", err)
			writeInternalError(w, "failed to persist preset")
			return
		}
	}

	writeJSON(w, http.StatusOK, p)
}

// handleDeletePreset removes a custom preset.
func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.library.Remove(name); err != nil {
		switch {
		case errors.Is(err, preset.ErrBuiltinPreset):
			writeConflict(w, "cannot delete a builtin preset")
		case errors.Is(err, preset.ErrUnknownPreset):
			writeNotFound(w, "unknown preset: "+name)
		default:
			writeInternalError(w, "failed to delete preset")
		}
		return
	}

	if s.presetRepo != nil {
		if err := s.presetRepo.Delete(r.Context(), name); err != nil && !errors.Is(err, preset.ErrNotFound) {
			s.logger.Error("failed to delete persisted preset", "preset", name, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": name})
}

// handleLoadScript validates and starts a control script.
func (s *Server) handleLoadScript(w http.ResponseWriter, r *http.Request) {
	var sc script.Script
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.engine.LoadScript(sc); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"loaded": sc.Name,
		"steps":  len(sc.Steps),
	})
}

// handleListSessions returns the paginated session history.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeNotFound(w, "session history not configured")
		return
	}

	filter := sessionlog.Filter{
		Reason: r.URL.Query().Get("reason"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.sessions.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list sessions", "error", err)
		writeInternalError(w, "failed to list sessions")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
