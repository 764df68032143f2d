package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"moviehouse/internal/core"
	"moviehouse/internal/core/view"
	"moviehouse/internal/models"
	"moviehouse/internal/utils"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/mem"
)

type APIHandler struct {
	manager *core.Manager
	logger  *utils.Logger
}

// A helper function to respond with JSON
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to respond with a JSON error
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

func NewAPIHandler(manager *core.Manager, logger *utils.Logger) *APIHandler {
	return &APIHandler{manager: manager, logger: logger}
}

type sessionResponse struct {
	ID    string    `json:"id"`
	State view.View `json:"state"`
}

func (h *APIHandler) session(w http.ResponseWriter, r *http.Request) (*core.Session, bool) {
	s, err := h.manager.GetSession(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "Session not found")
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return s, true
}

// Create a session; its first listing starts loading right away
func (h *APIHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.manager.CreateSession()
	h.logger.Info("New session", s.ID, "from", r.RemoteAddr)
	respondJSON(w, http.StatusCreated, sessionResponse{ID: s.ID, State: s.Controller.Snapshot()})
}

func (h *APIHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{ID: s.ID, State: s.Controller.Snapshot()})
}

func (h *APIHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.manager.CloseSession(id); err != nil {
		respondError(w, http.StatusNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostEvent applies one user input. Fetches it triggers complete later; the
// returned state reflects the input itself.
func (h *APIHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var ev view.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.Controller.Apply(ev); err != nil {
		h.logger.Debug("Rejected event for session", s.ID, ":", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, sessionResponse{ID: s.ID, State: s.Controller.Snapshot()})
}

func (h *APIHandler) GetPlaybackURL(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mediaType, err := models.ParseMediaType(vars["type"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid media ID")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"url": view.PlaybackURL(h.manager.PlayerEmbedURL(), mediaType, id),
	})
}

// System status
func (h *APIHandler) GetSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := h.manager.SystemStatus()

	if vm, err := mem.VirtualMemory(); err == nil {
		status["memory"] = map[string]interface{}{
			"total":        vm.Total,
			"available":    vm.Available,
			"used_percent": vm.UsedPercent,
		}
	} else {
		h.logger.Error("Failed to read host memory:", err)
	}

	respondJSON(w, http.StatusOK, status)
}
