package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/fevtel/evdash-service-go/pkg/circuit"
	"github.com/fevtel/evdash-service-go/pkg/model"
	"github.com/fevtel/evdash-service-go/version"
)

const maxUploadBytes = 10 << 20

//nolint:errcheck // by design
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "EVDash Backend Online",
		"version": version.FullVersion,
		"features": []string{
			"Driver biosignal monitoring",
			"Real-time emotional state prediction",
			"Vehicle telemetry (motor/battery/brakes/tires)",
			"Charging system state",
			"ADAS vision pipeline",
			"Circuit geometry API",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}

func (s *Server) handleLatest(h *hub) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data := h.Latest()
		if data == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no frame yet"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck // by design
		w.Write(data)
	}
}

func (s *Server) handlePowerMap(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "error": "map id must be numeric",
		})
		return
	}
	var ok bool
	var pm model.PowerMap
	s.hubs["vehicle"].Do(func() {
		ok = s.vehicle.SetPowerMap(id)
		pm = s.vehicle.PowerMap()
	})
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "error": "invalid map id (must be 1-12)",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true, "map_id": id, "name": pm.Name,
	})
}

func (s *Server) handleRegenLevel(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(r.PathValue("level"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "error": "level must be numeric",
		})
		return
	}
	var ok bool
	s.hubs["vehicle"].Do(func() {
		ok = s.vehicle.SetRegenLevel(level)
	})
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "error": "invalid level (must be 0-10)",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true, "regen_level": level,
	})
}

func (s *Server) handleAttackMode(w http.ResponseWriter, _ *http.Request) {
	var ok bool
	var activations int
	s.hubs["vehicle"].Do(func() {
		ok = s.vehicle.ActivateAttackMode()
		activations = s.vehicle.AttackActivations()
	})
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]any{
			"success":     false,
			"error":       "attack mode unavailable (already active or max activations reached)",
			"activations": activations,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"attack_mode_active": true,
		"remaining_seconds":  240,
		"activations":        activations,
	})
}

func (s *Server) handlePitStop(w http.ResponseWriter, _ *http.Request) {
	s.hubs["vehicle"].Do(s.vehicle.PitStop)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true, "message": "Pit Stop Complete: Energy and Tires Refreshed",
	})
}

func (s *Server) handleChargingStart(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "dc_fast"
	}
	if mode != "dc_fast" && mode != "ac" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "error": "mode must be dc_fast or ac",
		})
		return
	}
	s.hubs["energy"].Do(func() {
		s.energy.StartCharging(mode)
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "mode": mode})
}

func (s *Server) handleChargingStop(w http.ResponseWriter, _ *http.Request) {
	s.hubs["energy"].Do(s.energy.StopCharging)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleECUReset(w http.ResponseWriter, _ *http.Request) {
	s.hubs["energy"].Do(s.energy.ECUReset)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true, "message": "Charge Port ECU Reset Complete",
	})
}

func (s *Server) handleCircuitList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, circuit.ListResponse{
		Circuits: s.repo.Models(),
		Active:   s.repo.ActiveID(),
	})
}

func (s *Server) handleCircuitActive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, circuit.ResultFromModel(s.repo.Active()))
}

func (s *Server) handleCircuitActivate(w http.ResponseWriter, r *http.Request) {
	m, err := s.repo.Activate(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, circuit.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "circuit not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, circuit.ResultFromModel(m))
}

func (s *Server) handleCircuitAnalyze(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		s.analyzeUpload(w, r)
	case strings.HasPrefix(ct, "application/json"):
		s.analyzeContour(w, r)
	default:
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{
			"error": "expected a multipart upload or a json contour",
		})
	}
}

// analyzeUpload takes the original's image upload route. The core performs
// no image analysis, uploads get the oval stand-in circuit named after
// the file.
func (s *Server) analyzeUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	//nolint:errcheck // by design
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	if name == "" {
		name = "Custom Circuit"
	}
	s.registerResult(w, circuit.FallbackResult(newCircuitID(), name))
}

func (s *Server) analyzeContour(w http.ResponseWriter, r *http.Request) {
	var req circuit.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	id := req.ID
	if id == "" {
		id = newCircuitID()
	}
	name := req.Name
	if name == "" {
		name = "Custom Circuit"
	}
	res, err := circuit.BuildResult(id, name, req.Points)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	s.registerResult(w, res)
}

func (s *Server) registerResult(w http.ResponseWriter, res circuit.AnalysisResult) {
	m, err := res.Model()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := s.repo.Register(m); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func newCircuitID() string {
	return "custom-" + uuid.NewString()[:8]
}
