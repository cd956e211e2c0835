package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fyclub/treasury-guardian/internal/domain"
)

type riskScanRequest struct {
	Address string `json:"address"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
	})
}

// handleRiskScan runs the full pipeline for one address. The pipeline itself
// never errors (failures become the emergency result), so the only error
// status produced here is the missing-address validation.
func (s *Server) handleRiskScan(w http.ResponseWriter, r *http.Request) {
	var req riskScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "Treasury address is required")
		return
	}

	if strings.TrimSpace(req.Address) == "" {
		s.writeError(w, http.StatusBadRequest, "Treasury address is required")
		return
	}

	result := s.workflow.Run(r.Context(), req.Address)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	results := []domain.ScanResult{}
	if s.history != nil {
		results = s.history.Recent(limit)
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
