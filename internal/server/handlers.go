package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/raaihank/deidentify/internal/privacy"
	"github.com/raaihank/deidentify/internal/websocket"
	"go.uber.org/zap"
)

// DeidentifyRequest is the body of POST /v1/deidentify
type DeidentifyRequest struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
}

// DeidentifyResponse is returned by POST /v1/deidentify
type DeidentifyResponse struct {
	DocumentID    string            `json:"document_id"`
	Text          string            `json:"text"`
	Findings      []privacy.Finding `json:"findings"`
	TotalFindings int               `json:"total_findings"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleDeidentify runs a text body through the shared engine
func (s *Server) handleDeidentify(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())
	log := s.logger.WithRequestID(requestID)

	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)

	var req DeidentifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		log.Debug("Invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	documentID := req.DocumentID
	if documentID == "" {
		documentID = privacy.DefaultIdentifier
	}

	start := time.Now()
	s.engineMu.Lock()
	result := s.engine.Process(req.Text, documentID)
	s.engineMu.Unlock()
	elapsed := time.Since(start)

	log.Info("Document deidentified",
		zap.String("document", documentID),
		zap.Int("replacements", result.Total()),
		zap.Duration("duration", elapsed),
	)

	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypeDocumentProcessed,
		Timestamp: time.Now(),
		RequestID: requestID,
		Data: websocket.DocumentEvent{
			Document:      documentID,
			Findings:      result.Findings,
			TotalFindings: result.Total(),
			ProcessingMS:  float64(elapsed.Nanoseconds()) / 1e6,
		},
	})

	writeJSON(w, http.StatusOK, DeidentifyResponse{
		DocumentID:    documentID,
		Text:          result.Text,
		Findings:      result.Findings,
		TotalFindings: result.Total(),
	})
}

// handleStats reports mapping table sizes and counters, never their contents
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engineStats())
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.engineMu.Lock()
	categories := s.engine.EnabledCategories()
	s.engineMu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"name":               "deidentify",
		"version":            s.version,
		"categories":         categories,
		"role_labels":        s.config.Privacy.Names.UseRoleLabels,
		"websocket_enabled":  s.config.WebSocket.Enabled,
		"rate_limit_enabled": s.config.Server.RateLimit.Enabled,
	})
}

func (s *Server) engineStats() privacy.Stats {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	return s.engine.Stats()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
