package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/englify/tutorkit/agui"
	"github.com/englify/tutorkit/guardrail"
	"github.com/englify/tutorkit/supervisor"
)

const maxBodySize = 1 << 20

// Server holds the HTTP handlers of the service.
type Server struct {
	supervisor    *supervisor.Supervisor
	guardrail     *guardrail.Guardrail
	allowedOrigin string
	logger        *slog.Logger
}

// Routes returns the service mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/supervisor", s.cors(http.HandlerFunc(s.handleSupervisor)))
	mux.Handle("POST /api/supervisor/stream", s.cors(http.HandlerFunc(s.handleStream)))
	mux.Handle("POST /api/guardrail", s.cors(http.HandlerFunc(s.handleGuardrail)))
	mux.Handle("OPTIONS /api/", s.cors(http.NotFoundHandler()))
	mux.HandleFunc("GET /health", healthHandler)
	return mux
}

// handleSupervisor answers an escalation with {nextResponse} or {error}.
func (s *Server) handleSupervisor(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var esc supervisor.Escalation
	if err := decodeBody(r, &esc); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, supervisor.Reply{Error: "Invalid request body"})
		return
	}

	reply := s.supervisor.NextResponse(r.Context(), esc)
	status := http.StatusOK
	if reply.Error != "" {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, reply)

	s.logger.Info("escalation handled",
		"history_items", len(esc.History),
		"failed", reply.Error != "",
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// handleStream answers an escalation as an AG-UI event stream.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var input agui.RunInput
	if err := decodeBody(r, &input); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	esc, err := input.Prepare()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sse, err := agui.NewWriter(w)
	if err != nil {
		s.logger.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	mapper := agui.NewMapper(input.ThreadID, input.RunID)
	log := s.logger.With("thread_id", mapper.ThreadID(), "run_id", mapper.RunID())
	log.Info("stream started", "history_items", len(esc.History))

	if err := agui.Stream(r.Context(), sse, s.supervisor, esc, mapper); err != nil {
		log.Error("stream failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	log.Info("stream completed", "duration_ms", time.Since(start).Milliseconds())
}

type guardrailRequest struct {
	Text string `json:"text"`
}

// handleGuardrail classifies {text} and returns the guardrail result.
func (s *Server) handleGuardrail(w http.ResponseWriter, r *http.Request) {
	var req guardrailRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, s.guardrail.Check(r.Context(), req.Text))
}

// cors adds the cross-origin headers the realtime frontend needs and
// answers preflight requests.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
	if errors.Is(err, io.EOF) {
		return errors.New("empty body")
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
