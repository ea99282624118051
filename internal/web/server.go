// Package web exposes the guarded query service over a small JSON HTTP API.
// It is a thin adapter: all validation and limiting lives in the query
// service, the handlers only translate HTTP to service calls.
package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hlgr360/logfile-mcp-server/internal/query"
)

// queryRequest is the body of POST /api/query
type queryRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// errorResponse is the JSON body for all error results
type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the JSON API on a single listener
type Server struct {
	svc *query.Service
	log *zap.Logger
	srv *http.Server
}

// New creates the API server listening on the given port
func New(svc *query.Service, port int, log *zap.Logger) *Server {
	s := &Server{svc: svc, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/query", s.handleQuery)
	mux.HandleFunc("/api/schema", s.handleSchema)
	mux.HandleFunc("/api/nginx-preview", s.handlePreview("nginx_logs"))
	mux.HandleFunc("/api/nexus-preview", s.handlePreview("nexus_logs"))
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/health", s.handleHealth)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving the API until Shutdown or a listener error
func (s *Server) ListenAndServe() error {
	s.log.Info("web server listening", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

// Handler returns the HTTP handler, used directly by tests
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// handleQuery executes a guarded read-only SQL query
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	result, err := s.svc.Execute(req.Query, req.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSchema reports table and column definitions plus row counts
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	info, err := s.svc.Schema()
	if err != nil {
		s.log.Error("schema introspection failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// handlePreview returns the first rows of one log table
func (s *Server) handlePreview(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}

		result, err := s.svc.TableSample(table, 10)
		if err != nil {
			s.log.Error("preview failed", zap.String("table", table), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// handleStats reports per-table and total row counts
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	info, err := s.svc.Schema()
	if err != nil {
		s.log.Error("stats lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	counts := make(map[string]int64, len(info.Tables))
	var total int64
	for _, tbl := range info.Tables {
		counts[tbl.TableName] = tbl.RowCount
		total += tbl.RowCount
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tables":     counts,
		"total_rows": total,
	})
}

// handleHealth is a liveness probe
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
