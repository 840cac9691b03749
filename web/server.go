// Package web exposes the read-only intelligence API consumed by the admin
// frontend. It never triggers resolution runs.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-intel/services"
	"rental-intel/storage"
	"rental-intel/utils"
)

const defaultOwnerPageSize = 50

// Server serves the owner report and owner list as JSON.
type Server struct {
	report *services.ReportService
	owners storage.OwnerStore
	logger *utils.Logger
}

// NewServer constructs a Server.
func NewServer(report *services.ReportService, owners storage.OwnerStore, logger *utils.Logger) *Server {
	return &Server{report: report, owners: owners, logger: logger}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/report", s.handleReport).Methods(http.MethodGet)
	r.HandleFunc("/api/owners", s.handleOwners).Methods(http.MethodGet)
	return r
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("[web] Listening on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "rental-intel",
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.report.Generate(r.Context())
	if err != nil {
		s.logger.Error("[web] Report generation failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleOwners(w http.ResponseWriter, r *http.Request) {
	limit := defaultOwnerPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	owners, err := s.owners.TopOwnersByRisk(r.Context(), limit)
	if err != nil {
		s.logger.Error("[web] Owner list failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "owner list failed")
		return
	}
	s.writeJSON(w, http.StatusOK, owners)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("[web] Encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
