package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type metricsResponse struct {
	Metrics []string `json:"metrics"`
}

type invalidateResponse struct {
	Deleted int64 `json:"deleted"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", zap.Error(err))
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: int(errors.GetCode(err))})
}

func statusFor(err error) int {
	switch {
	case errors.IsLedgerSchemaError(err), errors.IsMissingSeedError(err):
		return http.StatusUnprocessableEntity
	case errors.IsCacheUnavailable(err):
		return http.StatusServiceUnavailable
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter:
		return http.StatusBadRequest
	case errors.ErrCodeMetricNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDataSourceUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) loadFrame(r *http.Request) (ledger.Frame, error) {
	filter, err := ledgerFilter(r.URL.Query())
	if err != nil {
		return ledger.Frame{}, err
	}

	return s.service.Load(r.Context(), s.source, filter)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metricsResponse{Metrics: s.service.Catalogue().Names()})
}

func (s *Server) computeMetric(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if _, err := s.service.Catalogue().Get(name); err != nil {
		s.writeError(w, err)

		return
	}

	req, err := computeRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, err)

		return
	}

	frame, err := s.loadFrame(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	table, err := s.service.Compute(r.Context(), frame, name, req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, table)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	perAccount, err := boolParam(r.URL.Query(), "per_account", false)
	if err != nil {
		s.writeError(w, err)

		return
	}

	frame, err := s.loadFrame(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, s.service.Summary(r.Context(), frame, perAccount))
}

func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
	key, err := balanceKey(r.URL.Query())
	if err != nil {
		s.writeError(w, err)

		return
	}

	frame, err := s.loadFrame(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	result, err := s.service.Balance(r.Context(), frame, key)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) invalidateCache(w http.ResponseWriter, r *http.Request) {
	filter, err := cacheFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, err)

		return
	}

	deleted, err := s.service.InvalidateBalance(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, invalidateResponse{Deleted: deleted})
}
