package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"leituras-platform/internal/models"
	"leituras-platform/internal/repository"
	"leituras-platform/internal/services"
	"leituras-platform/internal/timeseries"
	"leituras-platform/pkg/logging"
	"leituras-platform/pkg/metrics"
)

// Messages for error responses not produced by the validation layer.
const (
	msgNaoEncontrada = "Leitura não encontrada"
	msgCorpoInvalido = "Corpo da requisição inválido"
	msgErroBuscar    = "Erro ao buscar leituras"
	msgErroCriar     = "Erro ao criar leitura"
	msgErroAtualizar = "Erro ao atualizar leitura"
	msgErroDeletar   = "Erro ao deletar leitura"
)

// LeituraHandler handles the readings API endpoints
type LeituraHandler struct {
	service *services.LeituraService
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewLeituraHandler creates a new readings handler
func NewLeituraHandler(service *services.LeituraService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *LeituraHandler {
	return &LeituraHandler{
		service: service,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ListLeituras handles GET /api/leituras
func (h *LeituraHandler) ListLeituras(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/leituras").Observe(duration.Seconds())
	}()

	filter := repository.ListFilter{}
	if local := r.URL.Query().Get("local"); local != "" {
		filter.Local = &local
	}

	leituras, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_LIST_LEITURAS_ERROR] Failed to list readings", logging.Fields{
			"filter": filter,
		}, err)
		h.sendServiceError(w, r, err, msgErroBuscar)
		return
	}

	h.metrics.RecordAPIRequest("/api/leituras", "GET", "200")
	h.sendJSON(w, leituras, http.StatusOK)
}

// GetLeitura handles GET /api/leituras/{id}
func (h *LeituraHandler) GetLeitura(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	leitura, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.sendServiceError(w, r, err, msgErroBuscar)
		return
	}

	h.metrics.RecordAPIRequest("/api/leituras/{id}", "GET", "200")
	h.sendJSON(w, leitura, http.StatusOK)
}

// CreateLeitura handles POST /api/leituras
func (h *LeituraHandler) CreateLeitura(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/leituras").Observe(duration.Seconds())
	}()

	var input models.LeituraInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.sendError(w, r, msgCorpoInvalido, http.StatusBadRequest)
		return
	}

	leitura, err := h.service.Create(ctx, &input)
	if err != nil {
		h.sendServiceError(w, r, err, msgErroCriar)
		return
	}

	h.metrics.RecordAPIRequest("/api/leituras", "POST", "201")
	h.sendJSON(w, leitura, http.StatusCreated)
}

// UpdateLeitura handles PUT /api/leituras/{id}
func (h *LeituraHandler) UpdateLeitura(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var input models.LeituraInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.sendError(w, r, msgCorpoInvalido, http.StatusBadRequest)
		return
	}

	leitura, err := h.service.Update(ctx, id, &input)
	if err != nil {
		h.sendServiceError(w, r, err, msgErroAtualizar)
		return
	}

	h.metrics.RecordAPIRequest("/api/leituras/{id}", "PUT", "200")
	h.sendJSON(w, leitura, http.StatusOK)
}

// PatchLeitura handles PATCH /api/leituras/{id}
func (h *LeituraHandler) PatchLeitura(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var patch models.LeituraPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.sendError(w, r, msgCorpoInvalido, http.StatusBadRequest)
		return
	}

	leitura, err := h.service.PartialUpdate(ctx, id, &patch)
	if err != nil {
		h.sendServiceError(w, r, err, msgErroAtualizar)
		return
	}

	h.metrics.RecordAPIRequest("/api/leituras/{id}", "PATCH", "200")
	h.sendJSON(w, leitura, http.StatusOK)
}

// DeleteLeitura handles DELETE /api/leituras/{id}
func (h *LeituraHandler) DeleteLeitura(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		h.sendServiceError(w, r, err, msgErroDeletar)
		return
	}

	h.metrics.RecordAPIRequest("/api/leituras/{id}", "DELETE", "204")
	w.WriteHeader(http.StatusNoContent)
}

// GetSeries handles GET /api/leituras/series. It pulls the full reading
// collection and shapes it into per-metric chart series; the optional local
// query narrows the plotted points while the distinct sets keep describing
// everything stored.
func (h *LeituraHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/leituras/series").Observe(duration.Seconds())
	}()

	leituras, err := h.service.List(ctx, repository.ListFilter{})
	if err != nil {
		h.logger.Error(ctx, "[API_SERIES_ERROR] Failed to load readings for shaping", logging.Fields{}, err)
		h.sendServiceError(w, r, err, msgErroBuscar)
		return
	}

	shapeStart := time.Now()
	chart := timeseries.Shape(leituras, r.URL.Query().Get("local"))
	h.metrics.ShapingDuration.Observe(time.Since(shapeStart).Seconds())

	h.metrics.RecordAPIRequest("/api/leituras/series", "GET", "200")
	h.sendJSON(w, chart, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *LeituraHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.HealthCheck(ctx); err != nil {
		h.logger.Error(ctx, "[HEALTH_CHECK_ERROR] Store unreachable", logging.Fields{}, err)
		h.sendError(w, r, "store unavailable", http.StatusServiceUnavailable)
		return
	}

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.sendJSON(w, status, http.StatusOK)
}

// parseID extracts the path identifier; a malformed id behaves like an
// absent one.
func (h *LeituraHandler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.sendError(w, r, msgNaoEncontrada, http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// sendServiceError maps the service error taxonomy onto HTTP statuses.
func (h *LeituraHandler) sendServiceError(w http.ResponseWriter, r *http.Request, err error, internalMessage string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		h.metrics.RecordAPIError("invalid_input", r.URL.Path)
		h.sendError(w, r, verr.Message, http.StatusBadRequest)
		return
	}

	var notFound *repository.NotFoundError
	if errors.As(err, &notFound) {
		h.metrics.RecordAPIError("not_found", r.URL.Path)
		h.sendError(w, r, msgNaoEncontrada, http.StatusNotFound)
		return
	}

	// No internal detail leaks past this point.
	h.metrics.RecordAPIError("internal_error", r.URL.Path)
	h.sendError(w, r, internalMessage, http.StatusInternalServerError)
}

// sendJSON sends a JSON response
func (h *LeituraHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *LeituraHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all readings API routes. The series route is
// registered before the id routes so "series" never parses as an id.
func (h *LeituraHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/leituras/series", h.GetSeries).Methods("GET")
	router.HandleFunc("/api/leituras", h.ListLeituras).Methods("GET")
	router.HandleFunc("/api/leituras", h.CreateLeitura).Methods("POST")
	router.HandleFunc("/api/leituras/{id}", h.GetLeitura).Methods("GET")
	router.HandleFunc("/api/leituras/{id}", h.UpdateLeitura).Methods("PUT")
	router.HandleFunc("/api/leituras/{id}", h.PatchLeitura).Methods("PATCH")
	router.HandleFunc("/api/leituras/{id}", h.DeleteLeitura).Methods("DELETE")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
}
