package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"leituras-platform/internal/cache"
	"leituras-platform/internal/models"
	"leituras-platform/internal/repository"
	"leituras-platform/internal/services"
	"leituras-platform/internal/timeseries"
	"leituras-platform/pkg/logging"
	"leituras-platform/pkg/metrics"
)

// One collector for the whole test binary; prometheus rejects duplicate
// metric registration.
var testMetrics = metrics.NewCollector("test_leitura_handlers")

func newTestRouter() (*mux.Router, *repository.MemoryRepository) {
	repo := repository.NewMemoryRepository()
	logger := logging.NewStructuredLogger("test", "0.0.0", logging.ErrorLevel)
	logger.SetOutput(io.Discard)

	service := services.NewLeituraService(repo, cache.New(time.Minute), logger, testMetrics)
	handler := NewLeituraHandler(service, logger, testMetrics)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router, repo
}

func doRequest(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func TestCreateDeleteGet_ExampleScenario(t *testing.T) {
	router, _ := newTestRouter()

	payload := map[string]interface{}{
		"local":     "São Paulo",
		"data_hora": "2025-03-19T15:42:12.654Z",
		"tipo":      "Temperatura",
		"valor":     22.5,
	}

	// Create returns 201 with the same fields plus an assigned id.
	rec := doRequest(t, router, http.MethodPost, "/api/leituras", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	var created models.Leitura
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode created reading: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected assigned id")
	}
	if created.Local != "São Paulo" || created.Tipo != "Temperatura" || created.Valor != 22.5 {
		t.Errorf("created reading differs from payload: %+v", created)
	}

	// Delete succeeds with no body content.
	rec = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/leituras/%d", created.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", rec.Code)
	}

	// Subsequent get reports NotFound.
	rec = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/leituras/%d", created.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want 404", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Message != "Leitura não encontrada" {
		t.Errorf("message = %q, want %q", resp.Message, "Leitura não encontrada")
	}
}

func TestCreate_MissingFields(t *testing.T) {
	router, _ := newTestRouter()

	rec := doRequest(t, router, http.MethodPost, "/api/leituras", map[string]interface{}{
		"local": "São Paulo",
		"tipo":  "CO2",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Message != "Todos os campos são obrigatórios" {
		t.Errorf("message = %q, want %q", resp.Message, "Todos os campos são obrigatórios")
	}
}

func TestCreate_ZeroValor(t *testing.T) {
	router, _ := newTestRouter()

	rec := doRequest(t, router, http.MethodPost, "/api/leituras", map[string]interface{}{
		"local":     "São Paulo",
		"data_hora": "2025-03-19T15:00:00Z",
		"tipo":      "CO2",
		"valor":     0,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("POST with valor=0 status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
}

func TestCreate_MalformedBody(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/leituras", bytes.NewReader([]byte(`{"data_hora": "ontem"`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST with malformed body status = %d, want 400", rec.Code)
	}
}

func TestList_EmptyAndFiltered(t *testing.T) {
	router, _ := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/api/leituras", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rec.Code)
	}
	var leituras []models.Leitura
	if err := json.Unmarshal(rec.Body.Bytes(), &leituras); err != nil {
		t.Fatalf("expected a JSON array even when empty: %v (%s)", err, rec.Body.String())
	}
	if len(leituras) != 0 {
		t.Fatalf("expected empty list, got %d", len(leituras))
	}

	for _, p := range []map[string]interface{}{
		{"local": "São Paulo", "data_hora": "2025-03-19T15:00:00Z", "tipo": "CO2", "valor": 410},
		{"local": "Rio de Janeiro", "data_hora": "2025-03-19T16:00:00Z", "tipo": "PM2.5", "valor": 9.5},
	} {
		if rec := doRequest(t, router, http.MethodPost, "/api/leituras", p); rec.Code != http.StatusCreated {
			t.Fatalf("seed POST failed: %d (%s)", rec.Code, rec.Body.String())
		}
	}

	rec = doRequest(t, router, http.MethodGet, "/api/leituras?local=Rio+de+Janeiro", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &leituras); err != nil {
		t.Fatal(err)
	}
	if len(leituras) != 1 || leituras[0].Local != "Rio de Janeiro" {
		t.Errorf("filtered list = %+v, want only Rio de Janeiro", leituras)
	}
}

func TestUpdate_NotFoundAndBadPayload(t *testing.T) {
	router, _ := newTestRouter()

	// Absent id wins over payload shape.
	rec := doRequest(t, router, http.MethodPut, "/api/leituras/42", map[string]interface{}{})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("PUT on absent id status = %d, want 404", rec.Code)
	}

	// Existing id with an incomplete payload is a validation failure.
	created := doRequest(t, router, http.MethodPost, "/api/leituras", map[string]interface{}{
		"local": "São Paulo", "data_hora": "2025-03-19T15:00:00Z", "tipo": "CO2", "valor": 410,
	})
	var leitura models.Leitura
	if err := json.Unmarshal(created.Body.Bytes(), &leitura); err != nil {
		t.Fatal(err)
	}

	rec = doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/leituras/%d", leitura.ID), map[string]interface{}{
		"local": "Curitiba",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("PUT with incomplete payload status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Message != "Todos os campos são obrigatórios" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestPatch(t *testing.T) {
	router, _ := newTestRouter()

	created := doRequest(t, router, http.MethodPost, "/api/leituras", map[string]interface{}{
		"local": "São Paulo", "data_hora": "2025-03-19T15:00:00Z", "tipo": "CO2", "valor": 410,
	})
	var leitura models.Leitura
	if err := json.Unmarshal(created.Body.Bytes(), &leitura); err != nil {
		t.Fatal(err)
	}

	t.Run("empty patch", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPatch, fmt.Sprintf("/api/leituras/%d", leitura.ID), map[string]interface{}{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("PATCH status = %d, want 400", rec.Code)
		}
		if resp := decodeError(t, rec); resp.Message != "Nenhum campo foi atualizado" {
			t.Errorf("message = %q, want %q", resp.Message, "Nenhum campo foi atualizado")
		}
	})

	t.Run("single field", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPatch, fmt.Sprintf("/api/leituras/%d", leitura.ID), map[string]interface{}{
			"valor": 0,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("PATCH status = %d, want 200 (%s)", rec.Code, rec.Body.String())
		}

		var updated models.Leitura
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatal(err)
		}
		if updated.Valor != 0 || updated.Local != "São Paulo" {
			t.Errorf("patched reading = %+v", updated)
		}
	})

	t.Run("absent id", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPatch, "/api/leituras/9999", map[string]interface{}{"valor": 1})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("PATCH status = %d, want 404", rec.Code)
		}
	})
}

func TestDelete_NotFound(t *testing.T) {
	router, _ := newTestRouter()

	rec := doRequest(t, router, http.MethodDelete, "/api/leituras/42", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("DELETE status = %d, want 404", rec.Code)
	}
}

func TestGetSeries(t *testing.T) {
	router, _ := newTestRouter()

	// Out-of-order timestamps for the same tipo; one reading elsewhere.
	for _, p := range []map[string]interface{}{
		{"local": "São Paulo", "data_hora": "2025-03-19T18:00:00Z", "tipo": "CO2", "valor": 430},
		{"local": "São Paulo", "data_hora": "2025-03-19T09:00:00Z", "tipo": "CO2", "valor": 410},
		{"local": "Rio de Janeiro", "data_hora": "2025-03-19T12:00:00Z", "tipo": "PM2.5", "valor": 9.5},
	} {
		if rec := doRequest(t, router, http.MethodPost, "/api/leituras", p); rec.Code != http.StatusCreated {
			t.Fatalf("seed POST failed: %d", rec.Code)
		}
	}

	rec := doRequest(t, router, http.MethodGet, "/api/leituras/series", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET series status = %d, want 200", rec.Code)
	}

	var chart timeseries.Chart
	if err := json.Unmarshal(rec.Body.Bytes(), &chart); err != nil {
		t.Fatalf("failed to decode chart: %v", err)
	}

	if len(chart.Series) != 2 {
		t.Fatalf("series count = %d, want 2", len(chart.Series))
	}
	if len(chart.Locais) != 2 || len(chart.Tipos) != 2 {
		t.Errorf("Locais = %v, Tipos = %v", chart.Locais, chart.Tipos)
	}

	for _, s := range chart.Series {
		if s.Tipo != "CO2" {
			continue
		}
		if len(s.Points) != 2 || !s.Points[0].DataHora.Before(s.Points[1].DataHora) {
			t.Errorf("CO2 series not chronological: %+v", s.Points)
		}
		if s.Points[0].Label != "19/03 09:00" {
			t.Errorf("Label = %q, want %q", s.Points[0].Label, "19/03 09:00")
		}
	}

	// Filtered by local: points shrink, distinct sets still cover everything.
	rec = doRequest(t, router, http.MethodGet, "/api/leituras/series?local=Rio+de+Janeiro", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &chart); err != nil {
		t.Fatal(err)
	}
	if len(chart.Series) != 1 || chart.Series[0].Tipo != "PM2.5" {
		t.Errorf("filtered series = %+v", chart.Series)
	}
	if len(chart.Locais) != 2 {
		t.Errorf("Locais after filter = %v, want both locations", chart.Locais)
	}
}

func TestOpenAPISpecServed(t *testing.T) {
	router, _ := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/api/docs/openapi.json", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET openapi.json status = %d, want 200", rec.Code)
	}

	var spec map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("spec is not valid JSON: %v", err)
	}
	if spec["openapi"] != "3.0.0" {
		t.Errorf("openapi version = %v", spec["openapi"])
	}
}
