package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/expense-extractor/internal/dates"
	"github.com/dvloznov/expense-extractor/internal/infra/sqlite"
	"github.com/dvloznov/expense-extractor/internal/jobs"
	"github.com/dvloznov/expense-extractor/internal/jobs/inmemory"
	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/dvloznov/expense-extractor/internal/parser"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router http.Handler
	queue  *inmemory.Queue
	store  *inmemory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	registry := parser.NewRegistry(parser.Deps{Dates: dates.New(func() time.Time { return today })})

	store := inmemory.NewStore()
	queue := inmemory.NewQueue(10, store)
	t.Cleanup(func() { _ = queue.Close() })

	router := NewRouter(Deps{
		Registry:  registry,
		Publisher: queue,
		Store:     store,
		ValidateJob: func(j *jobs.ParseTextJob) error {
			if j.Text == "" && j.GCSURI == "" {
				return assert.AnError
			}
			return nil
		},
		Log: zerolog.Nop(),
	})
	return &testServer{router: router, queue: queue, store: store}
}

func (s *testServer) do(t *testing.T, method, path, contentType string, body io.Reader) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestParse_SMS(t *testing.T) {
	s := newTestServer(t)
	rec, out := s.do(t, http.MethodPost, "/api/parse/sms", "application/json",
		jsonBody(t, map[string]string{"text": "Rs.500.00 debited from a/c XX1234 at AMAZON on 05/01/25"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "sms", out["source"])
	assert.Equal(t, "success", out["outcome"])
	assert.Equal(t, false, out["produced_by_ai"])

	txs := out["transactions"].([]interface{})
	require.Len(t, txs, 1)
	tx := txs[0].(map[string]interface{})
	assert.Equal(t, "AMAZON", tx["biller"])
	assert.Equal(t, "Shopping", tx["category"])
	assert.Equal(t, "500", tx["amount"])
}

func TestParse_PlainTextBody(t *testing.T) {
	s := newTestServer(t)
	rec, out := s.do(t, http.MethodPost, "/api/parse/card", "text/plain", strings.NewReader("   "))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "credit_card", out["source"])
	assert.Equal(t, "extraction_failed", out["outcome"])
}

func TestParse_UnknownSource(t *testing.T) {
	s := newTestServer(t)
	rec, out := s.do(t, http.MethodPost, "/api/parse/fax", "text/plain", strings.NewReader("x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "unknown source")
}

func TestCategorize(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodPost, "/api/categorize", "application/json",
		jsonBody(t, map[string]string{"text": "Payment to NETFLIX"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "NETFLIX", out["biller"])
	assert.Equal(t, "OTT", out["category"])

	rec, out = s.do(t, http.MethodPost, "/api/categorize", "text/plain", strings.NewReader("POS CORNER BAKERY"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Unknown", out["biller"])
	assert.Equal(t, "Food & Dining", out["category"])

	rec, _ = s.do(t, http.MethodPost, "/api/categorize", "text/plain", strings.NewReader(""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoriesAndBillers(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cats := out["categories"].([]interface{})
	assert.Equal(t, "Other", cats[len(cats)-1])

	rec, out = s.do(t, http.MethodGet, "/api/billers?category=ott", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	billers := out["billers"].([]interface{})
	require.NotEmpty(t, billers)
	for _, b := range billers {
		assert.Equal(t, "OTT", b.(map[string]interface{})["category"])
	}

	rec, _ = s.do(t, http.MethodGet, "/api/billers?category=crypto", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobs(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodPost, "/api/jobs", "application/json",
		jsonBody(t, map[string]interface{}{"source": "bank", "text": "statement"}))
	require.Equal(t, http.StatusAccepted, rec.Code)
	jobID := out["job_id"].(string)
	assert.NotEmpty(t, jobID)
	assert.Equal(t, "pending", out["status"])

	rec, out = s.do(t, http.MethodGet, "/api/jobs/"+jobID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bank", out["source"])

	rec, out = s.do(t, http.MethodGet, "/api/jobs?source=bank&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, out["count"])

	rec, out = s.do(t, http.MethodGet, "/api/jobs?source=sms", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, out["count"])

	rec, _ = s.do(t, http.MethodGet, "/api/jobs/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateJob_Rejected(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/api/jobs", "application/json", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/jobs", "application/json",
		jsonBody(t, map[string]string{"source": "fax", "text": "x"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/jobs", "application/json",
		jsonBody(t, map[string]string{"source": "sms"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, s.queue.Close())
	rec, _ = s.do(t, http.MethodPost, "/api/jobs", "application/json",
		jsonBody(t, map[string]string{"source": "sms", "text": "x"}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthAndCORS(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", out["status"])
	assert.Equal(t, false, out["ai_enabled"])

	req := httptest.NewRequest(http.MethodOptions, "/api/jobs", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))

	rec, _ = s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBillerRoutes_ReloadRegistry(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "expenses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	registry := parser.NewRegistry(parser.Deps{})
	reloads := 0
	reload := func(ctx context.Context) error {
		reloads++
		overrides, err := db.BillerOverrides(ctx)
		if err != nil {
			return err
		}
		table, err := mapping.Default().With(overrides...)
		if err != nil {
			return err
		}
		registry.SetTable(table)
		return nil
	}

	s := &testServer{router: NewRouter(Deps{
		Registry: registry,
		Billers:  db,
		Reload:   reload,
		Log:      zerolog.Nop(),
	})}

	rec, out := s.do(t, http.MethodPut, "/api/billers/zomato", "application/json",
		jsonBody(t, map[string]string{"category": "groceries"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ZOMATO", out["biller"])
	assert.Equal(t, "Groceries", out["category"])
	assert.Equal(t, 1, reloads)

	rec, out = s.do(t, http.MethodPost, "/api/categorize", "text/plain", strings.NewReader("ZOMATO ORDER 1234"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Groceries", out["category"])

	rec, _ = s.do(t, http.MethodPut, "/api/billers/zomato", "application/json",
		jsonBody(t, map[string]string{"category": "Yachts"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = s.do(t, http.MethodPut, "/api/billers/zomato", "application/json", strings.NewReader("{}"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, reloads)

	rec, _ = s.do(t, http.MethodDelete, "/api/billers/UNKNOWNCO", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/billers/ZOMATO", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 2, reloads)

	_, out = s.do(t, http.MethodPost, "/api/categorize", "text/plain", strings.NewReader("ZOMATO ORDER 1234"))
	assert.Equal(t, "Food & Dining", out["category"])
}

func TestBillerRoutes_DisabledWithoutStore(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodDelete, "/api/billers/ZOMATO", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
