package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pricecheck/database"
	"pricecheck/internal/config"
	"pricecheck/internal/domain/models"
	"pricecheck/internal/pipeline"
	"pricecheck/internal/priceapi"
	"pricecheck/server/middleware"
)

type stubClient struct{}

func (stubClient) Request(_ context.Context, q priceapi.Query) *models.PriceResponse {
	if q.Article == "404" {
		return nil
	}
	return &models.PriceResponse{
		MinInStock: "120",
		Offers: []models.Offer{
			{Price: 120, Qty: 3, Store: "Автомир", Brand: q.Brand, InStock: 1, DeliveryDays: 1},
		},
	}
}

func (stubClient) KeyCount() int { return 2 }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()

	store, err := config.NewStore(filepath.Join(root, "configs"), "operator", nil)
	require.NoError(t, err)
	_, err = store.SaveApp(config.AppConfig{FastExport: false, TimeDelay: 0})
	require.NoError(t, err)

	history, err := database.NewHistoryDB(filepath.Join(root, "history.db"), database.DBConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	driver, err := pipeline.NewDriver(pipeline.Options{Store: store, Client: stubClient{}, History: history})
	require.NoError(t, err)

	srv, err := New(Options{
		Config:   &config.Config{Port: "9999"},
		Store:    store,
		Driver:   driver,
		History:  history,
		KeyCount: 2,
	})
	require.NoError(t, err)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/runs", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	w := do(t, h, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	var result struct {
		Status     string                    `json:"status"`
		Components map[string]map[string]any `json:"components"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "healthy", result.Status)
	assert.Contains(t, result.Components, "history_db")
	assert.Contains(t, result.Components, "api_keys")
	assert.Equal(t, "idle", result.Components["driver"]["message"])
}

func TestRunLifecycleOverHTTP(t *testing.T) {
	h := newTestServer(t)
	csv := "Производитель;Артикул\nBosch;0 986 452 041\nACME;404\n"

	w := do(t, h, uploadRequest(t, "проценка.csv", []byte(csv), nil))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	started := decode[models.RunSummary](t, w)
	assert.Equal(t, 2, started.Total)

	var summary models.RunSummary
	require.Eventually(t, func() bool {
		w := do(t, h, httptest.NewRequest(http.MethodGet, "/api/runs/"+started.ID, nil))
		if w.Code != http.StatusOK {
			return false
		}
		summary = decode[models.RunSummary](t, w)
		return summary.State.IsTerminal()
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, models.RunStateCompleted, summary.State)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/api/runs/"+started.ID+"/result", nil))
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[struct {
		Table models.Table `json:"table"`
	}](t, w)
	require.Len(t, result.Table.Rows, 1)
	assert.Equal(t, "0 986 452 041", result.Table.Rows[0][1])
	assert.Equal(t, "Автомир", result.Table.Rows[0][12])

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/api/runs/"+started.ID+"/errors", nil))
	require.Equal(t, http.StatusOK, w.Code)
	errs := decode[struct {
		Errors []models.ErrorRow `json:"errors"`
	}](t, w)
	assert.Equal(t, []models.ErrorRow{{Manufacturer: "ACME", Article: "404"}}, errs.Errors)

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/api/runs/"+started.ID+"/result?format=xlsx", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "Проценка товаров", f.GetSheetName(0))

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Runs  []models.RunSummary `json:"runs"`
		Count int                 `json:"count"`
	}](t, w)
	assert.Equal(t, 1, list.Count)

	w = do(t, h, httptest.NewRequest(http.MethodPost, "/api/runs/"+started.ID+"/cancel", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRunErrorsOverHTTP(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name string
		req  func() *http.Request
		code int
		msg  string
	}{
		{"missing file", func() *http.Request { return uploadRequest(t, "", nil, nil) }, http.StatusBadRequest, "file"},
		{"bad header", func() *http.Request {
			return uploadRequest(t, "in.csv", []byte("Brand;Part\nA;1\n"), nil)
		}, http.StatusBadRequest, "Производитель"},
		{"incomplete rows", func() *http.Request {
			return uploadRequest(t, "in.csv", []byte("Производитель;Артикул\nA;\nB;2\n"), map[string]string{"drop_incomplete": "false"})
		}, http.StatusBadRequest, "drop_incomplete"},
		{"unknown run", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil)
		}, http.StatusNotFound, "не найден"},
		{"unknown run result", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/runs/nope/result", nil)
		}, http.StatusNotFound, "не найден"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.req())
			assert.Equal(t, tt.code, w.Code)
			resp := decode[middleware.ErrorResponse](t, w)
			assert.Contains(t, resp.Error, tt.msg)
			assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), resp.RequestID)
		})
	}
}

func TestConfigEndpoints(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, httptest.NewRequest(http.MethodGet, "/api/config/parser", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"onlyInStock":"False"`)

	body := `{"regionCode":1,"requestType":5,"onlyInStock":"True","storeRatingLimit":3,"isStoreRatingLimit":"True","blackList":[["Bosch","Shop"]]}`
	req := httptest.NewRequest(http.MethodPut, "/api/config/parser", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = do(t, h, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	update := decode[struct {
		Config  config.ParserConfig `json:"config"`
		Changed bool                `json:"changed"`
	}](t, w)
	assert.True(t, update.Changed)
	assert.True(t, bool(update.Config.OnlyInStock))
	assert.Equal(t, 3, update.Config.StoreRatingLimit)
	assert.Equal(t, []models.BrandStorePair{{"Bosch", "Shop"}}, update.Config.BlackList)

	req = httptest.NewRequest(http.MethodPut, "/api/config/parser", strings.NewReader(`{"storeRatingLimit":9}`))
	req.Header.Set("Content-Type", "application/json")
	w = do(t, h, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, httptest.NewRequest(http.MethodPost, "/api/config/parser/reset", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"onlyInStock":"False"`)
	assert.Contains(t, w.Body.String(), `["Bosch","Shop"]`)

	req = httptest.NewRequest(http.MethodPut, "/api/config/app", strings.NewReader(`{"savePath":"/tmp/out","fastExport":"False","timeDelay":2}`))
	req.Header.Set("Content-Type", "application/json")
	w = do(t, h, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/api/config/app", nil))
	assert.JSONEq(t, `{"savePath":"/tmp/out","fastExport":"False","timeDelay":2}`, w.Body.String())
}

func TestGzipAndSwagger(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/config/parser", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := do(t, h, req)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/runs/{id}/result")
}
