package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherdb/cypherdb"
	"github.com/cypherdb/cypherdb/internal/metrics"
	"github.com/cypherdb/cypherdb/internal/value"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	h, err := cypherdb.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return &server{h: h, met: metrics.New(prometheus.NewRegistry())}
}

func TestFirstClauseExtractsLeadingKeyword(t *testing.T) {
	assert.Equal(t, "MATCH", firstClause("match (n) return n"))
	assert.Equal(t, "UNKNOWN", firstClause("   "))
}

func TestToValueConvertsJSONScalarsAndCollections(t *testing.T) {
	assert.True(t, toValue(nil).IsNull())
	assert.Equal(t, true, toValue(true).B)
	assert.Equal(t, int64(5), toValue(float64(5)).I)
	assert.InDelta(t, 5.5, toValue(float64(5.5)).F, 1e-9)
	assert.Equal(t, "hi", toValue("hi").S)

	list := toValue([]interface{}{float64(1), float64(2)})
	require.Len(t, list.L, 2)
	assert.Equal(t, int64(1), list.L[0].I)

	m := toValue(map[string]interface{}{"x": float64(1)})
	v, ok := m.M.Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.I)
}

func TestHandleQueryRejectsNonPost(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/query", nil)
	w := httptest.NewRecorder()
	s.handleQuery(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleQueryRejectsMissingText(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	s.handleQuery(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleQueryExecutesAndReturnsRows(t *testing.T) {
	s := newTestServer(t)
	_, err := s.h.CreateNode([]string{"Person"}, map[string]value.Value{"name": value.StringValue("Ada")})
	require.NoError(t, err)

	body := `{"text": "MATCH (n:Person) RETURN n.name AS name"}`
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	s.handleQuery(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Columns []string        `json:"columns"`
		Rows    [][]interface{} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"name"}, resp.Columns)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "Ada", resp.Rows[0][0])
}

func TestHandleNodesCreatesNode(t *testing.T) {
	s := newTestServer(t)
	body := `{"labels": ["Person"], "props": {"name": "Bob"}}`
	req := httptest.NewRequest(http.MethodPost, "/nodes", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	s.handleNodes(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandleRelationshipsRejectsUnknownEndpoint(t *testing.T) {
	s := newTestServer(t)
	body := `{"from": 1, "to": 2, "type": "KNOWS"}`
	req := httptest.NewRequest(http.MethodPost, "/relationships", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	s.handleRelationships(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCorsMiddlewareAllowsConfiguredOrigin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := corsMiddleware(mux)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorsMiddlewareHandlesPreflight(t *testing.T) {
	mux := http.NewServeMux()
	handler := corsMiddleware(mux)
	req := httptest.NewRequest(http.MethodOptions, "/query", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
