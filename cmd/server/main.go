// Command cypherdb-server exposes a single open Handle over HTTP:
// /query, /nodes, /relationships, /metrics. Adapted from the teacher's
// CORS-wrapped /query handler, generalized from "load a graph blob per
// request" to one process-wide Handle serving many requests (the
// embedding API's Backend gives durability without per-request reloads).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cypherdb/cypherdb"
	"github.com/cypherdb/cypherdb/internal/config"
	"github.com/cypherdb/cypherdb/internal/cylog"
	"github.com/cypherdb/cypherdb/internal/metrics"
	"github.com/cypherdb/cypherdb/internal/value"
)

var allowedOrigins = []string{
	"http://localhost:5173",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type server struct {
	h   *cypherdb.Handle
	met *metrics.Registry
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		Text   string                 `json:"text"`
		Params map[string]interface{} `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Text == "" {
		writeError(w, http.StatusBadRequest, "missing field: text")
		return
	}

	params := make(map[string]value.Value, len(body.Params))
	for k, v := range body.Params {
		params[k] = toValue(v)
	}

	start := time.Now()
	rs, err := s.h.Execute(r.Context(), body.Text, params)
	rows := 0
	if rs != nil {
		rows = len(rs.Rows)
	}
	s.met.ObserveQuery(firstClause(body.Text), time.Since(start).Seconds(), rows, err)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Columns []string        `json:"columns"`
		Rows    [][]interface{} `json:"rows"`
	}{Columns: rs.Columns, Rows: rowsToJSON(rs)})
}

func (s *server) handleNodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		Labels []string               `json:"labels"`
		Props  map[string]interface{} `json:"props"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	props := make(map[string]value.Value, len(body.Props))
	for k, v := range body.Props {
		props[k] = toValue(v)
	}
	ref, err := s.h.CreateNode(body.Labels, props)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		ID     int64    `json:"id"`
		Labels []string `json:"labels"`
	}{ID: ref.ID, Labels: ref.Labels})
}

func (s *server) handleRelationships(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		From  int64                  `json:"from"`
		To    int64                  `json:"to"`
		Type  string                 `json:"type"`
		Props map[string]interface{} `json:"props"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	props := make(map[string]value.Value, len(body.Props))
	for k, v := range body.Props {
		props[k] = toValue(v)
	}
	ref, err := s.h.CreateRelationship(
		value.NodeRef{ID: body.From}, value.NodeRef{ID: body.To}, body.Type, props)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		ID   int64  `json:"id"`
		Type string `json:"type"`
	}{ID: ref.ID, Type: ref.Type})
}

// firstClause extracts the leading keyword of a statement for metric
// labelling (e.g. "MATCH", "CREATE"), falling back to "UNKNOWN" for an
// empty or whitespace-only statement.
func firstClause(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}

func rowsToJSON(rs *cypherdb.ResultSet) [][]interface{} {
	projected := rs.Project()
	out := make([][]interface{}, len(projected))
	for i, row := range projected {
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v.String()
		}
		out[i] = vals
	}
	return out
}

// toValue converts a JSON-decoded query parameter to a runtime Value. Only
// the JSON-native scalar/list/object shapes are reachable from an HTTP
// request body; temporal/spatial Values can only be constructed from
// Cypher text itself (no JSON wire shape is defined for them here).
func toValue(v interface{}) value.Value {
	switch t := v.(type) {
	case nil:
		return value.NullValue
	case bool:
		return value.BoolValue(t)
	case float64:
		if t == float64(int64(t)) {
			return value.IntValue(int64(t))
		}
		return value.FloatValue(t)
	case string:
		return value.StringValue(t)
	case []interface{}:
		items := make([]value.Value, len(t))
		for i, item := range t {
			items[i] = toValue(item)
		}
		return value.ListValue(items)
	case map[string]interface{}:
		m := value.NewOrderedMap()
		for k, item := range t {
			m.Set(k, toValue(item))
		}
		return value.MapValue(m)
	default:
		return value.NullValue
	}
}

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	dbPath := flag.String("db", "", "path to a durable graph file (empty = in-memory)")
	flag.Parse()

	cfg := config.Load()
	if *dbPath == "" {
		*dbPath = cfg.BackendPath
	}

	h, err := cypherdb.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(flag.CommandLine.Output(), "opening handle: %v\n", err)
		return
	}
	defer h.Close()

	reg := prometheus.NewRegistry()
	s := &server{h: h, met: metrics.New(reg)}

	mux := http.NewServeMux()
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/nodes", s.handleNodes)
	mux.HandleFunc("/relationships", s.handleRelationships)
	mux.Handle("/metrics", metrics.Handler(reg))

	addr := fmt.Sprintf(":%d", *port)
	cylog.Std().WithField("addr", addr).Info("cypherdb server listening")
	if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
		cylog.Std().WithError(err).Error("server error")
	}
}
