package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSONBytes(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// requireGet rejects anything but GET and reports whether the request may
// proceed.
func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// parseLimit reads a positive integer query parameter, falling back when the
// parameter is absent.
func parseLimit(r *http.Request, name string, fallback int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, v)
	}
	return n, nil
}

// parseBucket reads a Go duration query parameter ("1h", "30m").
func parseBucket(r *http.Request, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(r.URL.Query().Get("bucket"))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid bucket %q: must be a positive duration", v)
	}
	return d, nil
}

// parseEdges reads a comma-separated, strictly ascending list of histogram
// edges ("0,5,10,50").
func parseEdges(r *http.Request, fallback []float64) ([]float64, error) {
	v := strings.TrimSpace(r.URL.Query().Get("edges"))
	if v == "" {
		return fallback, nil
	}
	parts := strings.Split(v, ",")
	edges := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid edge %q: must be a number", p)
		}
		edges = append(edges, f)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, fmt.Errorf("invalid edges %q: must be strictly ascending", v)
		}
	}
	return edges, nil
}

func edgesKey(edges []float64) string {
	if len(edges) == 0 {
		return "default"
	}
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = strconv.FormatFloat(e, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
