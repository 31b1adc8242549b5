package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"dons/internal/core"
	"dons/internal/kpi"
)

// serveCached writes the marshaled result of build, memoizing it under key.
// Keys embed the dataset version, so stale entries simply stop being asked
// for after a refresh and age out of the LRU.
func (s *Server) serveCached(w http.ResponseWriter, key string, build func() any) {
	if body, ok := s.payloadCache.Get(key); ok {
		writeJSONBytes(w, http.StatusOK, body)
		return
	}

	body, err := json.Marshal(build())
	if err != nil {
		slog.Error("Failed to marshal response", "error", err, "cache_key", key)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.payloadCache.Set(key, body)
	writeJSONBytes(w, http.StatusOK, body)
}

// requireDataset fetches the current dataset, answering 503 when nothing has
// been loaded yet.
func (s *Server) requireDataset(w http.ResponseWriter) *dataset {
	ds := s.snapshot()
	if ds == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
	}
	return ds
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ds := s.requireDataset(w)
	if ds == nil {
		return
	}
	if !ds.hasData {
		writeError(w, http.StatusNotFound, "empty dataset")
		return
	}
	s.serveCached(w, fmt.Sprintf("summary:v%d", ds.version), func() any {
		return ds.summary
	})
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ds := s.requireDataset(w)
	if ds == nil {
		return
	}
	s.serveCached(w, fmt.Sprintf("kpis:v%d", ds.version), func() any {
		return kpi.Main(ds.table)
	})
}

type rateResponse struct {
	DonationsPerHour float64 `json:"donations_per_hour"`
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ds := s.requireDataset(w)
	if ds == nil {
		return
	}
	s.serveCached(w, fmt.Sprintf("rate:v%d", ds.version), func() any {
		return rateResponse{DonationsPerHour: kpi.RatePerHour(ds.table)}
	})
}

func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ds := s.requireDataset(w)
	if ds == nil {
		return
	}
	s.serveCached(w, fmt.Sprintf("hourly:v%d", ds.version), func() any {
		return kpi.Hourly(ds.table)
	})
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ds := s.requireDataset(w)
	if ds == nil {
		return
	}
	edges, err := parseEdges(r, s.edges)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveCached(w, fmt.Sprintf("distribution:v%d:%s", ds.version, edgesKey(edges)), func() any {
		return kpi.Distribution(ds.table, edges)
	})
}

func (s *Server) handleTopDonors(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ds := s.requireDataset(w)
	if ds == nil {
		return
	}
	n, err := parseLimit(r, "n", s.topDonors)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveCached(w, fmt.Sprintf("top-donors:v%d:%d", ds.version, n), func() any {
		return kpi.TopDonors(ds.table, n)
	})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ds := s.requireDataset(w)
	if ds == nil {
		return
	}
	bucket, err := parseBucket(r, s.bucket)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveCached(w, fmt.Sprintf("timeline:v%d:%s", ds.version, bucket), func() any {
		return kpi.Timeline(ds.table, bucket)
	})
}

func (s *Server) handleCampuses(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ds := s.requireDataset(w)
	if ds == nil {
		return
	}
	s.serveCached(w, fmt.Sprintf("campuses:v%d", ds.version), func() any {
		return kpi.Campuses(ds.table)
	})
}

// DashboardResponse bundles every aggregate the dashboard needs into one
// payload so a page load is a single round trip.
type DashboardResponse struct {
	Summary          *core.Summary        `json:"summary,omitempty"`
	KPIs             core.KPISet          `json:"kpis"`
	DonationsPerHour float64              `json:"donations_per_hour"`
	Hourly           []core.HourlyStat    `json:"hourly"`
	Distribution     []core.AmountBin     `json:"distribution"`
	TopDonors        []core.DonorRank     `json:"top_donors"`
	Timeline         []core.TimelinePoint `json:"timeline"`
	Campuses         []core.CampusStat    `json:"campuses"`
	GeneratedAt      time.Time            `json:"generated_at"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ds := s.requireDataset(w)
	if ds == nil {
		return
	}
	s.serveCached(w, fmt.Sprintf("dashboard:v%d", ds.version), func() any {
		resp := DashboardResponse{GeneratedAt: time.Now()}
		if ds.hasData {
			summary := ds.summary
			resp.Summary = &summary
		}

		// The aggregations are independent and read-only over the same
		// snapshot, so fan them out.
		g, _ := errgroup.WithContext(r.Context())
		g.Go(func() error {
			resp.KPIs = kpi.Main(ds.table)
			return nil
		})
		g.Go(func() error {
			resp.DonationsPerHour = kpi.RatePerHour(ds.table)
			return nil
		})
		g.Go(func() error {
			resp.Hourly = kpi.Hourly(ds.table)
			return nil
		})
		g.Go(func() error {
			resp.Distribution = kpi.Distribution(ds.table, s.edges)
			return nil
		})
		g.Go(func() error {
			resp.TopDonors = kpi.TopDonors(ds.table, s.topDonors)
			return nil
		})
		g.Go(func() error {
			resp.Timeline = kpi.Timeline(ds.table, s.bucket)
			return nil
		})
		g.Go(func() error {
			resp.Campuses = kpi.Campuses(ds.table)
			return nil
		})
		_ = g.Wait()

		return resp
	})
}

type refreshResponse struct {
	Status      string        `json:"status"`
	RecordCount int           `json:"record_count"`
	TotalAmount float64       `json:"total_amount"`
	Summary     *core.Summary `json:"summary,omitempty"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summary, err := s.Refresh(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Dataset refresh failed", "error", err, "source", s.source)
		switch {
		case errors.Is(err, core.ErrSourceNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, core.ErrMalformedInput):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "refresh failed")
		}
		return
	}

	ds := s.snapshot()
	writeJSON(w, http.StatusOK, refreshResponse{
		Status:      "refreshed",
		RecordCount: len(ds.table),
		TotalAmount: ds.table.TotalAmount(),
		Summary:     summary,
	})
}
