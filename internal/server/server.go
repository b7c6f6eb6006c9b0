// Package server exposes the normalized station list and point-series
// slices over a local HTTP API, fronting the upstream weather service
// with TTL caching.
package server

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skywatch-labs/stationglobe/internal/config"
	"github.com/skywatch-labs/stationglobe/internal/geodata"
	"github.com/skywatch-labs/stationglobe/internal/upstream"
)

// Server is the local station API.
type Server struct {
	cfg     config.Config
	client  *upstream.Client
	cache   *upstream.TTLCache
	metrics *metricsProvider
}

// New builds a server around the given upstream client.
func New(cfg config.Config, client *upstream.Client) *Server {
	return &Server{
		cfg:     cfg,
		client:  client,
		cache:   upstream.NewTTLCache(),
		metrics: newMetrics(),
	}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	r.Use(requestID)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/stations", s.metrics.instrument("stations", s.handleStations))
		r.Get("/stations/{stationID}/points", s.metrics.instrument("points", s.handlePoints))
		r.Post("/compare", s.metrics.instrument("compare", s.handleCompare))
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("server: listening", zap.Int("port", s.cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

// handleStations serves the normalized station list, optionally filtered
// by substring (q), network, and timezone.
func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Data.StationsSource == "" {
		writeError(w, http.StatusNotFound, "no station source configured")
		return
	}

	raw, err := s.client.Fetch(r.Context(), s.cfg.Data.StationsSource)
	if err != nil {
		zap.L().Error("server: station fetch failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "station source unavailable")
		return
	}
	stations, err := geodata.ParseStations(raw)
	if err != nil {
		zap.L().Error("server: station parse failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "station document unrecognized")
		return
	}

	q := strings.ToLower(r.URL.Query().Get("q"))
	network := r.URL.Query().Get("network")
	tz := r.URL.Query().Get("tz")

	out := make([]geodata.Station, 0, len(stations))
	for _, st := range stations {
		if q != "" && !strings.Contains(strings.ToLower(st.ID), q) && !strings.Contains(strings.ToLower(st.Name), q) {
			continue
		}
		if network != "" && st.Network != network {
			continue
		}
		if tz != "" && st.Timezone != tz {
			continue
		}
		out = append(out, st)
	}

	writeJSON(w, http.StatusOK, out)
}

// handlePoints serves a cached, windowed slice of one station's series.
func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationID")
	query := r.URL.Query()

	opts := upstream.SliceOptions{
		Start:    query.Get("start"),
		End:      query.Get("end"),
		Resample: query.Get("resample"),
	}
	for _, v := range strings.Split(query.Get("vars"), ",") {
		if v = strings.TrimSpace(v); v != "" {
			opts.Vars = append(opts.Vars, v)
		}
	}

	key := sliceKey(stationID, opts)
	body, err := s.cachedJSON(r.Context(), key, func(ctx context.Context) (any, error) {
		raw, err := s.client.FetchStationRaw(ctx, stationID)
		if err != nil {
			return nil, err
		}
		slice, err := upstream.BuildSlice(raw, opts)
		if err != nil {
			return nil, err
		}
		slice.Station = stationID
		return slice, nil
	})
	if err != nil {
		zap.L().Error("server: points failed", zap.String("station", stationID), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeRawJSON(w, http.StatusOK, body)
}

type compareRequest struct {
	StationIDs []string `json:"stationIds"`
	Vars       []string `json:"vars,omitempty"`
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
	Resample   string   `json:"resample,omitempty"`
}

// handleCompare outer-joins several stations' slices on timestamp.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.StationIDs) == 0 {
		writeError(w, http.StatusBadRequest, "stationIds is required")
		return
	}

	ids := dedupeSorted(req.StationIDs)
	opts := upstream.SliceOptions{Start: req.Start, End: req.End, Vars: req.Vars, Resample: req.Resample}

	key := "cmp:" + hashKey(strings.Join(ids, ",")+"|"+sliceKey("", opts))
	body, err := s.cachedJSON(r.Context(), key, func(ctx context.Context) (any, error) {
		perStation := make(map[string][]upstream.Row, len(ids))
		g, gctx := errgroup.WithContext(ctx)
		var mu sync.Mutex
		for _, id := range ids {
			g.Go(func() error {
				raw, err := s.client.FetchStationRaw(gctx, id)
				if err != nil {
					return err
				}
				slice, err := upstream.BuildSlice(raw, opts)
				if err != nil {
					return err
				}
				rows := rowsFromSlice(slice)
				mu.Lock()
				perStation[id] = rows
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return upstream.MergeComparison(ids, perStation), nil
	})
	if err != nil {
		zap.L().Error("server: compare failed", zap.Strings("ids", ids), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeRawJSON(w, http.StatusOK, body)
}

// cachedJSON serves the marshaled value for key from the slice cache,
// running build and storing the result on a miss.
func (s *Server) cachedJSON(ctx context.Context, key string, build func(context.Context) (any, error)) ([]byte, error) {
	if body, ok := s.cache.Get(key); ok {
		s.metrics.cacheHits.Inc()
		return body, nil
	}
	// The miss is counted inside the loader so coalesced callers and the
	// in-flight re-check do not inflate the count: one build, one miss.
	return s.cache.GetOrLoad(ctx, key, s.cfg.Data.SliceTTL, func(ctx context.Context) ([]byte, error) {
		s.metrics.cacheMisses.Inc()
		v, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
}

func sliceKey(stationID string, opts upstream.SliceOptions) string {
	return "slice:" + hashKey(fmt.Sprintf("%s|%s|%s|%v|%s",
		stationID, opts.Start, opts.End, opts.Vars, opts.Resample))
}

func hashKey(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

func dedupeSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// rowsFromSlice converts wire points back into rows for merging.
func rowsFromSlice(sl *upstream.Slice) []upstream.Row {
	rows := make([]upstream.Row, 0, len(sl.Points))
	for _, p := range sl.Points {
		tsRaw, _ := p["timestamp"].(string)
		ts, err := time.Parse(time.RFC3339, tsRaw)
		if err != nil {
			continue
		}
		values := make(map[string]float64, len(p)-1)
		for k, v := range p {
			if k == "timestamp" {
				continue
			}
			if f, ok := v.(float64); ok {
				values[k] = f
			}
		}
		rows = append(rows, upstream.Row{Timestamp: ts, Values: values})
	}
	return rows
}

// requestID tags every request with a correlation id for log stitching.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
