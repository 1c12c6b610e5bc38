// Package server 暴露推荐服务的 HTTP 接口。
//
//	GET  /v1/recommendations?user_id=&course_id=&top_n=&alpha=
//	POST /v1/admin/reload
//	GET  /healthz
//	GET  /metrics
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/service"
)

// Server 是 HTTP 层，持有推荐服务与指标。
type Server struct {
	rec         *service.Recommender
	logger      zerolog.Logger
	metrics     *Metrics
	registry    *prometheus.Registry
	defaultTopN int
	router      chi.Router
}

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithDefaultTopN 设置请求未带 top_n 时的数量。
func WithDefaultTopN(n int) Option {
	return func(s *Server) { s.defaultTopN = n }
}

// WithRegistry 指定 Prometheus Registry，默认新建。
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

func New(rec *service.Recommender, opts ...Option) *Server {
	s := &Server{
		rec:         rec,
		logger:      zerolog.Nop(),
		defaultTopN: service.DefaultTopN,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry, rec)
	s.router = s.routes()
	return s
}

// Handler 返回根 http.Handler。
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/recommendations", s.handleRecommend)
		r.Post("/admin/reload", s.handleReload)
	})
	return r
}

// observe 记录访问日志与请求指标，route 取 chi 的路由模板以控制 label 基数。
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		took := time.Since(start)
		s.metrics.observeRequest(r.Method, route, status, took)
		s.logger.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("took", took).
			Msg("http request")
	})
}

type recommendResponse struct {
	Items []core.CourseRecord `json:"items"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, core.ErrorCodeInvalidArgument, err.Error())
		return
	}

	recs, err := s.rec.Recommend(r.Context(), q)
	if err != nil {
		status, code := statusOf(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error().Err(err).Str("request_id", chimiddleware.GetReqID(r.Context())).Msg("recommend failed")
		}
		respondError(w, status, code, err.Error())
		return
	}
	s.metrics.results.Observe(float64(len(recs)))
	respondJSON(w, http.StatusOK, &recommendResponse{Items: recs})
}

// parseQuery 解析查询参数。user_id / course_id 缺省或为 0 表示未提供；top_n 缺省取默认值。
func (s *Server) parseQuery(r *http.Request) (service.Query, error) {
	values := r.URL.Query()
	q := service.Query{TopN: s.defaultTopN}

	var err error
	if q.UserID, err = optionalID(values.Get("user_id"), "user_id"); err != nil {
		return q, err
	}
	if q.CourseID, err = optionalID(values.Get("course_id"), "course_id"); err != nil {
		return q, err
	}
	if v := values.Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidArgument, "top_n must be an integer")
		}
		q.TopN = n
	}
	if v := values.Get("alpha"); v != "" {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidArgument, "alpha must be a number")
		}
		q.Alpha = &a
	}
	return q, nil
}

func optionalID(v, name string) (*int64, error) {
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidArgument, name+" must be an integer")
	}
	if id == 0 {
		return nil, nil
	}
	return &id, nil
}

type snapshotResponse struct {
	Status  string    `json:"status"`
	Version string    `json:"version,omitempty"`
	Source  string    `json:"source,omitempty"`
	BuiltAt time.Time `json:"built_at,omitempty"`
	Courses int       `json:"courses"`
	Users   int       `json:"users"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.rec.Snapshot()
	if snap == nil {
		respondJSON(w, http.StatusServiceUnavailable, &snapshotResponse{Status: "loading"})
		return
	}
	respondJSON(w, http.StatusOK, &snapshotResponse{
		Status:  "ok",
		Version: snap.Version,
		Source:  snap.Source,
		BuiltAt: snap.BuiltAt,
		Courses: snap.Content.Len(),
		Users:   snap.Similarity.Len(),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.rec.Reload(r.Context())
	s.metrics.observeReload(err)
	if err != nil {
		s.logger.Error().Err(err).Msg("reload failed, keeping previous snapshot")
		_, code := statusOf(err)
		respondError(w, http.StatusInternalServerError, code, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, &snapshotResponse{
		Status:  "reloaded",
		Version: snap.Version,
		Source:  snap.Source,
		BuiltAt: snap.BuiltAt,
		Courses: snap.Content.Len(),
		Users:   snap.Similarity.Len(),
	})
}
