package api

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/etm-murmansk/site/pkg/apperr"
	"github.com/etm-murmansk/site/pkg/auth"
	"github.com/etm-murmansk/site/pkg/config"
	"github.com/etm-murmansk/site/pkg/content"
	"github.com/etm-murmansk/site/pkg/httputil"
	"github.com/etm-murmansk/site/pkg/middleware"
	"github.com/etm-murmansk/site/pkg/observability"
	"github.com/etm-murmansk/site/pkg/uploads"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// maxJSONBody caps JSON request bodies
const maxJSONBody = 1 << 20

// Dependencies are the collaborators of the API server. LoginLimiter, Clock
// and Metrics are optional.
type Dependencies struct {
	DB           *sql.DB
	Auth         *auth.Service
	Uploads      *uploads.Service
	Sanitizer    *content.Sanitizer
	Metrics      *observability.Metrics
	Logger       *logrus.Logger
	LoginLimiter middleware.LoginLimiter
	Clock        func() time.Time
}

// Server is the site API
type Server struct {
	prefix  string
	router  *mux.Router
	handler http.Handler
	routes  []Route

	auth        *auth.Service
	uploads     *uploads.Service
	limiter     middleware.LoginLimiter
	limitWindow time.Duration
	metrics     *observability.Metrics
}

// NewServer builds the route table and middleware chain
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = content.NewSanitizer()
	}

	s := &Server{
		prefix:      strings.TrimRight(cfg.Server.APIPrefix, "/"),
		router:      mux.NewRouter(),
		auth:        deps.Auth,
		uploads:     deps.Uploads,
		limiter:     deps.LoginLimiter,
		limitWindow: cfg.Auth.LoginLimitWindow,
		metrics:     deps.Metrics,
	}

	s.routes = append(s.routes, s.authRoutes()...)
	s.routes = append(s.routes, newResource(RouteProjects, content.Projects, deps, sanitizer).routes()...)
	s.routes = append(s.routes, newResource(RoutePartners, content.Partners, deps, sanitizer).routes()...)
	s.routes = append(s.routes, newResource(RouteCertificates, content.Certificates, deps, sanitizer).routes()...)
	s.routes = append(s.routes, Route{
		Kind:      RouteUpload,
		Method:    http.MethodPost,
		Resource:  "upload",
		Protected: true,
		Handler:   s.upload,
	})

	s.setupRoutes()

	s.handler = httputil.Chain(
		httputil.RecoveryMiddleware(logger),
		httputil.RequestIDMiddleware(logger),
		httputil.LoggingMiddleware(),
		httputil.CORSMiddleware(cfg.CORS.AllowedOrigins),
		s.trimTrailingSlash,
	)(s.router)

	return s
}

// setupRoutes registers the route table on the router
func (s *Server) setupRoutes() {
	instrument := func(h http.Handler) http.Handler { return h }
	if s.metrics != nil {
		instrument = observability.HTTPMetricsMiddleware(s.metrics)
		s.router.Use(instrument)
	}

	for _, rt := range s.routes {
		var h http.Handler = rt.Handler
		if rt.Protected {
			h = s.requireAuth(h)
		}
		if rt.Kind != RouteUpload {
			h = httputil.MaxBytesMiddleware(maxJSONBody)(h)
		}
		s.router.Handle(rt.Path(s.prefix), h).Methods(rt.Method)
	}

	// Any other method or action under auth/.
	s.router.HandleFunc(s.prefix+"/auth", s.unknownAuthAction)
	s.router.HandleFunc(s.prefix+"/auth/{action}", s.unknownAuthAction)

	s.router.NotFoundHandler = instrument(http.HandlerFunc(routeNotFound))
	s.router.MethodNotAllowedHandler = instrument(http.HandlerFunc(methodNotAllowed))
}

// Routes returns a copy of the route table
func (s *Server) Routes() []Route {
	out := make([]Route, len(s.routes))
	copy(out, s.routes)
	return out
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// requireAuth rejects requests without a valid bearer token and stores the
// admin id in the request context
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminID, err := s.auth.RequireAuth(r.Context(), httputil.BearerToken(r))
		if err != nil {
			httputil.WriteAppError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithAdminID(r.Context(), adminID)))
	})
}

// trimTrailingSlash lets "/api/projects/" reach the same route as "/api/projects"
func (s *Server) trimTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			r.URL.Path = strings.TrimRight(p, "/")
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
		}
		next.ServeHTTP(w, r)
	})
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteAppError(w, r, apperr.NotFound(apperr.MsgRouteNotFound))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteAppError(w, r, apperr.New(apperr.KindMethodNotAllowed, apperr.MsgMethodNotAllowed))
}
