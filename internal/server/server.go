package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/auth"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/blob"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/dispatch"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/lawyers"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/pdftext"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/store"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/config"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/logger"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/util"
)

const shutdownTimeout = 10 * time.Second

// Analyzer runs prompts through the model/key fallback chain
type Analyzer interface {
	Dispatch(ctx context.Context, prompt string) (*dispatch.Result, error)
	Models() []dispatch.ModelInfo
	Credentials() []dispatch.CredentialStats
	CheckQuota(ctx context.Context) []dispatch.QuotaStatus
}

// Deps are the collaborators behind the HTTP handlers.
// Records and Blobs may be nil when no storage backend is configured.
type Deps struct {
	Analyzer Analyzer
	Users    store.UserStore
	Records  store.RecordStore
	Blobs    blob.Store
	Tokens   *auth.Issuer
	Lawyers  *lawyers.Directory
	// HTTPClient is used by /debug/ip
	HTTPClient util.Doer
	// ExtractText defaults to pdftext.Extract
	ExtractText func([]byte) (string, error)
}

// Server represents the HTTP API
type Server struct {
	config     *config.Config
	deps       Deps
	router     *gin.Engine
	httpServer *http.Server
	ready      chan struct{}
	started    time.Time
	now        func() time.Time
}

// New creates a new server instance with every route registered
func New(cfg *config.Config, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Debug {
		router.Use(gin.Logger())
	}
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if deps.ExtractText == nil {
		deps.ExtractText = pdftext.Extract
	}

	s := &Server{
		config:  cfg,
		deps:    deps,
		router:  router,
		ready:   make(chan struct{}),
		started: time.Now(),
		now:     time.Now,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured port and serves until ctx is done
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return NewError(ErrServerStart, fmt.Sprintf("listen on port %d", s.config.Port), err)
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	logger.Infof("HTTP server listening on %s", ln.Addr())
	close(s.ready)

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return NewError(ErrServerStart, "serve", err)
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return NewError(ErrServerShutdown, "graceful shutdown", err)
	}
	return nil
}

// Ready is closed once the listener is bound
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// routeHelp is listed by the 404 handler
var routeHelp = []string{
	"GET /health - Enhanced system health check",
	"GET /api/quota - API key quota monitoring",
	"POST /api/analyze - Legal analysis with enhanced timeout",
	"POST /api/signup - Create an account",
	"POST /api/login - Sign in",
	"POST /api/queries - Save a legal query (auth)",
	"POST /api/upload-fir - Upload and analyze an FIR (auth)",
	"POST /api/auth - Authentication system",
	"GET /api/dashboard - Dashboard data",
	"GET /api/lawyers - Lawyer directory",
	"GET /debug/ip - Server IP information",
	"GET / - Landing page",
	"GET /results - Legal analysis interface",
	"GET /auth - Authentication page",
	"GET /dashboard - Professional dashboard",
}

func (s *Server) setupRoutes() {
	r := s.router

	r.GET("/health", s.handleHealth)
	r.GET("/debug/ip", s.handleDebugIP)

	api := r.Group("/api")
	api.POST("/analyze", s.handleAnalyze)
	api.GET("/quota", s.handleQuota)
	api.POST("/signup", s.handleSignup)
	api.POST("/login", s.handleLogin)
	api.GET("/captcha", s.handleNewCaptcha)
	api.GET("/captcha/:file", s.handleCaptchaImage)
	api.POST("/auth", s.handleDemoAuth)
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/lawyers", s.handleLawyers)
	api.GET("/lawyers/specialization/:specialization", s.handleLawyersBySpecialization)
	api.GET("/lawyers/:id", s.handleLawyer)

	private := api.Group("", auth.RequireToken(s.deps.Tokens))
	private.POST("/queries", s.handleSaveQuery)
	private.POST("/upload-fir", s.handleUploadFIR)

	r.GET("/files/:name", s.handleFile)

	r.GET("/", s.page("index.html"))
	r.GET("/results", s.page("results.html"))
	r.GET("/auth", s.page("auth.html"))
	r.GET("/dashboard", s.page("dashboard.html"))

	r.NoRoute(s.handleNotFound)
}

// fail writes {"success": false, "error": message} and logs err when present
// recordStore returns the configured record store or an ErrStorageUnavailable error
func (s *Server) recordStore() (store.RecordStore, error) {
	if s.deps.Records == nil {
		return nil, NewError(ErrStorageUnavailable, "no record store configured", nil)
	}
	return s.deps.Records, nil
}

func (s *Server) blobStore() (blob.Store, error) {
	if s.deps.Blobs == nil {
		return nil, NewError(ErrStorageUnavailable, "no blob store configured", nil)
	}
	return s.deps.Blobs, nil
}

func fail(c *gin.Context, status int, message string, err error) {
	if err != nil {
		logger.Errorf("%s %s: %s: %v", c.Request.Method, c.Request.URL.Path, message, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func timeOrNever(t time.Time, layout string) string {
	if t.IsZero() {
		return "Never"
	}
	if layout == "" {
		return isoTime(t)
	}
	return t.Local().Format(layout)
}
