// Package relay is the HTTP surface the PersonaGen web client talks to.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dotsetgreg/personagen/pkg/heuristics"
	"github.com/dotsetgreg/personagen/pkg/logger"
	"github.com/dotsetgreg/personagen/pkg/metrics"
	"github.com/dotsetgreg/personagen/pkg/persona"
	"github.com/dotsetgreg/personagen/pkg/session"
	"github.com/dotsetgreg/personagen/pkg/speech"
)

const (
	defaultMaxUploadBytes = 32 << 20
	shutdownTimeout       = 10 * time.Second
)

type Options struct {
	Addr           string
	UploadDir      string
	MaxUploadBytes int64
	MaxPDFPages    int
	AllowOrigins   []string
	HistoryLimit   int
	// DefaultVoice is used by /speak when neither a voice nor a nationality
	// is given.
	DefaultVoice string
	// ProviderName is reported by /ready.
	ProviderName string
}

// Deps are the collaborators behind the routes. Remote may be nil, in which
// case chat is answered locally. Speech may be nil when synthesis is off.
type Deps struct {
	Builder  *persona.Builder
	Remote   persona.ChatResponder
	Speech   speech.Synthesizer
	Sessions session.Store
	Metrics  *metrics.Metrics
	Jitter   heuristics.Jitter
}

type Server struct {
	opts     Options
	builder  *persona.Builder
	remote   persona.ChatResponder
	speech   speech.Synthesizer
	sessions session.Store
	metrics  *metrics.Metrics
	jitter   heuristics.Jitter
	engine   *gin.Engine
}

func New(opts Options, deps Deps) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = persona.DefaultHistoryLimit
	}
	if deps.Builder == nil {
		deps.Builder = persona.NewBuilder(nil)
	}
	if deps.Speech == nil {
		deps.Speech = speech.Disabled{}
	}
	if deps.Jitter == nil {
		deps.Jitter = heuristics.NoJitter
	}

	s := &Server{
		opts:     opts,
		builder:  deps.Builder,
		remote:   deps.Remote,
		speech:   deps.Speech,
		sessions: deps.Sessions,
		metrics:  deps.Metrics,
		jitter:   deps.Jitter,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = s.opts.MaxUploadBytes
	r.Use(gin.Recovery(), requestLogger(s.metrics), corsMiddleware(s.opts.AllowOrigins))

	r.POST("/chat", s.handleChat)
	r.POST("/upload_pdf", s.handleUploadPDF)
	r.POST("/upload", s.handleUpload)
	r.POST("/speak", s.handleSpeak)

	r.GET("/personas/samples", s.handleListSamples)
	r.GET("/personas/samples/:id", s.handleGetSample)

	sessions := r.Group("/sessions/:id")
	{
		sessions.GET("", s.handleGetSession)
		sessions.PUT("/persona", s.handlePutSessionPersona)
		sessions.POST("/chat", s.handleSessionChat)
	}

	r.GET("/health", s.handleHealth)
	r.GET("/ready", s.handleReady)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	allowAll := len(origins) == 0
	var list []string
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		if o != "" && o != "*" {
			list = append(list, o)
		}
	}
	if allowAll || len(list) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = list
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoCF("relay", "HTTP relay listening", map[string]interface{}{"addr": s.opts.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http relay: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.InfoCF("relay", "Shutting down HTTP relay", nil)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http relay: %w", err)
	}
	return nil
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
