// Package server exposes the judgement pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/valpere/amicooked/internal"
	"github.com/valpere/amicooked/internal/config"
)

const shutdownTimeout = 10 * time.Second

// Judger runs one judgement. *orchestrator.Orchestrator implements it.
type Judger interface {
	JudgeScenario(ctx context.Context, scenario, language string) (*internal.Outcome, error)
	MaxLength() int
}

type Server struct {
	cfg     config.Server
	judger  Judger
	log     *zap.Logger
	limiter *ipLimiter
	engine  *gin.Engine
}

func New(cfg config.Server, j Judger, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:     cfg,
		judger:  j,
		log:     log,
		limiter: newIPLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	// Rate limiting keys on the peer address; forwarded headers are ignored.
	r.SetTrustedProxies(nil)

	r.Use(recovery(s.log), requestID(), accessLog(s.log))
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(s.cfg.AllowedOrigins)))
	}

	r.GET("/api/health", s.handleHealth)

	judge := []gin.HandlerFunc{rateLimit(s.limiter), s.handleJudge}
	r.POST("/api/judge", judge...)
	r.POST("/.netlify/functions/judge", judge...)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowOrigins = nil
			cfg.AllowAllOrigins = true
			break
		}
	}
	return cfg
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on :port until ctx is done, then drains in-flight requests for
// up to 10 seconds.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.limiter.run(sweepCtx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
