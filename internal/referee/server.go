package referee

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danmuck/scorchedearth/internal/auth"
	"github.com/danmuck/scorchedearth/internal/config"
	"github.com/danmuck/scorchedearth/internal/node"
	"github.com/danmuck/scorchedearth/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

// Referee is the HTTP validation node: a stateless transition check plus a
// registry of channels it referees turn by turn.
type Referee struct {
	ID       string    `json:"id"`
	Addr     string    `json:"addr"`
	Appeared time.Time `json:"appeared"`
	Channels *Registry `json:"-"`

	router          *gin.Engine
	basePath        string
	shutdownTimeout time.Duration
	guard           []gin.HandlerFunc
	tlsCertFile     string
	tlsKeyFile      string
}

var _ node.Node = (*Referee)(nil)

func Appear(cfg config.RefereeConfig) *Referee {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.ID))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  normalizeOrigins(cfg.CorsOrigins),
		AllowMethods:  []string{"GET", "POST", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", observability.HeaderRequestID},
		ExposeHeaders: []string{observability.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}))
	_ = r.SetTrustedProxies(cfg.TrustedProxies)

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultRefereeConfig().ShutdownTimeout
	}
	s := &Referee{
		ID:              cfg.ID,
		Addr:            cfg.Addr,
		Appeared:        time.Now(),
		Channels:        NewRegistry(cfg.MaxChannels),
		router:          r,
		basePath:        cfg.BasePath,
		shutdownTimeout: timeout,
		tlsCertFile:     cfg.TLSCertFile,
		tlsKeyFile:      cfg.TLSKeyFile,
	}
	if cfg.APIToken != "" {
		s.guard = []gin.HandlerFunc{auth.Require(auth.StaticToken{Token: cfg.APIToken})}
	}
	return s
}

func (s *Referee) NodeID() string {
	return s.ID
}

func (s *Referee) Kind() string {
	return "referee"
}

func (s *Referee) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Referee) RegisterRoutes() {
	routes := s.routes()
	routes.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	routes.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":    true,
			"uptime":   time.Since(s.Appeared).String(),
			"service":  s.ID,
			"version":  version,
			"channels": s.Channels.Len(),
		})
	})

	routes.POST("/transitions/validate", s.handleValidate)
	routes.GET("/channels", s.handleListChannels)
	routes.GET("/channels/:id", s.handleGetChannel)
	routes.POST("/channels/:id/check", s.handleCheckTurn)
	routes.POST("/channels", s.guarded(s.handleOpenChannel)...)
	routes.DELETE("/channels/:id", s.guarded(s.handleCloseChannel)...)
	routes.POST("/channels/:id/turns", s.guarded(s.handleAppendTurn)...)
}

// guarded prefixes h with the token check when an API token is configured.
func (s *Referee) guarded(h gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc{}, s.guard...), h)
}

// TLSConfig loads the configured key pair. It returns nil when TLS is off.
func (s *Referee) TLSConfig() (*tls.Config, error) {
	if s.tlsCertFile == "" && s.tlsKeyFile == "" {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(s.tlsCertFile, s.tlsKeyFile)
	if err != nil {
		return nil, fmt.Errorf("referee tls: %w", err)
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}

// Serve registers routes and listens on Addr until ctx is cancelled, then
// drains in-flight requests for at most the shutdown timeout.
func (s *Referee) Serve(ctx context.Context) error {
	tlsConfig, err := s.TLSConfig()
	if err != nil {
		return err
	}
	s.RegisterRoutes()
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if tlsConfig != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()
	log.Info().
		Str("id", s.ID).
		Str("addr", s.Addr).
		Bool("tls", tlsConfig != nil).
		Bool("token", len(s.guard) > 0).
		Msg("referee listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	log.Info().Str("id", s.ID).Dur("timeout", s.shutdownTimeout).Msg("referee shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Referee) routes() gin.IRoutes {
	if s.basePath == "" {
		return s.router
	}
	return s.router.Group(s.basePath)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
