package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/core"
	"github.com/adityaparmar/onebox/internal/metrics"
)

// Server exposes the query and reply-suggestion endpoints. It
// implements ports.APIServer.
type Server struct {
	engine  *gin.Engine
	srv     *http.Server
	index   core.EmailIndex
	advisor *core.ReplyAdvisor
	logger  *zap.Logger
}

// NewServer wires the routes onto a gin engine.
func NewServer(index core.EmailIndex, advisor *core.ReplyAdvisor, listenAddress string, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestMetrics())

	s := &Server{
		engine:  engine,
		index:   index,
		advisor: advisor,
		logger:  logger,
	}

	engine.POST("/emails/all", s.handleListEmails)
	engine.GET("/search", s.handleSearch)
	engine.POST("/reply/suggest", s.handleSuggestReply)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.srv = &http.Server{
		Addr:    listenAddress,
		Handler: engine,
	}

	return s
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving in the background.
func (s *Server) Start() error {
	go func() {
		s.logger.Info("HTTP server listening", zap.String("address", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// requestMetrics records the duration of every request.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.RecordHTTPRequest(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
