// Package statusapi serves the responder state, press counts and metrics over HTTP.
package statusapi

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"context"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"net"
	"net/http"
	"strconv"
	"time"
)

const shutdownTimeout = 5 * time.Second

type SnapshotSource interface {
	Snapshot() ergolayer.Snapshot
}

type Server struct {
	state    SnapshotSource
	stats    ergolayer.StatsStore
	gatherer prometheus.Gatherer
	log      *zap.SugaredLogger
}

// NewServer builds the API. stats and gatherer may be nil, the matching routes
// then answer 404.
func NewServer(state SnapshotSource, stats ergolayer.StatsStore, gatherer prometheus.Gatherer, log *zap.SugaredLogger) *Server {
	return &Server{
		state:    state,
		stats:    stats,
		gatherer: gatherer,
		log:      log,
	}
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)

	api := r.Group("/api")
	api.GET("/state", s.getState)
	if s.stats != nil {
		api.GET("/presses", s.getPresses)
	}

	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(lis)
	}()

	s.log.Infow("status api listening", "addr", lis.Addr().String())

	select {
	case err := <-errChan:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return ctx.Err()
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debugw("http request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"took", time.Since(start),
	)
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.Snapshot())
}

func (s *Server) getPresses(c *gin.Context) {
	layer := 0
	if raw := c.Query("layer"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "layer must be a non-negative integer"})
			return
		}
		layer = n
	}

	counts, err := s.stats.GetPresses(layer)
	if err != nil {
		s.log.Errorw("get presses", "layer", layer, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read press counts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"layer": layer, "presses": counts})
}
