package server

import (
	"net/http"
	"time"

	"reversalbot/internal/metrics"
	"reversalbot/internal/state"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type StatusResponse struct {
	Running bool `json:"running"`
	state.Snapshot
}

// Router exposes liveness, the last cycle summary and Prometheus metrics.
// running reports whether a cycle is in progress.
func Router(store *state.Store, running func() bool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, StatusResponse{Running: running(), Snapshot: store.Snapshot()})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	return r
}

func Serve(addr string, store *state.Store, running func() bool, logger zerolog.Logger) *http.Server {
	log := logger.With().Str("component", "server").Logger()
	srv := &http.Server{
		Addr:              addr,
		Handler:           Router(store, running),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("status server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("status server up")
	return srv
}
