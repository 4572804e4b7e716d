package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dkeye/lanhub/internal/app/orch"
	"github.com/dkeye/lanhub/internal/app/sfu"
	"github.com/dkeye/lanhub/internal/config"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// StatsSource exposes relay counters keyed by media kind.
type StatsSource interface {
	Stats() map[string]sfu.Stats
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, relays StatsSource, hub *EventHub) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.GET("/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"users": o.Registry.Sessions()})
	})

	api.GET("/presenter", func(c *gin.Context) {
		holder, ok := o.Presenter.Holder()
		c.JSON(http.StatusOK, gin.H{"presenting": ok, "username": holder})
	})

	api.GET("/files", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"files": o.Files.List()})
	})

	api.GET("/files/:id", func(c *gin.Context) {
		blob, err := o.Files.Get(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", blob.Filename))
		c.Data(http.StatusOK, mimetype.Detect(blob.Data).String(), blob.Data)
	})

	api.GET("/stats", func(c *gin.Context) {
		resp := gin.H{
			"sessions": o.Registry.Len(),
			"files":    o.Files.Stats(),
		}
		if relays != nil {
			resp["relays"] = relays.Stats()
		}
		c.JSON(http.StatusOK, resp)
	})

	if hub != nil {
		api.GET("/ws/events", func(c *gin.Context) {
			log.Info().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ws events endpoint hit")
			hub.HandleEvents(ctx, c)
		})
	}

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
