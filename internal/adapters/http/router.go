package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/adapters/signal"
	"github.com/freetalk/signaling/internal/app/orch"
	"github.com/freetalk/signaling/internal/config"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("FreeTalkSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := signal.NewSignalWSController(o, cfg)

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("ct", c.GetString("client_token")).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	// Cold-load occupancy snapshot for the landing surface; the socket
	// pushes room_stats_update afterwards.
	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"stats": o.Presence.Stats()})
	})

	// The browser asks here for its rendezvous relay addresses instead of
	// hard-coding a STUN url.
	api.GET("/ice", func(c *gin.Context) {
		servers := make([]webrtc.ICEServer, 0, len(cfg.StunURLs))
		for _, u := range cfg.StunURLs {
			servers = append(servers, webrtc.ICEServer{URLs: []string{u}})
		}
		c.JSON(http.StatusOK, gin.H{"iceServers": servers})
	})

	return r
}
