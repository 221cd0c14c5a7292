package routes

import (
	"net/http"

	"chat-gateway/internal/api/handlers"
	"chat-gateway/internal/api/middleware"
	"chat-gateway/internal/config"
	"chat-gateway/internal/database"
	"chat-gateway/internal/services"
	"chat-gateway/internal/websocket"

	"github.com/gin-gonic/gin"
)

type Router struct {
	engine      *gin.Engine
	wsHandler   *handlers.WSHandler
	rateLimitMW *middleware.RateLimitMiddleware
	registry    *websocket.Registry
	redisClient *database.RedisClient
	cfg         *config.Config
}

func NewRouter(
	cfg *config.Config,
	registry *websocket.Registry,
	handler *websocket.Handler,
	redisClient *database.RedisClient,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogAPI())

	return &Router{
		engine:      engine,
		wsHandler:   handlers.NewWSHandler(registry, handler, cfg.WS),
		rateLimitMW: middleware.NewRateLimitMiddleware(services.NewRateLimitService(redisClient)),
		registry:    registry,
		redisClient: redisClient,
		cfg:         cfg,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", r.health)

	api := r.engine.Group("/api/v1")
	api.GET("/ws",
		r.rateLimitMW.RateLimitIP(r.cfg.WS.RateLimitConns, r.cfg.WS.RateLimitWindow),
		r.wsHandler.HandleWebSocket,
	)

	// Demo client
	r.engine.Static("/static", r.cfg.Server.StaticDir)
	r.engine.StaticFile("/", r.cfg.Server.StaticDir+"/index.html")
}

func (r *Router) health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if err := r.redisClient.Ping(c.Request.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":      status,
		"connections": r.registry.Len(),
	})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
