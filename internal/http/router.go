package api

import (
	"log"
	stdhttp "net/http"
	"time"

	intconfig "inkwell/internal/config"
	"inkwell/internal/feed"
	h "inkwell/internal/http/handlers"
	"inkwell/internal/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine: timing wraps everything, API groups get
// the ETag validator plus a per-route Cache-Control policy, pages render
// HTML with the elapsed time in their context.
func NewRouter(env intconfig.Env, hub *feed.Hub) *gin.Engine {
	h.FeedHub = hub

	r := gin.New()
	r.Use(
		middleware.Timing(),
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		corsMiddleware(env),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.LoadHTMLGlob("templates/*.html")
	r.GET("/", h.QuotesPage)
	r.GET("/manga", h.MangaPage)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		// change feed; no validator on a stream
		api.GET("/updates", middleware.CacheControl(middleware.CachePolicy{NoStore: true}), h.Updates)

		listCache := middleware.CacheControl(middleware.CachePolicy{
			Public:         true,
			MaxAge:         30 * time.Second,
			MustRevalidate: true,
		})

		quotes := api.Group("/quotes", middleware.ETag())
		quotes.GET("", listCache, h.GetQuotes)
		quotes.GET("/:id", listCache, h.GetQuoteByID)
		quotes.POST("", h.CreateQuote)
		quotes.PUT("/:id", h.UpdateQuote)
		quotes.DELETE("/:id", h.DeleteQuote)

		manga := api.Group("/manga", middleware.ETag())
		manga.GET("", listCache, h.GetManga)
		manga.GET("/:id", listCache, h.GetMangaByID)
		manga.POST("", h.CreateManga)
		manga.PUT("/:id", h.UpdateManga)
		manga.DELETE("/:id", h.DeleteManga)
	}

	return r
}

func corsMiddleware(env intconfig.Env) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(env.CORSOrigins) > 0 {
		cfg.AllowOrigins = env.CORSOrigins
	} else {
		cfg.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "Origin", "If-None-Match"}
	cfg.ExposeHeaders = []string{"ETag", "X-Request-ID", "X-Response-Time"}
	cfg.AllowCredentials = true
	cfg.MaxAge = 24 * time.Hour
	return cors.New(cfg)
}
