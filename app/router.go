// Package app wires the HTTP API together
package app

import (
	"bitwise74/devdoc-api/app/file"
	"bitwise74/devdoc-api/app/link"
	"bitwise74/devdoc-api/app/project"
	"bitwise74/devdoc-api/app/respond"
	"bitwise74/devdoc-api/app/root"
	"bitwise74/devdoc-api/app/snippet"
	"bitwise74/devdoc-api/app/user"
	"bitwise74/devdoc-api/internal"
	"bitwise74/devdoc-api/pkg/middleware"
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRouter builds the engine. Background work tied to the router, like
// forgetting idle rate limit clients, stops when ctx is done.
func NewRouter(ctx context.Context, d *internal.Deps) *gin.Engine {
	cfg := d.Config
	respond.Verbose = !cfg.IsProduction()

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 8 << 20

	router.Use(
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		secure.New(secure.Config{
			STSSeconds:            31536000,
			STSIncludeSubdomains:  true,
			FrameDeny:             true,
			ContentTypeNosniff:    true,
			BrowserXssFilter:      true,
			IENoOpen:              true,
			ReferrerPolicy:        "no-referrer",
			ContentSecurityPolicy: "default-src 'self'; frame-ancestors 'none'",
		}),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Host.CORS,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware())

		// GET /metrics			-> Prometheus scrape endpoint
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Requests: cfg.Security.RateLimitRequests,
		Window:   cfg.Security.RateLimitWindow,
	})
	go limiter.Run(time.Minute, ctx.Done())

	jwt := middleware.NewJWTMiddleware(d.Users)
	turnstile := middleware.NewTurnstileMiddleware(middleware.TurnstileConfig{
		Enabled:     cfg.Turnstile.Enabled,
		SecretToken: cfg.Turnstile.SecretToken,
	})
	jsonLimit := middleware.BodySizeLimiter(cfg.Security.JSONLimit)
	// Leave room for the multipart envelope so oversized files get a proper
	// validation error instead of a cut connection
	uploadLimit := middleware.BodySizeLimiter(cfg.Upload.MaxSize + 1<<20)

	// GET /uploads/:filename		-> Serves a stored file
	router.GET("/uploads/:filename", func(c *gin.Context) { file.FileServe(c, d) })

	m := router.Group("/api", limiter.Middleware())
	{
		// GET /api/health		-> Used to check if the server is alive
		m.GET("/health", root.Health)
		m.HEAD("/health", root.Health)
	}

	a := m.Group("/auth", jsonLimit)
	{
		// POST /api/auth/register	-> Registers a new user and returns a token
		a.POST("/register", turnstile, func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/auth/login		-> Logs in a user and returns a token
		a.POST("/login", turnstile, func(c *gin.Context) { user.UserLogin(c, d) })

		// GET /api/auth/me		-> Returns the authenticated user
		a.GET("/me", jwt, func(c *gin.Context) { user.UserFetch(c, d) })

		// GET /api/auth/validate	-> Validates a token
		a.GET("/validate", jwt, root.Validate)
	}

	p := m.Group("/projects")
	{
		// GET /api/projects/public/:id	-> Read-only share view, no token needed
		p.GET("/public/:id", cachePublicView(d.Cache, cfg.Cache.PublicTTL), func(c *gin.Context) { project.ProjectPublic(c, d) })
	}

	owned := p.Group("", jwt, evictPublicView(d.Cache))
	{
		// POST /api/projects/:id/upload		-> Uploads a file to a project
		owned.POST("/:id/upload", uploadLimit, func(c *gin.Context) { file.FileUpload(c, d) })
	}

	j := owned.Group("", jsonLimit)
	{
		// GET /api/projects			-> Lists or searches the user's projects
		j.GET("", func(c *gin.Context) { project.ProjectList(c, d) })

		// POST /api/projects			-> Creates a project
		j.POST("", func(c *gin.Context) { project.ProjectCreate(c, d) })

		// GET /api/projects/:id		-> Returns a project
		j.GET("/:id", func(c *gin.Context) { project.ProjectFetch(c, d) })

		// PUT /api/projects/:id		-> Partially updates a project
		j.PUT("/:id", func(c *gin.Context) { project.ProjectUpdate(c, d) })

		// DELETE /api/projects/:id		-> Deletes a project and its files
		j.DELETE("/:id", func(c *gin.Context) { project.ProjectDelete(c, d) })

		// GET /api/projects/:id/share		-> Returns the public share link
		j.GET("/:id/share", func(c *gin.Context) { project.ProjectShare(c, d) })

		// GET /api/projects/:id/share/qr	-> Returns the share link as a QR code
		j.GET("/:id/share/qr", func(c *gin.Context) { project.ProjectShareQR(c, d) })

		// POST /api/projects/:id/tags		-> Adds a tag
		j.POST("/:id/tags", func(c *gin.Context) { project.ProjectTagAdd(c, d) })

		// DELETE /api/projects/:id/tags/:tag	-> Removes a tag
		j.DELETE("/:id/tags/:tag", func(c *gin.Context) { project.ProjectTagRemove(c, d) })

		// DELETE /api/projects/:id/files/:fileId	-> Deletes an uploaded file
		j.DELETE("/:id/files/:fileId", func(c *gin.Context) { file.FileDelete(c, d) })

		// POST /api/projects/:id/snippets		-> Adds a snippet
		j.POST("/:id/snippets", func(c *gin.Context) { snippet.SnippetAdd(c, d) })

		// PUT /api/projects/:id/snippets/:snippetId	-> Updates a snippet
		j.PUT("/:id/snippets/:snippetId", func(c *gin.Context) { snippet.SnippetUpdate(c, d) })

		// DELETE /api/projects/:id/snippets/:snippetId	-> Deletes a snippet
		j.DELETE("/:id/snippets/:snippetId", func(c *gin.Context) { snippet.SnippetDelete(c, d) })

		// POST /api/projects/:id/links		-> Adds a link
		j.POST("/:id/links", func(c *gin.Context) { link.LinkAdd(c, d) })

		// PUT /api/projects/:id/links/:linkId	-> Updates a link
		j.PUT("/:id/links/:linkId", func(c *gin.Context) { link.LinkUpdate(c, d) })

		// DELETE /api/projects/:id/links/:linkId	-> Deletes a link
		j.DELETE("/:id/links/:linkId", func(c *gin.Context) { link.LinkDelete(c, d) })
	}

	return router
}
