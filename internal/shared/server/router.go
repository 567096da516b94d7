package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "scriptorium-backend/internal/auth"
	"scriptorium-backend/internal/documents"
	"scriptorium-backend/internal/pipeline"
	"scriptorium-backend/internal/projects"
	"scriptorium-backend/internal/shared/config"
	"scriptorium-backend/internal/shared/metrics"
	"scriptorium-backend/internal/shared/server/middleware"
	"scriptorium-backend/internal/shared/server/respond"
	"scriptorium-backend/internal/synthesis"
	"scriptorium-backend/internal/users"
	"scriptorium-backend/internal/voices"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config           config.Config
	ProjectHandler   *projects.Handler
	DocumentHandler  *documents.Handler
	VoiceHandler     *voices.Handler
	SynthesisHandler *synthesis.Handler
	PipelineHandler  *pipeline.Handler
	UserHandler      *users.Handler
	GoogleAuth       *googleauth.GoogleService
}

const pipelineRateGroup = "PIPELINE"

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
	)

	// Clone and synthesis hit the paid provider, so they get a tighter
	// bucket than the rest of the API.
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			pipelineRateGroup: {Rate: 1, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			path := c.Request.URL.Path
			if strings.HasSuffix(path, "/voice-clone") || strings.HasSuffix(path, "/tts") {
				return pipelineRateGroup
			}
			return ""
		},
	}))

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.ProjectHandler != nil {
		deps.ProjectHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.VoiceHandler != nil {
		deps.VoiceHandler.RegisterRoutes(api)
	}
	if deps.SynthesisHandler != nil {
		deps.SynthesisHandler.RegisterRoutes(api)
	}
	if deps.PipelineHandler != nil {
		deps.PipelineHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
