package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"resume-matcher/internal/api/middleware"
	"resume-matcher/internal/metrics"
	"resume-matcher/internal/telemetry"
)

type RouterConfig struct {
	JWTSecret []byte
	// CORSOrigins enables CORS for these origins when set.
	CORSOrigins []string
}

func NewRouter(h *APIHandler, cfg RouterConfig, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(telemetry.ServiceName),
		middleware.RequestLogger(log),
		metrics.GinMiddleware(),
	)
	if len(cfg.CORSOrigins) > 0 {
		router.Use(middleware.CORS(cfg.CORSOrigins))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.Auth(cfg.JWTSecret)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/auth/me", auth, h.Me)

		resumeGroup := v1.Group("/resume")
		resumeGroup.Use(auth)
		{
			resumeGroup.POST("/parse", h.ParseResumes)
			resumeGroup.POST("/batch-upload", h.BatchUpload)
			resumeGroup.GET("/public", h.PublicResumes)
			resumeGroup.GET("/private", h.MyResumes)
			resumeGroup.GET("/my-uploads", h.MyUploads)
			resumeGroup.POST("/nlp-search", h.Search)
			resumeGroup.POST("/outreach-email", h.OutreachEmail)
			resumeGroup.GET("/:id", h.GetResume)
		}
	}

	return router
}
