package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/justsurfingit/applicant-intake/docs" // Swagger docs
	"github.com/justsurfingit/applicant-intake/internal/config"
	"github.com/justsurfingit/applicant-intake/internal/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds everything needed to mount the HTTP surface.
type Router struct {
	Auth         *config.AuthConfig
	RateLimit    int
	Jobs         *JobHandler
	Applications *ApplicationHandler
	Candidates   *CandidateHandler
}

func (rt *Router) Engine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.RequestLogger())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsCfg.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	r.Use(cors.New(corsCfg))

	r.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))

	api := r.Group("/api/v1")
	api.GET("/health", HealthCheck)
	api.POST("/auth/token", NewAuthHandler(rt.Auth).Token)

	// Applicant routes
	public := api.Group("/orgs/:orgId/jobs")
	{
		public.GET("", rt.Jobs.ListJobs)
		public.GET("/:jobId", rt.Jobs.GetJob)

		apply := public.Group("/:jobId/applications", middleware.RateLimit(rt.RateLimit))
		apply.POST("", rt.Applications.Submit)
		apply.POST("/recover", rt.Applications.Recover)
		apply.GET("/:submissionId", rt.Applications.Status)
	}

	// Recruiter routes
	recruiter := api.Group("/orgs/:orgId", middleware.RecruiterAuth(rt.Auth))
	{
		recruiter.POST("/jobs", rt.Jobs.CreateJob)
		recruiter.POST("/jobs/extract", rt.Jobs.ParseJob)
		recruiter.GET("/jobs/:jobId/candidates", rt.Candidates.List)
		recruiter.GET("/jobs/:jobId/candidates/export", rt.Candidates.Export)
		recruiter.GET("/candidates/stream", rt.Candidates.Stream)
		recruiter.GET("/candidates/:candidateId/events", rt.Candidates.Events)
	}

	return r
}
