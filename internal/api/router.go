// Package api wires the HTTP surface: synchronous parsing, categorization
// lookups and the asynchronous job endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dvloznov/expense-extractor/internal/api/handlers"
	"github.com/dvloznov/expense-extractor/internal/api/middleware"
	"github.com/dvloznov/expense-extractor/internal/jobs"
	"github.com/dvloznov/expense-extractor/internal/parser"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Registry  *parser.Registry
	Publisher jobs.Publisher
	Store     jobs.JobStore
	// ValidateJob rejects jobs before they are queued. Optional.
	ValidateJob func(*jobs.ParseTextJob) error
	// Billers enables the biller write routes; Reload runs after each write.
	Billers handlers.BillerStore
	Reload  func(ctx context.Context) error
	Log     zerolog.Logger
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestIDs(),
		middleware.Recovery(d.Log),
		middleware.Logger(d.Log),
		middleware.CORS(),
	)

	parse := handlers.NewParseHandler(d.Registry, d.Log)
	jobsH := handlers.NewJobsHandler(d.Publisher, d.Store, d.ValidateJob, d.Log)

	api := r.Group("/api")
	{
		api.POST("/parse/:source", parse.Parse)
		api.POST("/categorize", parse.Categorize)
		api.GET("/categories", parse.ListCategories)
		api.GET("/billers", parse.ListBillers)
		if d.Billers != nil {
			billers := handlers.NewBillersHandler(d.Billers, d.Reload, d.Log)
			api.PUT("/billers/:biller", billers.SetBiller)
			api.DELETE("/billers/:biller", billers.DeleteBiller)
		}

		api.POST("/jobs", jobsH.CreateJob)
		api.GET("/jobs", jobsH.ListJobs)
		api.GET("/jobs/:id", jobsH.GetJob)
	}

	r.GET("/health", func(c *gin.Context) {
		middleware.WriteJSON(c, http.StatusOK, gin.H{
			"status":     "healthy",
			"time":       time.Now().Format(time.RFC3339),
			"ai_enabled": d.Registry.AIEnabled(),
		})
	})

	r.NoRoute(func(c *gin.Context) {
		middleware.WriteError(c, http.StatusNotFound, "Not found")
	})
	return r
}
