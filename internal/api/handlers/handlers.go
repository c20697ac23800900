package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dvloznov/expense-extractor/internal/api/middleware"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/infra/sqlite"
	"github.com/dvloznov/expense-extractor/internal/jobs"
	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/dvloznov/expense-extractor/internal/parser"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies; statements fit comfortably.
const maxBodyBytes = 4 << 20

type textRequest struct {
	Text string `json:"text"`
}

// readText accepts {"text": "..."} JSON or a raw text body.
func readText(c *gin.Context) (string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req textRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return "", err
		}
		return req.Text, nil
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseHandler runs the parsers synchronously.
type ParseHandler struct {
	registry *parser.Registry
	log      zerolog.Logger
}

func NewParseHandler(registry *parser.Registry, log zerolog.Logger) *ParseHandler {
	return &ParseHandler{registry: registry, log: log}
}

type parseResponse struct {
	Source domain.Source `json:"source"`
	parser.Result
}

// Parse handles POST /api/parse/:source
func (h *ParseHandler) Parse(c *gin.Context) {
	source, err := domain.ParseSource(c.Param("source"))
	if err != nil {
		middleware.WriteError(c, http.StatusBadRequest, err.Error())
		return
	}
	text, err := readText(c)
	if err != nil {
		middleware.WriteError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.registry.Parse(c.Request.Context(), source, text)
	if err != nil {
		// only cancellation reaches here: the client went away
		h.log.Warn().Err(err).Str("source", string(source)).Msg("Parse abandoned")
		middleware.WriteError(c, http.StatusServiceUnavailable, "Parse cancelled")
		return
	}
	middleware.WriteJSON(c, http.StatusOK, parseResponse{Source: source, Result: res})
}

// Categorize handles POST /api/categorize
func (h *ParseHandler) Categorize(c *gin.Context) {
	text, err := readText(c)
	if err != nil || strings.TrimSpace(text) == "" {
		middleware.WriteError(c, http.StatusBadRequest, "text is required")
		return
	}
	table := h.registry.Table()
	biller, category := table.DetectBiller(text)
	if biller == mapping.UnknownBiller {
		category = table.Categorize(text)
	}
	middleware.WriteJSON(c, http.StatusOK, gin.H{
		"biller":   biller,
		"category": category,
	})
}

// ListCategories handles GET /api/categories
func (h *ParseHandler) ListCategories(c *gin.Context) {
	categories := domain.Categories()
	middleware.WriteJSON(c, http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// ListBillers handles GET /api/billers
func (h *ParseHandler) ListBillers(c *gin.Context) {
	table := h.registry.Table()
	entries := table.Entries()
	if category := c.Query("category"); category != "" {
		canonical, ok := domain.CanonicalCategory(category)
		if !ok {
			middleware.WriteError(c, http.StatusBadRequest, "Unknown category")
			return
		}
		entries = table.EntriesFor(canonical)
	}
	middleware.WriteJSON(c, http.StatusOK, gin.H{
		"billers": entries,
		"count":   len(entries),
	})
}

// JobsHandler queues and reports asynchronous parse jobs.
type JobsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	validate  func(*jobs.ParseTextJob) error
	log       zerolog.Logger
}

// NewJobsHandler builds the handler. validate rejects jobs a worker could
// never process; nil accepts everything.
func NewJobsHandler(publisher jobs.Publisher, store jobs.JobStore, validate func(*jobs.ParseTextJob) error, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{publisher: publisher, store: store, validate: validate, log: log}
}

type createJobRequest struct {
	Source string   `json:"source"`
	Text   string   `json:"text"`
	GCSURI string   `json:"gcs_uri"`
	Sinks  []string `json:"sinks"`
}

// CreateJob handles POST /api/jobs
func (h *JobsHandler) CreateJob(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	source, err := domain.ParseSource(req.Source)
	if err != nil {
		middleware.WriteError(c, http.StatusBadRequest, err.Error())
		return
	}

	job := &jobs.ParseTextJob{
		Source: source,
		Text:   req.Text,
		GCSURI: req.GCSURI,
		Sinks:  req.Sinks,
	}
	if h.validate != nil {
		if err := h.validate(job); err != nil {
			middleware.WriteError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.publisher.PublishParseText(c.Request.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue parse job")
		status := http.StatusInternalServerError
		if errors.Is(err, jobs.ErrQueueClosed) {
			status = http.StatusServiceUnavailable
		}
		middleware.WriteError(c, status, "Failed to enqueue parse job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("source", string(source)).Msg("Parse job enqueued")

	middleware.WriteJSON(c, http.StatusAccepted, gin.H{
		"job_id": job.JobID,
		"source": source,
		"status": job.Status,
	})
}

// GetJob handles GET /api/jobs/:id
func (h *JobsHandler) GetJob(c *gin.Context) {
	jobID := c.Param("id")
	job, err := h.store.GetJob(c.Request.Context(), jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		middleware.WriteError(c, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(c, http.StatusInternalServerError, "Failed to get job")
		return
	}
	middleware.WriteJSON(c, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(c *gin.Context) {
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(c.Query("status")),
	}
	if s := c.Query("source"); s != "" {
		source, err := domain.ParseSource(s)
		if err != nil {
			middleware.WriteError(c, http.StatusBadRequest, err.Error())
			return
		}
		filter.Source = source
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = offset
	}

	list, err := h.store.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(c, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	if list == nil {
		list = []*jobs.ParseTextJob{}
	}
	middleware.WriteJSON(c, http.StatusOK, gin.H{
		"jobs":  list,
		"count": len(list),
	})
}

// BillerStore persists biller overrides.
type BillerStore interface {
	SetBillerOverride(ctx context.Context, biller, category string) (mapping.Entry, error)
	DeleteBillerOverride(ctx context.Context, biller string) error
}

// BillersHandler edits biller overrides and reloads the mapping table so
// later parses see the change.
type BillersHandler struct {
	store  BillerStore
	reload func(ctx context.Context) error
	log    zerolog.Logger
}

func NewBillersHandler(store BillerStore, reload func(ctx context.Context) error, log zerolog.Logger) *BillersHandler {
	return &BillersHandler{store: store, reload: reload, log: log}
}

type billerRequest struct {
	Category string `json:"category" binding:"required"`
}

// SetBiller handles PUT /api/billers/:biller
func (h *BillersHandler) SetBiller(c *gin.Context) {
	var req billerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, http.StatusBadRequest, "category is required")
		return
	}

	e, err := h.store.SetBillerOverride(c.Request.Context(), c.Param("biller"), req.Category)
	switch {
	case errors.Is(err, mapping.ErrUnknownCategory), errors.Is(err, mapping.ErrEmptyBiller):
		middleware.WriteError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to save biller override")
		middleware.WriteError(c, http.StatusInternalServerError, "Failed to save biller")
		return
	}
	if !h.reloaded(c) {
		return
	}
	middleware.WriteJSON(c, http.StatusOK, e)
}

// DeleteBiller handles DELETE /api/billers/:biller
func (h *BillersHandler) DeleteBiller(c *gin.Context) {
	err := h.store.DeleteBillerOverride(c.Request.Context(), c.Param("biller"))
	switch {
	case errors.Is(err, sqlite.ErrBillerNotFound):
		middleware.WriteError(c, http.StatusNotFound, "Biller override not found")
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to delete biller override")
		middleware.WriteError(c, http.StatusInternalServerError, "Failed to delete biller")
		return
	}
	if !h.reloaded(c) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BillersHandler) reloaded(c *gin.Context) bool {
	if h.reload == nil {
		return true
	}
	if err := h.reload(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("Failed to reload mapping table")
		middleware.WriteError(c, http.StatusInternalServerError, "Saved, but the mapping table was not reloaded")
		return false
	}
	return true
}
