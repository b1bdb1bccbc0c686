package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lifeloom/lineage/internal/config"
	"github.com/lifeloom/lineage/internal/core"
	"github.com/lifeloom/lineage/internal/core/model"
	"github.com/lifeloom/lineage/internal/llm"
	"github.com/lifeloom/lineage/internal/store"
)

type Server struct {
	Resolver *core.Resolver
	logger   *zap.Logger
}

// New builds the full service: record store, oracle client, resolver. The
// oracle is optional; without LLM config the ingest route reports a
// validation error and everything else still works.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	recordStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	var oracle llm.LLMClient
	if cfg.LLM.Provider != "" {
		oracle, err = llm.NewClient(ctx, cfg.LLM)
		if err != nil {
			return nil, err
		}
	}

	resolver := core.NewResolver(recordStore, oracle, cfg.Extraction.PeoplePrompt,
		cfg.Detection.Threshold, cfg.Concurrency.Ingest, logger)

	return &Server{Resolver: resolver, logger: logger}, nil
}

func NewWithResolver(resolver *core.Resolver, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Resolver: resolver, logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.Health)
	r.POST("/projects/:projectID/ingest", s.Ingest)
	r.GET("/projects/:projectID/people", s.People)
	r.GET("/projects/:projectID/duplicates", s.Duplicates)
	r.POST("/merge", s.Merge)
	r.POST("/undo", s.Undo)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type IngestRequest struct {
	TextBlocks []string `json:"text_blocks" binding:"required"`
}

func (s *Server) Ingest(c *gin.Context) {
	projectID := c.Param("projectID")

	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	people, err := s.Resolver.IngestText(c.Request.Context(), projectID, req.TextBlocks)
	if err != nil {
		s.fail(c, err, "ingest failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"people_created": len(people),
		"people":         people,
	})
}

func (s *Server) People(c *gin.Context) {
	people, err := s.Resolver.ListPeople(c.Request.Context(), c.Param("projectID"))
	if err != nil {
		s.fail(c, err, "list people failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"people": people})
}

type DuplicatesQuery struct {
	Threshold float64 `form:"threshold"`
}

func (s *Server) Duplicates(c *gin.Context) {
	var q DuplicatesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold"})
		return
	}

	result, err := s.Resolver.DetectDuplicates(c.Request.Context(), c.Param("projectID"), q.Threshold)
	if err != nil {
		s.fail(c, err, "duplicate detection failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

type MergeRequest struct {
	ProjectID         string              `json:"project_id" binding:"required"`
	PrimaryPersonID   string              `json:"primary_person_id" binding:"required"`
	SecondaryPersonID string              `json:"secondary_person_id" binding:"required"`
	Strategy          model.MergeStrategy `json:"strategy"`
}

func (s *Server) Merge(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	log, skipped, err := s.Resolver.MergePeople(c.Request.Context(),
		req.ProjectID, req.PrimaryPersonID, req.SecondaryPersonID, req.Strategy)
	if err != nil {
		s.fail(c, err, "merge failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"merge_log_id":         log.ID,
		"skipped_associations": skipped,
	})
}

type UndoRequest struct {
	ProjectID  string `json:"project_id" binding:"required"`
	MergeLogID string `json:"merge_log_id" binding:"required"`
}

func (s *Server) Undo(c *gin.Context) {
	var req UndoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	restored, skipped, err := s.Resolver.UndoMerge(c.Request.Context(), req.ProjectID, req.MergeLogID)
	if err != nil {
		s.fail(c, err, "undo failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":                   true,
		"restored_secondary_person": restored,
		"skipped_associations":      skipped,
		"message":                   "merge undone",
	})
}

// fail maps the core's error taxonomy onto HTTP statuses: validation
// errors are the caller's fault, unknown ids are 404, everything else is a
// logged 500.
func (s *Server) fail(c *gin.Context, err error, logMsg string) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		return
	}
	var notFoundErr *model.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		return
	}
	s.logger.Error(logMsg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
