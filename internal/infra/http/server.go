package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"claimgen/internal/config"
	"claimgen/internal/domain"
	"claimgen/internal/usecase"
)

type Server struct {
	cfg    config.Config
	r      *gin.Engine
	logger *slog.Logger

	rules        *usecase.RuleCatalog
	requirements *usecase.RequirementCatalog
	audits       *usecase.AuditLifecycle
	engine       *usecase.GenerateRequirements
	preview      *usecase.PreviewPredicate

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
}

type ServerDeps struct {
	Rules        *usecase.RuleCatalog
	Requirements *usecase.RequirementCatalog
	Audits       *usecase.AuditLifecycle
	Engine       *usecase.GenerateRequirements
	Logger       *slog.Logger
	RateLimiter  domain.RateLimiter
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:               cfg,
		r:                 r,
		logger:            logger,
		rules:             deps.Rules,
		requirements:      deps.Requirements,
		audits:            deps.Audits,
		engine:            deps.Engine,
		preview:           &usecase.PreviewPredicate{},
		rateLimiter:       deps.RateLimiter,
		rateLimitRequests: cfg.RateLimitRequests,
	}
	s.routes()
	return s
}

func (s *Server) Run() error {
	addr := s.cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	s.logger.Info("claimgen listening", "addr", addr)
	return s.r.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.r }

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.r.Group("/v1")
	{
		v1.GET("/rules", s.handleListRules)
		v1.POST("/rules", s.handleCreateRule)
		v1.GET("/rules/fields", s.handleFieldCatalog)
		v1.POST("/rules/preview", s.handlePreviewPredicate)
		v1.GET("/rules/:id", s.handleGetRule)
		v1.PATCH("/rules/:id", s.handleUpdateRule)
		v1.DELETE("/rules/:id", s.handleDeleteRule)
		v1.POST("/rules/:id/publish", s.handlePublishRule)
		v1.POST("/rules/:id/disable", s.handleDisableRule)
		v1.POST("/rules/:id/clone", s.handleCloneRule)

		v1.GET("/requirements", s.handleListRequirements)
		v1.POST("/requirements", s.handleCreateRequirement)
		v1.GET("/requirements/:id", s.handleGetRequirement)
		v1.PUT("/requirements/:id", s.handleUpdateRequirement)
		v1.DELETE("/requirements/:id", s.handleDeleteRequirement)

		v1.GET("/audits", s.handleListAudits)
		v1.POST("/audits", s.handleCreateAudit)
		v1.GET("/audits/:id", s.handleGetAudit)
		v1.PUT("/audits/:id/data", s.handleUpdateAuditData)
		v1.POST("/audits/:id/certify", s.handleCertifyAudit)
		v1.POST("/audits/:id/generations", s.rateLimit("generate"), s.handleGenerate)
		v1.GET("/audits/:id/generations", s.handleListGenerations)
		v1.GET("/audits/:id/generations/:number", s.handleGetGeneration)
	}
}
