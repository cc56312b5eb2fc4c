package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/pipeline"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/score"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Analyzer runs the full report pipeline
type Analyzer interface {
	Analyze(ctx context.Context, in pipeline.Input) (*model.Report, error)
}

// ReportReader reads stored reports
type ReportReader interface {
	Get(ctx context.Context, id string) (*model.Report, error)
	List(ctx context.Context, opts store.ListOptions) ([]store.Summary, error)
}

// Options configures the server
type Options struct {
	Addr         string
	AllowOrigins []string
	Reports      ReportReader // nil disables the /reports routes
	Logger       *zap.Logger
	Version      string
	Development  bool
}

// Server exposes the analysis pipeline and the scoring engine over HTTP
type Server struct {
	analyzer Analyzer
	engine   *score.Engine
	reports  ReportReader
	logger   *zap.Logger
	router   *gin.Engine
	addr     string
	version  string
}

// New creates a server and registers its routes
func New(analyzer Analyzer, engine *score.Engine, opts Options) *Server {
	if !opts.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		analyzer: analyzer,
		engine:   engine,
		reports:  opts.Reports,
		logger:   logger,
		router:   gin.New(),
		addr:     opts.Addr,
		version:  opts.Version,
	}

	s.router.Use(gin.Recovery(), requestLogger(logger))
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/", s.handleRoot)
	s.router.GET("/platforms", s.handlePlatforms)
	s.router.POST("/score", s.handleScore)
	s.router.POST("/analyze", s.handleAnalyze)
	s.router.POST("/analyze-image", s.handleAnalyzeImage)
	s.router.POST("/analyze-image-upload", s.handleAnalyzeUpload)
	s.router.GET("/reports", s.handleListReports)
	s.router.GET("/reports/:id", s.handleGetReport)
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "online", "service": "reliefscout", "version": s.version})
}

func (s *Server) handlePlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"platforms": s.engine.Platforms().Entries(), "bands": s.engine.Bands()})
}

type scoreRequest struct {
	Record       *model.ClassificationRecord `json:"record"`
	PlatformHint string                      `json:"platform_hint"`
	RawText      string                      `json:"raw_text"`
	Media        model.MediaKind             `json:"media"`
}

func (s *Server) handleScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Media {
	case model.MediaNone, model.MediaImageURL, model.MediaImageUpload:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown media %q", req.Media)})
		return
	}

	eval := s.engine.Evaluate(score.Request{
		Record:       req.Record,
		PlatformHint: req.PlatformHint,
		Text:         req.RawText,
		Media:        req.Media,
	})
	c.JSON(http.StatusOK, eval)
}

type analyzeRequest struct {
	Text   string `json:"text" binding:"required"`
	Source string `json:"source"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.analyze(c, pipeline.Input{Text: req.Text, Source: req.Source})
}

type imageRequest struct {
	ImageURL    string `json:"image_url" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func (s *Server) handleAnalyzeImage(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.analyze(c, pipeline.Input{Text: req.Description, Media: model.MediaImageURL, MediaURL: req.ImageURL})
}

type uploadRequest struct {
	Description string `json:"description" binding:"required"`
}

func (s *Server) handleAnalyzeUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.analyze(c, pipeline.Input{Text: req.Description, Media: model.MediaImageUpload})
}

func (s *Server) analyze(c *gin.Context, in pipeline.Input) {
	report, err := s.analyzer.Analyze(c.Request.Context(), in)
	switch {
	case errors.Is(err, pipeline.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		s.logger.Error("analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed: " + err.Error()})
	default:
		c.JSON(http.StatusOK, report)
	}
}

func (s *Server) handleListReports(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report store disabled"})
		return
	}

	opts := store.ListOptions{Status: model.Status(c.Query("status"))}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		opts.Limit = limit
	}

	reports, err := s.reports.List(c.Request.Context(), opts)
	if err != nil {
		s.logger.Error("list reports failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) handleGetReport(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report store disabled"})
		return
	}

	report, err := s.reports.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		s.logger.Error("get report failed", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, report)
	}
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
