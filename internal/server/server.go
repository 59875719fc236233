package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/matthieukhl/shopstats/internal/database"
)

const (
	serviceName = "shopstats"
	version     = "0.1.0"
)

type Server struct {
	router *gin.Engine
	db     *database.DB
	logger *slog.Logger
}

// NewServer creates a new server instance
func NewServer(db *database.DB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := gin.Default()

	server := &Server{
		router: router,
		db:     db,
		logger: logger,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/tables", s.listTables)
		api.GET("/tables/:name", s.relation)
		api.GET("/queries", s.listQueries)
		api.GET("/queries/:name", s.runQuery)
		api.GET("/integrity", s.integrity)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	if err := s.db.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
		"version": version,
		"driver":  s.db.Dialect().Name,
	})
}

func (s *Server) listTables(c *gin.Context) {
	var tables []string
	err := s.db.WithSession(c.Request.Context(), func(sess *database.Session) error {
		var err error
		tables, err = sess.ListTables(c.Request.Context())
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

func (s *Server) relation(c *gin.Context) {
	var rs analytics.ResultSet
	err := s.db.WithSession(c.Request.Context(), func(sess *database.Session) error {
		var err error
		rs, err = sess.Relation(c.Request.Context(), c.Param("name"))
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

type queryInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []string `json:"columns"`
	NeedsRange  bool     `json:"needs_range"`
}

func (s *Server) listQueries(c *gin.Context) {
	catalog := analytics.Catalog()
	queries := make([]queryInfo, 0, len(catalog))
	for _, q := range catalog {
		queries = append(queries, queryInfo{
			Name:        q.Name,
			Description: q.Description,
			Columns:     q.Columns,
			NeedsRange:  q.NeedsRange,
		})
	}
	c.JSON(http.StatusOK, gin.H{"queries": queries})
}

func (s *Server) runQuery(c *gin.Context) {
	q, err := analytics.Lookup(c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	params, err := q.ParseParams(c.Query("from"), c.Query("to"))
	if err != nil {
		s.fail(c, err)
		return
	}

	snapshot, err := s.snapshot(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	rs, err := q.Run(snapshot, params)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

func (s *Server) integrity(c *gin.Context) {
	snapshot, err := s.snapshot(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	report := snapshot.Integrity()
	body := gin.H{"report": report}
	if err := report.Err(); err != nil {
		body["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) snapshot(ctx context.Context) (*analytics.Snapshot, error) {
	var snapshot *analytics.Snapshot
	err := s.db.WithSession(ctx, func(sess *database.Session) error {
		var err error
		snapshot, err = sess.LoadSnapshot(ctx)
		return err
	})
	return snapshot, err
}

// fail maps an error onto its HTTP status
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, analytics.ErrUnknownRelation) && !errors.Is(err, analytics.ErrSchemaMismatch),
		errors.Is(err, analytics.ErrUnknownQuery):
		status = http.StatusNotFound
	case errors.Is(err, analytics.ErrInvalidParams):
		status = http.StatusBadRequest
	case errors.Is(err, analytics.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	c.JSON(status, gin.H{
		"status": "error",
		"error":  err.Error(),
	})
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.router.Run(addr)
}
