// Package server exposes the HTTP API: ad-hoc extraction, invoice
// listing, XLSX export, and health.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facturaia/invoice-engine/internal/common"
	"github.com/facturaia/invoice-engine/internal/entity"
	"github.com/facturaia/invoice-engine/internal/export"
	"github.com/facturaia/invoice-engine/internal/pipeline"
	"github.com/facturaia/invoice-engine/internal/repository"
)

type Server struct {
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	invoices repository.InvoiceRepository
	exporter *export.Service
	pool     *pgxpool.Pool
}

func New(logger *slog.Logger, pipe *pipeline.Pipeline, invoices repository.InvoiceRepository, exporter *export.Service, pool *pgxpool.Pool) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:   logger,
		pipeline: pipe,
		invoices: invoices,
		exporter: exporter,
		pool:     pool,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.health)

	v1 := r.Group("/v1")
	v1.POST("/extract", s.extract)
	v1.GET("/invoices", s.listInvoices)
	v1.GET("/invoices/export", s.exportInvoices)
	v1.GET("/invoices/:id", s.getInvoice)

	return r
}

type extractRequest struct {
	Text       string `json:"text"`
	SourcePath string `json:"source_path"`
}

func (s *Server) extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	inv, err := s.pipeline.Run(c.Request.Context(), entity.RawText{
		Text:       req.Text,
		SourcePath: req.SourcePath,
	})
	if err != nil {
		s.logger.Warn("server.extract.failed", "error", err)
		c.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (s *Server) listInvoices(c *gin.Context) {
	from, ok := s.dateParam(c, "from")
	if !ok {
		return
	}
	to, ok := s.dateParam(c, "to")
	if !ok {
		return
	}

	invs, err := s.invoices.List(c.Request.Context(), from, to)
	if err != nil {
		s.logger.Error("server.invoices.list_failed", "error", err)
		c.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	if invs == nil {
		invs = []*entity.ProcessedInvoice{}
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invs})
}

func (s *Server) getInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a UUID"})
		return
	}
	inv, err := s.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (s *Server) exportInvoices(c *gin.Context) {
	from, ok := s.dateParam(c, "from")
	if !ok {
		return
	}
	to, ok := s.dateParam(c, "to")
	if !ok {
		return
	}

	raw, err := s.exporter.ExportInvoicesXLSX(c.Request.Context(), from, to)
	if err != nil {
		s.logger.Error("server.invoices.export_failed", "error", err)
		c.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", raw)
}

func (s *Server) health(c *gin.Context) {
	if s.pool != nil {
		if err := repository.HealthCheck(c.Request.Context(), s.pool, 3*time.Second, s.logger); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// dateParam parses an optional YYYY-MM-DD query parameter. On bad input
// it writes the error response and reports false.
func (s *Server) dateParam(c *gin.Context, name string) (*time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	ts, err := time.Parse("2006-01-02", v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " invalid (YYYY-MM-DD)"})
		return nil, false
	}
	return &ts, true
}
