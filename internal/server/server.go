// Package server exposes the report engine over HTTP: the aged receivables
// endpoint, job status polling, health, and metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agewise-dev/agewise/internal/export"
	"github.com/agewise-dev/agewise/internal/jobs"
	"github.com/agewise-dev/agewise/internal/report"
	"github.com/agewise-dev/agewise/internal/runlog"
)

// Options wires the server's collaborators.
type Options struct {
	// Direct fetches straight from the provider.
	Direct report.Source
	// Cached fetches through the cache layer; nil disables caching.
	Cached report.Source

	Connections report.ConnectionStore
	Queue       *jobs.Queue
	JobStore    *jobs.Store
	Log         *zap.Logger
	// OutputDir receives generated Excel files.
	OutputDir string
}

// Server is the HTTP front end.
type Server struct {
	engine      *gin.Engine
	direct      report.Source
	cached      report.Source
	connections report.ConnectionStore
	queue       *jobs.Queue
	jobStore    *jobs.Store
	log         *zap.Logger
	outputDir   string
}

// New builds the server and its routes.
func New(opts Options) *Server {
	s := &Server{
		direct:      opts.Direct,
		cached:      opts.Cached,
		connections: opts.Connections,
		queue:       opts.Queue,
		jobStore:    opts.JobStore,
		log:         opts.Log,
		outputDir:   opts.OutputDir,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(requestID())
	engine.Use(requestLogger(s.log))
	engine.Use(recovery(s.log))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	reports := engine.Group("/reports")
	{
		reports.GET("/aged-receivables", s.agedReceivables)
		reports.GET("/jobs/:id", s.jobStatus)
	}

	s.engine = engine
	return s
}

// Router returns the HTTP handler for mounting into an http.Server.
func (s *Server) Router() http.Handler {
	return s.engine
}

// RunReport executes one report run end to end: generate, render, and
// optionally write the Excel file. It is both the synchronous request path
// and the queue's job handler.
func (s *Server) RunReport(ctx context.Context, job *jobs.ReportJob) (any, error) {
	start := time.Now()

	src := s.cached
	if !job.Render.UseCache || src == nil {
		src = s.direct
	}
	gen := report.NewGenerator(src, s.connections, s.log)

	res, err := gen.Generate(ctx, job.Params)
	if err != nil {
		reportsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	reportsTotal.WithLabelValues("success").Inc()
	reportDuration.Observe(time.Since(start).Seconds())
	invoicesProcessed.Add(float64(res.TotalInvoices))
	connectionFailures.Add(float64(len(res.Failures)))

	table := export.BuildTable(res)

	var excelPath string
	if !job.Render.ResponseOnly {
		excelPath, err = export.WriteExcel(res, table, s.outputDir)
		if err != nil {
			// The response is still useful without the file.
			s.log.Error("excel generation failed", zap.Error(err))
			excelPath = ""
		}
	}

	entry := runlog.Entry{
		Timestamp:   start,
		ReportDate:  res.ReportDate.Format("2006-01-02"),
		Connections: res.Attempted,
		Failed:      len(res.Failures),
		Invoices:    res.TotalInvoices,
		Duration:    time.Since(start),
		ExcelFile:   excelPath,
	}
	if err := runlog.Append(s.outputDir, []runlog.Entry{entry}); err != nil {
		s.log.Warn("run log append failed", zap.Error(err))
	}

	if job.Render.Table {
		resp := export.NewTableResponse(res, table)
		resp.ExcelFile = excelPath
		return resp, nil
	}
	resp := export.NewJSONResponse(res)
	resp.ExcelFile = excelPath
	return resp, nil
}
