package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agewise-dev/agewise/internal/bucket"
	"github.com/agewise-dev/agewise/internal/jobs"
	"github.com/agewise-dev/agewise/internal/report"
)

// agedReceivables serves the report endpoint. By default the run is queued
// and the caller polls the job endpoint; local=true generates inline.
func (s *Server) agedReceivables(c *gin.Context) {
	job, err := parseReportQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !boolQuery(c, "local", false) {
		if err := s.queue.Enqueue(c.Request.Context(), job); err != nil {
			s.log.Error("failed to enqueue report job", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to queue report"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"format":  "table",
			"data":    []gin.H{{"status": "queued", "job_id": job.JobID}},
			"columns": []string{"status", "job_id"},
			"shape":   []int{1, 2},
		})
		return
	}

	payload, err := s.RunReport(c.Request.Context(), job)
	if err != nil {
		s.log.Error("report generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payload)
}

// jobStatus returns a queued job's state, including its result once done.
func (s *Server) jobStatus(c *gin.Context) {
	job, err := s.jobStore.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

func parseReportQuery(c *gin.Context) (*jobs.ReportJob, error) {
	periodType, err := bucket.ParsePeriodType(c.DefaultQuery("period_type", "Month"))
	if err != nil {
		return nil, err
	}

	scheme := bucket.Scheme{
		Periods:     intQuery(c, "periods", 4),
		PeriodOf:    intQuery(c, "period_of", 1),
		PeriodType:  periodType,
		ShowCurrent: boolQuery(c, "show_current", true),
	}

	return &jobs.ReportJob{
		Params: report.Params{
			ReportDate:    c.Query("report_date"),
			ConnectionIDs: c.Query("connection_id"),
			Scheme:        scheme,
		},
		Render: jobs.RenderOptions{
			Table:        intQuery(c, "format", 1) == 1,
			ResponseOnly: intQuery(c, "response_only", 1) == 1,
			UseCache:     boolQuery(c, "cache", true),
		},
	}, nil
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func boolQuery(c *gin.Context, key string, fallback bool) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}
