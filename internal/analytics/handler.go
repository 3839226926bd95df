package analytics

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the analytics API on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/analytics/summary/", s.handleSummary)
	r.GET("/analytics/timeseries", s.handleTimeseries)
	r.GET("/analytics/optimized-timeseries", s.handleOptimizedTimeseries)
	r.GET("/analytics/top-books", s.handleTopBooks)
	r.GET("/analytics/sales-by-region", s.handleSalesByRegion)
	r.GET("/analytics/sales-by-genre", s.handleSalesByGenre)
}

// handleTimeseries handles GET /analytics/timeseries?interval=&days=
func (s *Service) handleTimeseries(c *gin.Context) {
	var query struct {
		Interval string `form:"interval,default=day"`
		Days     int    `form:"days,default=30"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := s.Timeseries(c.Request.Context(), query.Interval, query.Days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleOptimizedTimeseries handles GET /analytics/optimized-timeseries?interval=&days=
func (s *Service) handleOptimizedTimeseries(c *gin.Context) {
	var query struct {
		Interval string `form:"interval,default=auto"`
		Days     int    `form:"days,default=30"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := s.OptimizedTimeseries(c.Request.Context(), query.Interval, query.Days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleTopBooks handles GET /analytics/top-books?limit=&days=
func (s *Service) handleTopBooks(c *gin.Context) {
	var query struct {
		Limit int `form:"limit,default=10"`
		Days  int `form:"days,default=30"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := s.TopBooks(c.Request.Context(), query.Limit, query.Days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// handleSalesByRegion handles GET /analytics/sales-by-region?days=
func (s *Service) handleSalesByRegion(c *gin.Context) {
	var query struct {
		Days int `form:"days,default=30"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := s.SalesByRegion(c.Request.Context(), query.Days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// handleSalesByGenre handles GET /analytics/sales-by-genre?days=
func (s *Service) handleSalesByGenre(c *gin.Context) {
	var query struct {
		Days int `form:"days,default=30"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := s.SalesByGenre(c.Request.Context(), query.Days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// handleSummary handles GET /analytics/summary/
func (s *Service) handleSummary(c *gin.Context) {
	summary, err := s.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// writeError maps the error taxonomy onto HTTP statuses with a stable
// {"error": ...} body. Validation → 400, no data → 404, everything
// else (warehouse connectivity included) → 500.
func writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": ErrNoData.Error()})
	default:
		slog.Error("[Analytics] Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error querying warehouse"})
	}
}
