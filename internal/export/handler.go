package export

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the test-data endpoint on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/analytics/generate-test-data", s.handleGenerate)
}

// handleGenerate handles POST /analytics/generate-test-data
func (s *Service) handleGenerate(c *gin.Context) {
	var body struct {
		NumBooks int  `json:"num_books"`
		NumSales int  `json:"num_sales"`
		SkipLoad bool `json:"skip_load"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.NumBooks == 0 {
		body.NumBooks = 500
	}
	if body.NumSales == 0 {
		body.NumSales = 10000
	}
	if body.NumBooks < 0 || body.NumSales < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "number of books and sales must be positive"})
		return
	}

	result, err := s.Generate(c.Request.Context(), body.NumBooks, body.NumSales, body.SkipLoad)
	if err != nil {
		slog.Error("[Export] Test data generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"result": result,
	})
}
