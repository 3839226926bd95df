package export

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func doPost(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleGenerate_StagesAndReportsKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)
	up := newFakeUploader()
	svc := NewService(up, &fakeLoader{}, nil)
	r := gin.New()
	svc.RegisterRoutes(r)

	w := doPost(t, r, "/analytics/generate-test-data",
		`{"num_books": 5, "num_sales": 20, "skip_load": true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
		Result Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "success", body.Status)
	require.Equal(t, 5, body.Result.NumBooks)
	require.Equal(t, 20, body.Result.NumSales)
	require.False(t, body.Result.Loaded)
	require.Contains(t, body.Result.BooksURI, "s3://staging/books/")
}

func TestHandleGenerate_RejectsNegativeCounts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService(newFakeUploader(), nil, nil)
	r := gin.New()
	svc.RegisterRoutes(r)

	w := doPost(t, r, "/analytics/generate-test-data", `{"num_books": -1, "num_sales": 20}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGenerate_RejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService(newFakeUploader(), nil, nil)
	r := gin.New()
	svc.RegisterRoutes(r)

	w := doPost(t, r, "/analytics/generate-test-data", `{"num_books": "many"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
