package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/chatseal/internal/errors"
	"github.com/allisson/chatseal/internal/httputil"
)

func parse(t *testing.T, target string) (int, int, error) {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return httputil.ParsePagination(c)
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	valid := []struct {
		url    string
		offset int
		limit  int
	}{
		{url: "/", offset: 0, limit: httputil.DefaultLimit},
		{url: "/?offset=10&limit=20", offset: 10, limit: 20},
		{url: "/?limit=100", offset: 0, limit: httputil.MaxLimit},
	}
	for _, tt := range valid {
		t.Run(tt.url, func(t *testing.T) {
			offset, limit, err := parse(t, tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.limit, limit)
		})
	}

	invalid := map[string]string{
		"/?offset=-1":  "offset must be a non-negative integer",
		"/?offset=abc": "offset must be a non-negative integer",
		"/?limit=0":    "limit must be between 1 and 100",
		"/?limit=101":  "limit must be between 1 and 100",
		"/?limit=xyz":  "limit must be between 1 and 100",
	}
	for url, msg := range invalid {
		t.Run(url, func(t *testing.T) {
			offset, limit, err := parse(t, url)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Contains(t, err.Error(), msg)
			assert.Zero(t, offset)
			assert.Zero(t, limit)
		})
	}
}
