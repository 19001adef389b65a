package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	e := echo.New()
	m := New()

	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	fail := func(c echo.Context) error { return echo.NewHTTPError(http.StatusForbidden) }

	for _, h := range []echo.HandlerFunc{ok, ok, fail} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		_ = m.Middleware()(h)(c)
	}

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
	assert.Equal(t, int64(2), snap.StatusCodes[http.StatusOK])
	assert.Equal(t, int64(1), snap.StatusCodes[http.StatusForbidden])
	assert.Equal(t, int64(0), snap.ActiveRequests)
}

func TestRecordDecisions(t *testing.T) {
	m := New()
	m.Record("forbidden")
	m.Record("forbidden")
	m.Record("allowed")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.AuthDecisions["forbidden"])
	assert.Equal(t, int64(1), snap.AuthDecisions["allowed"])

	// snapshots are copies
	snap.AuthDecisions["forbidden"] = 99
	assert.Equal(t, int64(2), m.Snapshot().AuthDecisions["forbidden"])
}

func TestHandler(t *testing.T) {
	e := echo.New()
	m := New()
	m.Record("redirect_login")

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin/metrics", nil), rec)
	require.NoError(t, m.Handler(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect_login":1`)
}
