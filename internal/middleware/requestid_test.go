package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRequestID(t *testing.T, inbound string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set("X-Request-ID", inbound)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestIDMiddleware(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return c, rec
}

func TestRequestIDKeepsInboundID(t *testing.T) {
	c, rec := runRequestID(t, "upstream-42")
	assert.Equal(t, "upstream-42", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "upstream-42", c.Get("request_id"))
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	c, rec := runRequestID(t, "")
	id := rec.Header().Get("X-Request-ID")
	assert.NotEmpty(t, id)
	assert.Equal(t, id, c.Get("request_id"))
}
