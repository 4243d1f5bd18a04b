package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"delivery-tracking/internal/http/handlers"
	"delivery-tracking/internal/http/router"
	"delivery-tracking/internal/logx"
	testlog "delivery-tracking/internal/testutil"
)

func TestNew_ServesBaseRoutes(t *testing.T) {
	base := handlers.New(testlog.New().Logger())
	tracking := &handlers.TrackingHandler{}

	h := router.New(logx.Nop(), base, tracking, nil)
	require.NotNil(t, h)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodHead, "/healthcheck", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/no-such-route", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
