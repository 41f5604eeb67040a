package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utafrali/accounts/pkg/logger"
)

func TestRecovery_WritesEnvelope(t *testing.T) {
	var buf bytes.Buffer
	handler := Recovery(newTestLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/addresses", nil)
	req = req.WithContext(logger.WithCorrelationID(context.Background(), "corr-9"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.Equal(t, "an internal error occurred", body["error"])
	assert.Equal(t, "corr-9", body["request_id"])
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "nil map write")
}

func TestRecovery_RepanicsOnAbortHandler(t *testing.T) {
	handler := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
