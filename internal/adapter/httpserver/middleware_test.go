package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
	"github.com/simonboegh/x-sentiment-tracker/internal/platform/correlation"
	apperrors "github.com/simonboegh/x-sentiment-tracker/internal/platform/errors"
)

func TestMiddlewareWithStructuredError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return apperrors.ValidationError("invalid input")
	})

	err := handler(c)
	require.NoError(t, err) // ErrorHandlingMiddleware handles the error, doesn't return it

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid input", resp.Error)
	assert.Equal(t, apperrors.TypeValidation, resp.Type)
}

func TestMiddlewareWithStandardError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return errors.New("standard error")
	})

	err := handler(c)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
	assert.Equal(t, apperrors.TypeInternal, resp.Type)
}

func TestMiddlewareWithNoError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	err := handler(c)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", rec.Body.String())
}

func TestMiddlewareWithFields(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return apperrors.ExternalError("reddit fetch for GME failed", domain.ErrSourceFailed).
			WithField("symbol", "GME").
			WithField("source", "reddit")
	})

	err := handler(c)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "reddit fetch for GME failed", resp.Error)
	assert.Equal(t, apperrors.TypeExternal, resp.Type)
	assert.Len(t, resp.Context, 2)
	assert.Equal(t, "GME", resp.Context["symbol"])
	assert.Equal(t, "reddit", resp.Context["source"])
	assert.NotContains(t, rec.Body.String(), "upstream text source failed")
}

func TestMiddlewareAllErrorTypes(t *testing.T) {
	tests := []struct {
		name       string
		err        *apperrors.Error
		wantStatus int
		wantType   apperrors.ErrorType
	}{
		{
			name:       "validation",
			err:        apperrors.ValidationError("invalid"),
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.TypeValidation,
		},
		{
			name:       "not_found",
			err:        apperrors.NotFoundError("missing"),
			wantStatus: http.StatusNotFound,
			wantType:   apperrors.TypeNotFound,
		},
		{
			name:       "internal",
			err:        apperrors.InternalError("failed", errors.New("cause")),
			wantStatus: http.StatusInternalServerError,
			wantType:   apperrors.TypeInternal,
		},
		{
			name:       "external",
			err:        apperrors.ExternalError("source failed", errors.New("502")),
			wantStatus: http.StatusBadGateway,
			wantType:   apperrors.TypeExternal,
		},
		{
			name:       "timeout",
			err:        apperrors.TimeoutError("source timed out", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   apperrors.TypeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
				return tt.err
			})

			err := handler(c)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantType, resp.Type)
		})
	}
}

func TestMiddlewareWrappedStructuredError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return errors.Join(errors.New("context"), apperrors.TimeoutError("slow", nil))
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestMiddlewarePassesHTTPErrorThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return echo.ErrNotFound
	})

	err := handler(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestCorrelationMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
		reused  bool
	}{
		{"no header", "", false},
		{"valid header", "req-42", true},
		{"header with spaces", "not valid", false},
		{"header too long", strings.Repeat("a", 65), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.inbound != "" {
				req.Header.Set(requestIDHeader, tt.inbound)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen string
			handler := correlationMiddleware(func(c echo.Context) error {
				seen, _ = correlation.ID(c.Request().Context())
				return nil
			})

			require.NoError(t, handler(c))

			assert.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(requestIDHeader))
			if tt.reused {
				assert.Equal(t, tt.inbound, seen)
			} else {
				assert.NotEqual(t, tt.inbound, seen)
			}
		})
	}
}
