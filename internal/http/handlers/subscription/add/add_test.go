package add

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/models"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Add(ctx context.Context, subscriberID string, req models.DummySubscribeRequest) (*models.SubscriptionEntry, error) {
	args := m.Called(ctx, subscriberID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionEntry), args.Error(1)
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequest(t *testing.T, subscriberID string, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/subscribers/"+subscriberID+"/subscription", bytes.NewReader([]byte(body)))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", subscriberID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestServeHTTP(t *testing.T) {
	svc := new(mockService)
	h := New(noopLogger(), svc)

	svc.On("Add", mock.Anything, "sub-1", models.DummySubscribeRequest{PackName: "Gold", DurationMonths: 3}).
		Return(&models.SubscriptionEntry{ID: "e-1", SubscriberID: "sub-1", PackName: "Gold", DurationMonths: 3}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, newRequest(t, "sub-1", `{"pack_name":"Gold","duration_months":3}`))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp response.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, response.StatusOK, resp.Status)
	svc.AssertExpectations(t)
}

func TestServeHTTP_BadBody(t *testing.T) {
	svc := new(mockService)
	h := New(noopLogger(), svc)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, newRequest(t, "sub-1", `{not json`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestServeHTTP_MissingFields(t *testing.T) {
	svc := new(mockService)
	h := New(noopLogger(), svc)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, newRequest(t, "sub-1", `{"pack_name":"Gold"}`))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestServeHTTP_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"subscriber missing", apperr.NotFound("subscriber", "sub-1"), http.StatusNotFound},
		{"already subscribed", apperr.Conflict("subscriber already has an active subscription"), http.StatusConflict},
		{"retired pack", apperr.Validation("pack is retired"), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			h := New(noopLogger(), svc)

			svc.On("Add", mock.Anything, "sub-1", mock.Anything).Return(nil, tt.err)

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, newRequest(t, "sub-1", `{"pack_name":"Gold","duration_months":1}`))

			assert.Equal(t, tt.wantCode, rr.Code)
			var resp response.Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, response.StatusError, resp.Status)
		})
	}
}
