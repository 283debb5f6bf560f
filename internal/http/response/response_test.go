package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cabletrack/cabletrack/internal/apperr"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.NotFound("subscriber", "x"), http.StatusNotFound},
		{"conflict", apperr.Conflict("already active"), http.StatusConflict},
		{"validation", apperr.Validation("bad amount"), http.StatusUnprocessableEntity},
		{"wrapped not found", fmt.Errorf("storage.GetSubscriber: %w", apperr.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestEnvelopes(t *testing.T) {
	assert.Equal(t, Response{Status: StatusOK}, OK())
	assert.Equal(t, Response{Status: StatusOK, Data: 42}, OKWithData(42))
	assert.Equal(t, ErrorResponse{Status: StatusError, Error: "boom"}, Error("boom"))
}
