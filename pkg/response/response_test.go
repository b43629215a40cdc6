package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuccess(t *testing.T) {
	rr := httptest.NewRecorder()
	Success(rr, map[string]string{"status": "healthy"})

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.True(t, got.Success)
	require.Equal(t, map[string]any{"status": "healthy"}, got.Data)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, string)
		status int
	}{
		{name: "not found", write: NotFound, status: http.StatusNotFound},
		{name: "internal", write: InternalError, status: http.StatusInternalServerError},
		{name: "unavailable", write: ServiceUnavailable, status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.write(rr, "boom")

			require.Equal(t, tt.status, rr.Code)
			var got Response
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
			require.False(t, got.Success)
			require.Equal(t, "boom", got.Error)
		})
	}
}
