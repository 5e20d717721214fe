package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithData(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithData(rec, req, http.StatusCreated, map[string]int{"version": 2})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"version":2}}`, rec.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithTraceID(req.Context(), "trace-1"))

	t.Run("plain error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RespondWithErrorAndLog(rec, req, http.StatusBadGateway, "AI response could not be parsed",
			errors.New("upstream said sk-abcdefghijklmnopqrstuv"))

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "AI response could not be parsed", body.Error)
		assert.Equal(t, "trace-1", body.TraceID)
		assert.Empty(t, body.RawResponse)
	})

	t.Run("raw response is redacted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RespondWithErrorAndLog(rec, req, http.StatusBadGateway, "AI response could not be parsed", nil,
			WithRawResponse("here is your key sk-abcdefghijklmnopqrstuv and no json"))

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Contains(t, body.RawResponse, "[REDACTED_KEY]")
		assert.NotContains(t, body.RawResponse, "sk-abcdefghijklmnopqrstuv")
	})
}
