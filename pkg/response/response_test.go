package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/quickshop/storefront/pkg/errors"
)

func performRequest(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)

	return recorder
}

func TestSuccessEnvelope(t *testing.T) {
	recorder := performRequest(t, func(c *gin.Context) {
		Success(c, http.StatusOK, gin.H{"products": []string{}})
	})

	require.Equal(t, http.StatusOK, recorder.Code)

	var body Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Nil(t, body.Error)
}

func TestErrorUsesAppErrorStatus(t *testing.T) {
	recorder := performRequest(t, func(c *gin.Context) {
		Error(c, appErrors.ErrNotFound)
	})

	require.Equal(t, http.StatusNotFound, recorder.Code)

	var body Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestErrorWrapsGenericFailure(t *testing.T) {
	recorder := performRequest(t, func(c *gin.Context) {
		Error(c, errors.New("backend exploded"))
	})

	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	var body Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "INTERNAL_SERVER_ERROR", body.Error.Code)
	// Internal details must never leak to clients.
	require.NotContains(t, body.Error.Message, "exploded")
}
