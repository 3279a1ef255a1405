package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshop-hub/backend/pkg/apperror"
)

func testContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestParamID(t *testing.T) {
	c, _ := testContext(t, "/sessions/12")
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	id, ok := ParamID(c, "id", "session")
	require.True(t, ok)
	assert.Equal(t, int64(12), id)

	c, w := testContext(t, "/sessions/abc")
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	_, ok = ParamID(c, "id", "session")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid session id")
}

func TestQueryHelpers(t *testing.T) {
	c, _ := testContext(t, "/x?workshop_id=3&date_from=2024-05-01&answered=0")
	id, err := QueryID(c, "workshop_id")
	require.NoError(t, err)
	assert.Equal(t, int64(3), *id)

	d, err := QueryDate(c, "date_from")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", d.Format("2006-01-02"))

	b, err := QueryBool(c, "answered")
	require.NoError(t, err)
	assert.False(t, *b)

	missing, err := QueryID(c, "session_id")
	require.NoError(t, err)
	assert.Nil(t, missing)

	c, _ = testContext(t, "/x?date_to=05-01-2024&session_id=-1")
	_, err = QueryDate(c, "date_to")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	_, err = QueryID(c, "session_id")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"true": true, "TRUE": true, "1": true, "false": false, "0": false, "No": false} {
		got, err := ParseBool(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}
