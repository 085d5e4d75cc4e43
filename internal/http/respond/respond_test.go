package respond

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONIncludesData(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, "Successfully fetched all data!", []string{"a"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"description":"Successfully fetched all data!","data":["a"]}`, rec.Body.String())
}

func TestErrorOmitsData(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, "user not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"description":"user not found"}`, rec.Body.String())
}
