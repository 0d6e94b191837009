package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(w, r, ErrNotFound().WithMessage("Customer not found").AddMessages("a@x.com"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Customer not found", body["error"])
	assert.Equal(t, []interface{}{"a@x.com"}, body["messages"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestWriteErrorText(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	WriteErrorText(w, r, ErrConflict().
		WithMessage("Customer with this phone number already exists"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Customer with this phone number already exists", w.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestOK(t *testing.T) {
	env := OK("done", Envelope{"count": 3})
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "done", env["message"])
	assert.Equal(t, 3, env["count"])

	env = OK("", nil)
	_, hasMessage := env["message"]
	assert.False(t, hasMessage)
}
