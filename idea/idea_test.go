package idea_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zllovesuki/unaique/auth/authtest"
	"github.com/zllovesuki/unaique/idea"
	"github.com/zllovesuki/unaique/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateRequestKeys(t *testing.T) {
	var korean idea.CreateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"businessId":"biz","아이디어":"i","자막":"s","배경 설명":"b"}`), &korean))
	assert.Equal(t, idea.CreateRequest{BusinessID: "biz", Idea: "i", Subtitle: "s", Background: "b"}, korean)

	var english idea.CreateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"businessId":"biz","idea":"i","subtitle":"s","background":"b","아이디어":"ko"}`), &english))
	assert.Equal(t, "i", english.Idea)
}

func TestServiceCreate(t *testing.T) {
	issuer := authtest.New(t)
	store := memstore.NewIdeas()
	m, err := idea.NewManager(idea.ManagerOptions{Repository: store, Logger: zap.NewNop()})
	require.NoError(t, err)
	svc, err := idea.NewService(idea.Options{Auth: issuer.Auth, IdeaManager: m, Logger: zap.NewNop()})
	require.NoError(t, err)
	handler := svc.Router()

	post := func(bearer, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if bearer != "" {
			req.Header.Set("Authorization", bearer)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, post("", `{}`).Code)

	bearer := issuer.Bearer(t, "user_1")
	assert.Equal(t, http.StatusBadRequest, post(bearer, `{"businessId":"biz","아이디어":"i","자막":"s"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(bearer, `not json`).Code)

	rec := post(bearer, `{"businessId":"biz","아이디어":"i","자막":"s","배경 설명":"b"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "1", body["id"])

	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, "biz", all[0].CustomerID)
	assert.Equal(t, idea.AutomationStart, all[0].Automation)
	assert.Equal(t, "b", all[0].Background)
}
