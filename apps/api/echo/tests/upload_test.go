package tests

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chikoro/core/user"
	filesvc "github.com/trezcool/chikoro/services/files"
)

func Test_uploadApi(t *testing.T) {
	e := setup(t)
	_, token := e.newUser(t, "rudo@test.zw", user.RoleStudent)

	upload := func(token, filename string, content []byte) *httptest.ResponseRecorder {
		req, rec := newUploadRequest(t, "/api/uploads", token, filename, content)
		e.app.ServeHTTP(rec, req)
		return rec
	}

	t.Run("auth required", func(t *testing.T) {
		rec := upload("", "essay.pdf", []byte("%PDF-1.4"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("file required", func(t *testing.T) {
		rec := e.do(http.MethodPost, "/api/uploads", token)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, string(marchallObj(t, httpErr{Detail: "a file is required", Fields: map[string]string{"file": "a file is required"}})), rec.Body.String())
	})

	t.Run("too large", func(t *testing.T) {
		for _, size := range []int{1<<20 + 1, 2 << 20} {
			rec := upload(token, "big.pdf", bytes.Repeat([]byte("x"), size))
			require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
			assert.JSONEq(t, `{"detail": "File too large"}`, rec.Body.String())
		}
	})

	var stored filesvc.Stored
	t.Run("uploaded", func(t *testing.T) {
		rec := upload(token, "My Essay.PDF", []byte("%PDF-1.4 essay"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshal(t, rec, &stored)
		assert.Equal(t, "My Essay.PDF", stored.FileName)
		assert.True(t, strings.HasSuffix(stored.SavedAs, ".pdf"))
		assert.Equal(t, "/api/uploads/"+stored.SavedAs, stored.Path)
	})

	t.Run("no extension", func(t *testing.T) {
		rec := upload(token, "notes", []byte("hello"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var s filesvc.Stored
		unmarshal(t, rec, &s)
		assert.True(t, strings.HasSuffix(s.SavedAs, ".bin"))
	})

	t.Run("download", func(t *testing.T) {
		rec := e.do(http.MethodGet, stored.Path, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "%PDF-1.4 essay", rec.Body.String())
	})

	runTests(t, e, []httpTest{
		{name: "unknown file", method: http.MethodGet, path: "/api/uploads/nope.pdf", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "not found"})},
		{name: "hidden file", method: http.MethodGet, path: "/api/uploads/.env", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "not found"})},
		{name: "escaping the store", method: http.MethodGet, path: "/api/uploads/..%2Ftest.db", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "not found"})},
	})
}
