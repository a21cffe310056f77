package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/message"
	"github.com/trezcool/chikoro/core/user"
)

const testToken = "header.payload.signature"

var teacher = user.Profile{
	User:       user.User{ID: "u1", Email: "teacher@test.zw", Role: user.RoleTeacher, IsActive: true},
	ProfileIDs: user.ProfileIDs{TeacherID: "t1"},
	FirstName:  "Tendai",
	LastName:   "Moyo",
}

// fakeAPI answers like the API server for a signed-in teacher holding testToken.
func fakeAPI(t *testing.T) *httptest.Server {
	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "missing or malformed jwt"})
			return false
		}
		return true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if body["email"] != teacher.Email || body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, TokenResponse{AccessToken: testToken, TokenType: "bearer", User: teacher})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if authorized(w, r) {
			prof := teacher
			prof.LastName = "Moyo-Dube"
			writeJSON(w, http.StatusOK, prof)
		}
	})
	mux.HandleFunc("/api/messages", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		switch r.URL.Query().Get("folder") {
		case "", "inbox":
			writeJSON(w, http.StatusOK, []message.Message{{ID: "m1", Subject: r.URL.Query().Get("skip") + "/" + r.URL.Query().Get("limit")}})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"detail": "folder must be one of: inbox, sent",
				"fields": map[string]string{"folder": "folder must be one of: inbox, sent"},
			})
		}
	})
	mux.HandleFunc("/api/finance/summary", func(w http.ResponseWriter, r *http.Request) {
		if authorized(w, r) {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Insufficient permissions"})
		}
	})
	mux.HandleFunc("/api/legacy", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "already exists"})
	})
	mux.HandleFunc("/api/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})
	mux.HandleFunc("/api/empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/uploads", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		f, fh, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "a file is required"})
			return
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		writeJSON(w, http.StatusOK, map[string]string{
			"path": "/api/uploads/abc.pdf", "file_name": fh.Filename, "saved_as": "abc.pdf:" + string(content),
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	c, err := New(srv.URL+"/api/", opts...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{name: "empty", baseURL: "  ", wantErr: true},
		{name: "host", baseURL: "http://localhost:8000", want: "http://localhost:8000"},
		{name: "trailing slash", baseURL: "http://localhost:8000/", want: "http://localhost:8000"},
		{name: "api root", baseURL: "https://school.example/api", want: "https://school.example"},
		{name: "api root with slash", baseURL: "https://school.example/api/", want: "https://school.example"},
		{name: "sub path", baseURL: "https://example.com/chikoro/api", want: "https://example.com/chikoro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.baseURL)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.BaseURL())
		})
	}
}

func TestClient_session(t *testing.T) {
	srv := fakeAPI(t)
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "chikoro", "session.json"))
	c := newTestClient(t, srv, WithStore(store))

	t.Run("signed out", func(t *testing.T) {
		assert.False(t, c.IsAuthenticated())
		usr, err := c.LoadUser(ctx)
		require.NoError(t, err)
		assert.Nil(t, usr)

		_, err = c.Messages.Folder(ctx, "", core.Page{})
		assert.Equal(t, ErrUnauthorized, err)
	})

	t.Run("bad credentials", func(t *testing.T) {
		_, err := c.Login(ctx, teacher.Email, "nope")
		assert.Equal(t, ErrUnauthorized, err)
		assert.False(t, c.IsAuthenticated())
	})

	t.Run("login", func(t *testing.T) {
		prof, err := c.Login(ctx, teacher.Email, "secret")
		require.NoError(t, err)
		assert.Equal(t, teacher.ID, prof.ID)
		assert.True(t, c.IsAuthenticated())

		// a new client on the same file is signed in too
		other := newTestClient(t, srv, WithStore(NewFileStore(store.path)))
		require.NotNil(t, other.CurrentUser())
		assert.Equal(t, "t1", other.CurrentUser().TeacherID)
	})

	t.Run("token is sent", func(t *testing.T) {
		msgs, err := c.Messages.Folder(ctx, "inbox", core.Page{Skip: 10, Limit: 5})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "10/5", msgs[0].Subject)
	})

	t.Run("load user refreshes it", func(t *testing.T) {
		usr, err := c.LoadUser(ctx)
		require.NoError(t, err)
		require.NotNil(t, usr)
		assert.Equal(t, "Moyo-Dube", usr.LastName)
		assert.Equal(t, "Moyo-Dube", c.CurrentUser().LastName)
	})

	t.Run("upload", func(t *testing.T) {
		stored, err := c.Uploads.Upload(ctx, "essay.pdf", strings.NewReader("%PDF"))
		require.NoError(t, err)
		assert.Equal(t, "essay.pdf", stored.FileName)
		assert.Equal(t, "abc.pdf:%PDF", stored.SavedAs)
	})

	t.Run("logout", func(t *testing.T) {
		require.NoError(t, c.Logout())
		assert.False(t, c.IsAuthenticated())
		assert.Nil(t, c.CurrentUser())
		require.NoError(t, c.Logout())
	})
}

func TestClient_unauthorizedClearsSession(t *testing.T) {
	srv := fakeAPI(t)
	ctx := context.Background()
	store := NewMemoryStore()
	c := newTestClient(t, srv, WithStore(store))

	prof := teacher
	require.NoError(t, store.Save(Session{Token: "expired", User: &prof}))

	_, err := c.LoadUser(ctx)
	assert.Equal(t, ErrUnauthorized, err)
	sess, _ := store.Load()
	assert.Equal(t, Session{}, sess)
}

// stuckStore cannot forget its session.
type stuckStore struct {
	*MemoryStore
}

var errStuck = errors.New("read-only session file")

func (stuckStore) Clear() error { return errStuck }

func TestClient_unauthorizedReportsClearFailure(t *testing.T) {
	srv := fakeAPI(t)
	ctx := context.Background()
	store := stuckStore{NewMemoryStore()}
	c := newTestClient(t, srv, WithStore(store))

	prof := teacher
	require.NoError(t, store.Save(Session{Token: "expired", User: &prof}))

	_, err := c.Messages.Folder(ctx, "inbox", core.Page{})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, errStuck)
	assert.Contains(t, err.Error(), "session not cleared")

	_, err = c.LoadUser(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, errStuck)
	assert.Equal(t, 1, strings.Count(err.Error(), "session not cleared"))
}

func TestClient_errors(t *testing.T) {
	srv := fakeAPI(t)
	ctx := context.Background()
	c := newTestClient(t, srv)
	_, err := c.Login(ctx, teacher.Email, "secret")
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		want *APIError
	}{
		{
			name: "detail",
			call: func() error { _, err := c.Messages.Folder(ctx, "trash", core.Page{}); return err },
			want: &APIError{Status: http.StatusBadRequest, Detail: "folder must be one of: inbox, sent"},
		},
		{
			name: "forbidden",
			call: func() error { _, err := c.Finance.Summary(ctx, ""); return err },
			want: &APIError{Status: http.StatusForbidden, Detail: "Insufficient permissions"},
		},
		{
			name: "message",
			call: func() error { return c.get(ctx, "/legacy", nil, nil) },
			want: &APIError{Status: http.StatusConflict, Detail: "already exists"},
		},
		{
			name: "not json",
			call: func() error { return c.get(ctx, "/broken", nil, nil) },
			want: &APIError{Status: http.StatusBadGateway, Detail: "Bad Gateway"},
		},
		{
			name: "unknown route",
			call: func() error { return c.get(ctx, "/nope", nil, nil) },
			want: &APIError{Status: http.StatusNotFound, Detail: "Not Found"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.Equal(t, tt.want, err)
			assert.True(t, IsStatus(err, tt.want.Status))
		})
	}

	t.Run("no content", func(t *testing.T) {
		out := map[string]string{"untouched": "yes"}
		require.NoError(t, c.get(ctx, "/empty", nil, &out))
		assert.Equal(t, map[string]string{"untouched": "yes"}, out)
	})

	// errors other than 401 keep the session
	assert.True(t, c.IsAuthenticated())
}

func TestFileStore(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Session{}, sess)

	prof := teacher
	require.NoError(t, store.Save(Session{Token: testToken, User: &prof}))
	sess, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, testToken, sess.Token)
	require.NotNil(t, sess.User)
	assert.Equal(t, teacher.Email, sess.User.Email)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	sess, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, Session{}, sess)
}

func TestHomePath(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{user.RoleSuperAdmin, "/admin"},
		{user.RoleAdminStaff, "/admin"},
		{user.RoleTeacher, "/teacher"},
		{user.RoleStudent, "/student"},
		{user.RoleParent, "/parent"},
		{user.RoleFinanceOfficer, "/finance"},
		{"", "/"},
		{"JANITOR", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, HomePath(tt.role))
		})
	}
}

func TestCanAccess(t *testing.T) {
	tests := []struct {
		name string
		role string
		path string
		want bool
	}{
		{name: "public page", role: "", path: "/admissions", want: true},
		{name: "home", role: user.RoleStudent, path: "/", want: true},
		{name: "visitor in a dashboard", role: "", path: "/student", want: false},
		{name: "admin dashboard", role: user.RoleAdminStaff, path: "/admin/applications", want: true},
		{name: "super admin", role: user.RoleSuperAdmin, path: "/admin", want: true},
		{name: "teacher in admin", role: user.RoleTeacher, path: "/admin/students", want: false},
		{name: "teacher dashboard", role: user.RoleTeacher, path: "/teacher/attendance?class=1", want: true},
		{name: "admin in finance", role: user.RoleAdminStaff, path: "/finance", want: false},
		{name: "finance officer", role: user.RoleFinanceOfficer, path: "/finance/messages", want: true},
		{name: "parent in student", role: user.RoleParent, path: "/student/results", want: false},
		{name: "prefix is not an area", role: "", path: "/administration", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.role, tt.path))
		})
	}
}
