package tests

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chikoro/core/user"
	sqlxrepos "github.com/trezcool/chikoro/storage/database/sqlx"
	testutil "github.com/trezcool/chikoro/tests"
)

func Test_userApi_query(t *testing.T) {
	e := setup(t)

	path := func(search, ordering string, isActive *bool, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if isActive != nil {
			v.Add("is_active", strconv.FormatBool(*isActive))
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/api/users?" + v.Encode()
	}
	bPtr := func(b bool) *bool { return &b }

	start := time.Now().Add(-24 * time.Hour)
	at := func(h int) time.Time { return start.Add(time.Duration(h) * time.Hour) }

	admin := testutil.CreateUser(t, e.db, "admin@test.zw", user.RoleSuperAdmin, true, at(1))
	staff := testutil.CreateUser(t, e.db, "office@test.zw", user.RoleAdminStaff, true, at(2))
	bursar := testutil.CreateUser(t, e.db, "bursar@test.zw", user.RoleFinanceOfficer, true, at(3))
	teacher := testutil.CreateUser(t, e.db, "teacher@test.zw", user.RoleTeacher, true, at(4))
	student := testutil.CreateUser(t, e.db, "hero@test.zw", user.RoleStudent, true, at(5))
	naughty := testutil.CreateUser(t, e.db, "ndog@test.zw", user.RoleStudent, false, at(6)) // 😂

	adminToken := e.getToken(t, admin)

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
		wantIDs  []user.User
	}{
		{name: "Auth required", path: "/api/users", wantCode: http.StatusUnauthorized},
		{name: "Admin required", path: "/api/users", token: e.getToken(t, teacher), wantCode: http.StatusForbidden},
		{name: "Admin staff allowed", path: path("office", "", nil), token: e.getToken(t, staff), wantIDs: []user.User{staff}},
		{
			name: "Get all (newest first)", path: "/api/users", token: adminToken,
			wantIDs: []user.User{naughty, student, teacher, bursar, staff, admin},
		},
		// filtering
		{name: "search (unknown)", path: path("lol", "", nil), token: adminToken, wantIDs: []user.User{}},
		{name: "search=TEA", path: path("TEA", "", nil), token: adminToken, wantIDs: []user.User{teacher}},
		{name: "role (unknown)", path: path("", "", nil, "lol"), token: adminToken, wantIDs: []user.User{}},
		{name: "role=STUDENT", path: path("", "", nil, user.RoleStudent), token: adminToken, wantIDs: []user.User{naughty, student}},
		{
			name: "role=TEACHER&role=FINANCE_OFFICER", path: path("", "", nil, user.RoleTeacher, user.RoleFinanceOfficer),
			token: adminToken, wantIDs: []user.User{teacher, bursar},
		},
		{
			name: "role=SUPER_ADMIN,ADMIN_STAFF", path: path("", "", nil, user.RoleSuperAdmin+","+user.RoleAdminStaff),
			token: adminToken, wantIDs: []user.User{staff, admin},
		},
		{name: "is_active=false", path: path("", "", bPtr(false)), token: adminToken, wantIDs: []user.User{naughty}},
		{
			name: "all combo", path: path("o", "", bPtr(true), user.RoleStudent, user.RoleAdminStaff),
			token: adminToken, wantIDs: []user.User{student, staff},
		},
		// ordering
		{
			name: "order by created_at", path: path("", "created_at", nil), token: adminToken,
			wantIDs: []user.User{admin, staff, bursar, teacher, student, naughty},
		},
		{
			name: "order by email", path: path("", "email", nil), token: adminToken,
			wantIDs: []user.User{admin, bursar, student, naughty, staff, teacher},
		},
		{
			name: "order by is_active,-email", path: path("", "is_active,-email", nil), token: adminToken,
			wantIDs: []user.User{naughty, teacher, staff, student, bursar, admin},
		},
		// paging
		{name: "skip & limit", path: "/api/users?ordering=email&skip=1&limit=2", token: adminToken, wantIDs: []user.User{bursar, student}},
	}
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodGet, tt.path, tt.token)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantIDs == nil {
				return
			}
			want := make([]string, 0, len(tt.wantIDs))
			for _, usr := range tt.wantIDs {
				want = append(want, usr.ID)
			}
			assert.Equal(t, want, ids(t, rec))
		})
	}
}

func Test_userApi_create(t *testing.T) {
	e := setup(t)

	testutil.CreateUser(t, e.db, "taken@test.zw", user.RoleTeacher, true)
	_, adminToken := e.newUser(t, "admin@test.zw", user.RoleSuperAdmin)
	_, staffToken := e.newUser(t, "office@test.zw", user.RoleAdminStaff)

	newUser := func(email, pwd, role string) []byte {
		return marchallObj(t, user.NewUser{Email: email, Password: pwd, Role: role})
	}
	reqMsg := "this field is required"

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Super admin required", token: staffToken, body: newUser("new@test.zw", "LolC@t123", user.RoleTeacher), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "required fields", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Detail: reqMsg, Fields: map[string]string{"email": reqMsg, "password": reqMsg, "role": reqMsg}}),
		},
		{
			name: "invalid role", token: adminToken, body: newUser("new@test.zw", "LolC@t123", "JANITOR"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Detail: "role must be one of: SUPER_ADMIN, ADMIN_STAFF, FINANCE_OFFICER, TEACHER, PARENT, STUDENT",
				Fields: map[string]string{"role": "role must be one of: SUPER_ADMIN, ADMIN_STAFF, FINANCE_OFFICER, TEACHER, PARENT, STUDENT"},
			}),
		},
		{
			name: "weak password", token: adminToken, body: newUser("new@test.zw", "lol12345", user.RoleTeacher), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Detail: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
				Fields: map[string]string{"password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
			}),
		},
		{
			name: "email taken", token: adminToken, body: newUser(" TAKEN@test.zw", "LolC@t123", user.RoleTeacher), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Detail: "Email already registered", Fields: map[string]string{"email": "Email already registered"}}),
		},
		{name: "created", token: adminToken, body: newUser("New@Test.zw", "LolC@t123", user.RoleTeacher), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/users"

		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(tt.method, tt.path, tt.token, tt.body)
			if tt.wantCode == http.StatusCreated {
				require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
				var usr user.User
				unmarshal(t, rec, &usr)
				assert.NotEmpty(t, usr.ID)
				assert.Equal(t, "new@test.zw", usr.Email)
				assert.True(t, usr.IsActive)

				stored, err := sqlxrepos.NewUserRepository(e.db).GetUserByEmail(context.Background(), "new@test.zw")
				require.NoError(t, err)
				assert.NoError(t, stored.CheckPassword("LolC@t123"))
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_update(t *testing.T) {
	e := setup(t)

	admin, adminToken := e.newUser(t, "admin@test.zw", user.RoleSuperAdmin)
	teacher := testutil.CreateUser(t, e.db, "teacher@test.zw", user.RoleTeacher, true)
	_, staffToken := e.newUser(t, "office@test.zw", user.RoleAdminStaff)

	deactivate := marchallObj(t, user.UpdateUser{IsActive: new(bool)})

	tests := []httpTest{
		{name: "Super admin required", path: "/api/users/" + teacher.ID, token: staffToken, body: deactivate, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "is_active required", path: "/api/users/" + teacher.ID, token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Detail: "this field is required", Fields: map[string]string{"is_active": "this field is required"}}),
		},
		{name: "unknown user", path: "/api/users/nope", token: adminToken, body: deactivate, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "not found"})},
		{
			name: "cannot deactivate self", path: "/api/users/" + admin.ID, token: adminToken, body: deactivate,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Detail: "You cannot deactivate your own account"}),
		},
		{name: "deactivated", path: "/api/users/" + teacher.ID, token: adminToken, body: deactivate, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPatch

		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(tt.method, tt.path, tt.token, tt.body)
			if tt.wantCode == http.StatusOK {
				require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
				var usr user.User
				unmarshal(t, rec, &usr)
				assert.Equal(t, teacher.ID, usr.ID)
				assert.False(t, usr.IsActive)
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// a deactivated user can no longer log in, nor refresh
	rec := e.do(http.MethodPost, "/api/auth/token-refresh", e.getToken(t, teacher))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func Test_userApi_queryRoles(t *testing.T) {
	e := setup(t)

	_, adminToken := e.newUser(t, "office@test.zw", user.RoleAdminStaff)
	_, parentToken := e.newUser(t, "parent@test.zw", user.RoleParent)

	runTests(t, e, []httpTest{
		{name: "Auth required", method: http.MethodGet, path: "/api/users/roles", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", method: http.MethodGet, path: "/api/users/roles", token: parentToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "roles", method: http.MethodGet, path: "/api/users/roles", token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, user.Roles)},
	})
}
