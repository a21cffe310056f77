package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/chikoro/core/profile"
	"github.com/trezcool/chikoro/core/user"
	sqlxrepos "github.com/trezcool/chikoro/storage/database/sqlx"
	testutil "github.com/trezcool/chikoro/tests"
)

func Test_profileApi_students(t *testing.T) {
	e := setup(t)
	s := e.school

	_, teacherToken := e.newUser(t, "teacher@test.zw", user.RoleTeacher)
	_, financeToken := e.newUser(t, "bursar@test.zw", user.RoleFinanceOfficer)

	zoe := testutil.CreateStudent(t, e.db, "", "Zoe", "Banda", "F", s.Class1)
	ali := testutil.CreateStudent(t, e.db, "", "Ali", "Banda", "M", s.Class4)
	tino := testutil.CreateStudent(t, e.db, "", "Tino", "Dube", "M", s.Class4)

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
		want     []profile.Student
	}{
		{name: "Staff required", path: "/api/students", token: financeToken, wantCode: http.StatusForbidden},
		{name: "all (by name)", path: "/api/students", token: teacherToken, want: []profile.Student{ali, zoe, tino}},
		{name: "of a class", path: "/api/students?class_id=" + s.Class4.ID, token: teacherToken, want: []profile.Student{ali, tino}},
		{
			name: "of a form", path: fmt.Sprintf("/api/students?form_id=%s&academic_year_id=%s", s.Form1.ID, s.Year.ID),
			token: teacherToken, want: []profile.Student{zoe},
		},
		{name: "form without year is ignored", path: "/api/students?form_id=" + s.Form1.ID, token: teacherToken, want: []profile.Student{ali, zoe, tino}},
		{name: "paged", path: "/api/students?skip=1&limit=1", token: teacherToken, want: []profile.Student{zoe}},
	}
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodGet, tt.path, tt.token)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.want == nil {
				return
			}
			want := make([]string, 0, len(tt.want))
			for _, st := range tt.want {
				want = append(want, st.ID)
			}
			assert.Equal(t, want, ids(t, rec))
		})
	}

	// placement is attached to listed students
	rec := e.do(http.MethodGet, "/api/students?class_id="+s.Class1.ID, teacherToken)
	var placed []profile.PlacedStudent
	unmarshal(t, rec, &placed)
	require.Len(t, placed, 1)
	assert.Equal(t, s.Class1.ID, placed[0].ClassID)
	assert.Equal(t, "Form 1", placed[0].FormName)
}

func Test_profileApi_student(t *testing.T) {
	e := setup(t)
	s := e.school

	_, teacherToken := e.newUser(t, "teacher@test.zw", user.RoleTeacher)
	rudoUsr := testutil.CreateUser(t, e.db, "rudo@test.zw", user.RoleStudent, true)
	rudo := testutil.CreateStudent(t, e.db, rudoUsr.ID, "Rudo", "Chikore", "F", s.Class1)
	other := testutil.CreateStudent(t, e.db, "", "Tino", "Dube", "M", s.Class1)

	parentUsr := testutil.CreateUser(t, e.db, "mai.rudo@test.zw", user.RoleParent, true)
	testutil.CreateParent(t, e.db, parentUsr.ID, "Mai", "Chikore", rudo)
	parentToken := e.getToken(t, parentUsr)
	studentToken := e.getToken(t, rudoUsr)

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
		wantID   string
		wantErr  string
	}{
		{name: "student role not allowed", path: "/api/students/" + rudo.ID, token: studentToken, wantCode: http.StatusForbidden, wantErr: "Insufficient permissions"},
		{name: "staff", path: "/api/students/" + other.ID, token: teacherToken, wantCode: http.StatusOK, wantID: other.ID},
		{name: "unknown", path: "/api/students/nope", token: teacherToken, wantCode: http.StatusNotFound, wantErr: "not found"},
		{name: "linked parent", path: "/api/students/" + rudo.ID, token: parentToken, wantCode: http.StatusOK, wantID: rudo.ID},
		{name: "unlinked parent", path: "/api/students/" + other.ID, token: parentToken, wantCode: http.StatusForbidden, wantErr: "Not linked to this student"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodGet, tt.path, tt.token)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantErr != "" {
				checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: marchallObj(t, httpErr{Detail: tt.wantErr})}, rec)
				return
			}
			var got profile.Student
			unmarshal(t, rec, &got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func Test_profileApi_me(t *testing.T) {
	e := setup(t)
	s := e.school

	rudoUsr, rudoToken := e.newUser(t, "rudo@test.zw", user.RoleStudent)
	rudo := testutil.CreateStudent(t, e.db, rudoUsr.ID, "Rudo", "Chikore", "F", s.Class4)
	_, lostToken := e.newUser(t, "lost@test.zw", user.RoleStudent)

	tchUsr, tchToken := e.newUser(t, "teacher@test.zw", user.RoleTeacher)
	tch := testutil.CreateTeacher(t, e.db, tchUsr.ID, "Tendai", "Moyo")
	err := sqlxrepos.NewProfileRepository(e.db).AssignTeacher(context.Background(), s.Class4.ID, s.Subject.ID, tch.ID, s.Year.ID)
	require.NoError(t, err)

	parUsr, parToken := e.newUser(t, "parent@test.zw", user.RoleParent)
	par := testutil.CreateParent(t, e.db, parUsr.ID, "Mai", "Chikore", rudo)

	t.Run("student", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/students/me", rudoToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got profile.PlacedStudent
		unmarshal(t, rec, &got)
		assert.Equal(t, rudo.ID, got.ID)
		assert.Equal(t, s.Class4.ID, got.ClassID)
		assert.Equal(t, "Blue", got.StreamName)
	})
	t.Run("student without record", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/students/me", lostToken)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "Student profile not found"})}, rec)
	})
	t.Run("teacher", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/teachers/me", tchToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got profile.TeacherDetail
		unmarshal(t, rec, &got)
		assert.Equal(t, tch.ID, got.ID)
		assert.Equal(t, []profile.TeacherClass{{
			ClassID: s.Class4.ID, ClassName: s.Class4.Name, SubjectID: s.Subject.ID, SubjectName: s.Subject.Name,
		}}, got.Classes)
	})
	t.Run("teacher endpoint is for teachers", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/teachers/me", rudoToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("parent", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/parents/me", parToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got profile.ParentDetail
		unmarshal(t, rec, &got)
		assert.Equal(t, par.ID, got.ID)
		assert.Equal(t, []profile.LinkedStudent{{
			ID: rudo.ID, FirstName: "Rudo", LastName: "Chikore", Gender: "F", Relationship: "Guardian",
		}}, got.Students)
	})
}

func Test_profileApi_staffLists(t *testing.T) {
	e := setup(t)

	_, adminToken := e.newUser(t, "office@test.zw", user.RoleAdminStaff)
	_, teacherToken := e.newUser(t, "teacher@test.zw", user.RoleTeacher)
	moyo := testutil.CreateTeacher(t, e.db, "", "Tendai", "Moyo")
	banda := testutil.CreateTeacher(t, e.db, "", "Chipo", "Banda")
	mai := testutil.CreateParent(t, e.db, "", "Mai", "Chikore")

	runTests(t, e, []httpTest{
		{name: "teachers: admin required", method: http.MethodGet, path: "/api/teachers", token: teacherToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "teachers", method: http.MethodGet, path: "/api/teachers", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, banda, moyo)},
		{name: "teacher", method: http.MethodGet, path: "/api/teachers/" + moyo.ID, token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, moyo)},
		{name: "parents", method: http.MethodGet, path: "/api/parents", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, mai)},
	})
}

func Test_profileApi_importStudents(t *testing.T) {
	e := setup(t)
	s := e.school

	_, adminToken := e.newUser(t, "admin@test.zw", user.RoleSuperAdmin)
	_, teacherToken := e.newUser(t, "teacher@test.zw", user.RoleTeacher)

	book := excelize.NewFile()
	rows := [][]interface{}{
		{"First name", "Last name", "Gender", "Date of birth", "Phone"},
		{"Rudo", "Chikore", "F", "2010-03-14", "+263 77 000 0001"},
		{"Tino", "Dube", "M", "", ""},
		{"", "Nameless", "M", "", ""},
		{"Bad", "Date", "F", "14/03/2010", ""},
	}
	for i, row := range rows {
		require.NoError(t, book.SetSheetRow(book.GetSheetName(0), fmt.Sprintf("A%d", i+1), &row))
	}
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)
	xlsx := buf.Bytes()

	tests := []struct {
		name     string
		path     string
		token    string
		content  []byte
		wantCode int
		wantData []byte
	}{
		{name: "Admin required", path: "/api/students/import?class_id=" + s.Class1.ID, token: teacherToken, content: xlsx, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "class required", path: "/api/students/import", token: adminToken, content: xlsx, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Detail: "class_id is required", Fields: map[string]string{"class_id": "class_id is required"}}),
		},
		{
			name: "not a workbook", path: "/api/students/import?class_id=" + s.Class1.ID, token: adminToken, content: []byte("lol"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Detail: "the file is not a readable .xlsx workbook", Fields: map[string]string{"file": "the file is not a readable .xlsx workbook"}}),
		},
		{name: "unknown class", path: "/api/students/import?class_id=nope", token: adminToken, content: xlsx, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "not found"})},
		{
			name: "imported", path: "/api/students/import?class_id=" + s.Class1.ID, token: adminToken, content: xlsx,
			wantCode: http.StatusOK, wantData: marchallObj(t, profile.ImportResult{Imported: 2, Skipped: 2}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newUploadRequest(t, tt.path, tt.token, "students.xlsx", tt.content)
			e.app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
		})
	}

	rec := e.do(http.MethodGet, "/api/students?class_id="+s.Class1.ID, adminToken)
	var placed []profile.PlacedStudent
	unmarshal(t, rec, &placed)
	require.Len(t, placed, 2)
	assert.Equal(t, "Chikore", placed[0].LastName)
	assert.Equal(t, "2010-03-14", placed[0].DateOfBirth.String())
	assert.Equal(t, "Dube", placed[1].LastName)
}
