package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chikoro/core/attendance"
	"github.com/trezcool/chikoro/core/user"
	testutil "github.com/trezcool/chikoro/tests"
)

func Test_attendanceApi(t *testing.T) {
	e := setup(t)
	s := e.school

	tchUsr := testutil.CreateUser(t, e.db, "teacher@test.zw", user.RoleTeacher, true)
	tch := testutil.CreateTeacher(t, e.db, tchUsr.ID, "Tendai", "Moyo")
	teacherToken := e.getToken(t, tchUsr)
	_, bursarToken := e.newUser(t, "bursar@test.zw", user.RoleFinanceOfficer)

	rudoUsr := testutil.CreateUser(t, e.db, "rudo@test.zw", user.RoleStudent, true)
	rudo := testutil.CreateStudent(t, e.db, rudoUsr.ID, "Rudo", "Chikore", "F", s.Class1)
	tino := testutil.CreateStudent(t, e.db, "", "Tino", "Dube", "M", s.Class1)
	rudoToken := e.getToken(t, rudoUsr)

	parUsr := testutil.CreateUser(t, e.db, "parent@test.zw", user.RoleParent, true)
	testutil.CreateParent(t, e.db, parUsr.ID, "Mai", "Dube", tino)
	parToken := e.getToken(t, parUsr)

	classPath := "/api/attendance?class_id=" + s.Class1.ID
	mark := func(studentID, date, status string) []byte {
		return []byte(`{"student_id": "` + studentID + `", "date": "` + date + `", "status": "` + status + `"}`)
	}
	okData := []byte(`{"ok": true}`)

	runTests(t, e, []httpTest{
		{name: "mark: staff required", method: http.MethodPost, path: classPath, token: bursarToken, body: mark(rudo.ID, "2024-02-01", "PRESENT"), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "mark: class required", method: http.MethodPost, path: "/api/attendance", token: teacherToken, body: mark(rudo.ID, "2024-02-01", "PRESENT"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Detail: "class_id is required", Fields: map[string]string{"class_id": "class_id is required"}}),
		},
		{
			name: "mark: unknown status", method: http.MethodPost, path: classPath, token: teacherToken, body: mark(rudo.ID, "2024-02-01", "SICK"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{
				Detail: "status must be one of: PRESENT, ABSENT, LATE, EXCUSED",
				Fields: map[string]string{"status": "status must be one of: PRESENT, ABSENT, LATE, EXCUSED"},
			}),
		},
		{name: "mark: bad date", method: http.MethodPost, path: classPath, token: teacherToken, body: mark(rudo.ID, "01/02/2024", "PRESENT"), wantCode: http.StatusBadRequest},
		{name: "mark", method: http.MethodPost, path: classPath, token: teacherToken, body: mark(rudo.ID, "2024-02-01", "ABSENT"), wantCode: http.StatusOK, wantData: okData},
		{name: "mark again overwrites", method: http.MethodPost, path: classPath, token: teacherToken, body: mark(rudo.ID, "2024-02-01", "LATE"), wantCode: http.StatusOK, wantData: okData},
		{
			name: "bulk: date required", method: http.MethodPost, path: "/api/attendance/bulk?class_id=" + s.Class1.ID, token: teacherToken, body: []byte(`{"entries": []}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Detail: "this field is required", Fields: map[string]string{"date": "this field is required"}}),
		},
		{
			name: "bulk", method: http.MethodPost, path: "/api/attendance/bulk?class_id=" + s.Class1.ID, token: teacherToken,
			body: []byte(`{"date": "2024-02-02", "entries": [
				{"student_id": "` + rudo.ID + `"},
				{"student_id": "` + tino.ID + `", "status": "ABSENT"},
				{"student_id": "", "status": "ABSENT"},
				{"student_id": "` + tino.ID + `", "status": "SICK"}
			]}`),
			wantCode: http.StatusOK, wantData: []byte(`{"ok": true, "saved": 2}`),
		},
		{
			name: "class: bad from_date", method: http.MethodGet, path: classPath + "&from_date=lol", token: teacherToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{
				Detail: `invalid date "lol", expected YYYY-MM-DD`,
				Fields: map[string]string{"from_date": `invalid date "lol", expected YYYY-MM-DD`},
			}),
		},
		{name: "student: other student", method: http.MethodGet, path: "/api/attendance/student/" + tino.ID, token: rudoToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Detail: "Not allowed"})},
		{name: "student: unlinked parent", method: http.MethodGet, path: "/api/attendance/student/" + rudo.ID, token: parToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Detail: "Not linked to this student"})},
	})

	type entry struct {
		student, date, status string
	}
	check := func(t *testing.T, path, token string, want ...entry) {
		rec := e.do(http.MethodGet, path, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var records []attendance.Record
		unmarshal(t, rec, &records)
		got := make([]entry, 0, len(records))
		for _, r := range records {
			got = append(got, entry{r.StudentID, r.Date.String(), r.Status})
			assert.Equal(t, tch.ID, r.MarkedBy.String)
		}
		assert.Equal(t, want, got)
	}

	t.Run("class register (newest first)", func(t *testing.T) {
		check(t, classPath, teacherToken,
			entry{rudo.ID, "2024-02-02", attendance.StatusPresent},
			entry{tino.ID, "2024-02-02", attendance.StatusAbsent},
			entry{rudo.ID, "2024-02-01", attendance.StatusLate},
		)
	})
	t.Run("class register within dates", func(t *testing.T) {
		check(t, classPath+"&from_date=2024-02-01&to_date=2024-02-01", teacherToken,
			entry{rudo.ID, "2024-02-01", attendance.StatusLate},
		)
	})
	t.Run("own attendance", func(t *testing.T) {
		check(t, "/api/attendance/student/"+rudo.ID, rudoToken,
			entry{rudo.ID, "2024-02-02", attendance.StatusPresent},
			entry{rudo.ID, "2024-02-01", attendance.StatusLate},
		)
	})
	t.Run("linked parent", func(t *testing.T) {
		check(t, "/api/attendance/student/"+tino.ID+"?to_date=2024-02-02", parToken,
			entry{tino.ID, "2024-02-02", attendance.StatusAbsent},
		)
	})
}
