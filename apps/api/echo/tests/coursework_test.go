package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chikoro/core/coursework"
	"github.com/trezcool/chikoro/core/user"
	testutil "github.com/trezcool/chikoro/tests"
)

func Test_courseworkApi(t *testing.T) {
	e := setup(t)
	s := e.school

	tchUsr := testutil.CreateUser(t, e.db, "teacher@test.zw", user.RoleTeacher, true)
	tch := testutil.CreateTeacher(t, e.db, tchUsr.ID, "Tendai", "Moyo")
	teacherToken := e.getToken(t, tchUsr)
	_, loneTeacherToken := e.newUser(t, "lone@test.zw", user.RoleTeacher)
	_, parentToken := e.newUser(t, "parent@test.zw", user.RoleParent)

	rudoUsr := testutil.CreateUser(t, e.db, "rudo@test.zw", user.RoleStudent, true)
	rudo := testutil.CreateStudent(t, e.db, rudoUsr.ID, "Rudo", "Chikore", "F", s.Class1)
	rudoToken := e.getToken(t, rudoUsr)
	_, orphanToken := e.newUser(t, "orphan@test.zw", user.RoleStudent)

	newAssignment := func(classID, title, due string) []byte {
		return []byte(`{"class_id": "` + classID + `", "subject_id": "` + s.Subject.ID + `", "title": "` + title + `", "due_date": "` + due + `"}`)
	}

	runTests(t, e, []httpTest{
		{name: "Auth required", method: http.MethodGet, path: "/api/assignments", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "list: parent not allowed", method: http.MethodGet, path: "/api/assignments", token: parentToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "list: student without a profile", method: http.MethodGet, path: "/api/assignments", token: orphanToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "Student profile not found"})},
		{name: "create: student not allowed", method: http.MethodPost, path: "/api/assignments", token: rudoToken, body: newAssignment(s.Class1.ID, "Essay", ""), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "create: required fields", method: http.MethodPost, path: "/api/assignments", token: teacherToken, body: []byte(`{"title": "  "}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{
				Detail: "this field is required",
				Fields: map[string]string{"class_id": "this field is required", "subject_id": "this field is required", "title": "this field is required"},
			}),
		},
		{
			name: "create: teacher without a profile", method: http.MethodPost, path: "/api/assignments", token: loneTeacherToken, body: newAssignment(s.Class1.ID, "Essay", ""),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Detail: "Teacher profile not found"}),
		},
		{name: "retrieve: unknown", method: http.MethodGet, path: "/api/assignments/nope", token: teacherToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "not found"})},
		{name: "submit: unknown", method: http.MethodPost, path: "/api/assignments/nope/submit", token: rudoToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "not found"})},
	})

	create := func(t *testing.T, body []byte) coursework.Assignment {
		rec := e.do(http.MethodPost, "/api/assignments", teacherToken, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var a coursework.Assignment
		unmarshal(t, rec, &a)
		return a
	}

	essay := create(t, newAssignment(s.Class1.ID, " Essay ", "2024-03-01"))
	assert.Equal(t, "Essay", essay.Title)
	assert.Equal(t, float64(coursework.DefaultTotalMarks), essay.TotalMarks)
	assert.Equal(t, tch.ID, essay.CreatedBy.String)
	assert.Equal(t, s.Subject.Name, essay.SubjectName)
	assert.Equal(t, s.Class1.Name, essay.ClassName)

	quiz := create(t, []byte(`{"class_id": "`+s.Class1.ID+`", "subject_id": "`+s.Subject.ID+`", "title": "Quiz", "due_date": "2024-03-08", "total_marks": 20}`))
	assert.Equal(t, float64(20), quiz.TotalMarks)
	other := create(t, newAssignment(s.Class4.ID, "Project", "2024-03-15"))

	t.Run("all assignments (newest first)", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/assignments", teacherToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, []string{other.ID, quiz.ID, essay.ID}, ids(t, rec))
	})
	t.Run("assignments of a class", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/assignments?class_id="+s.Class4.ID, teacherToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, []string{other.ID}, ids(t, rec))
	})

	var sub coursework.Submission
	t.Run("submit", func(t *testing.T) {
		body := []byte(`{"file_path": "submissions/essay.pdf", "file_name": "essay.pdf"}`)
		runTests(t, e, []httpTest{
			{name: "staff cannot submit", method: http.MethodPost, path: "/api/assignments/" + essay.ID + "/submit", token: teacherToken, body: body, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
			{name: "submitted", method: http.MethodPost, path: "/api/assignments/" + essay.ID + "/submit", token: rudoToken, body: body, wantCode: http.StatusOK, wantData: []byte(`{"ok": true}`)},
			{
				name: "resubmitted", method: http.MethodPost, path: "/api/assignments/" + essay.ID + "/submit", token: rudoToken,
				body: []byte(`{"file_path": "submissions/essay-v2.pdf", "file_name": "essay-v2.pdf"}`), wantCode: http.StatusOK, wantData: []byte(`{"ok": true}`),
			},
		})

		rec := e.do(http.MethodGet, "/api/assignments/"+essay.ID+"/submissions", teacherToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var subs []coursework.Submission
		unmarshal(t, rec, &subs)
		require.Len(t, subs, 1)
		sub = subs[0]
		assert.Equal(t, rudo.ID, sub.StudentID)
		assert.Equal(t, "essay-v2.pdf", sub.FileName)
		assert.Equal(t, "Rudo", sub.FirstName)
		assert.False(t, sub.Marks.Valid)
	})

	t.Run("grade", func(t *testing.T) {
		grade := func(marks string) []byte { return []byte(`{"marks": ` + marks + `, "feedback": "Well argued"}`) }
		path := "/api/assignments/" + essay.ID + "/submissions/" + sub.ID + "/grade"
		runTests(t, e, []httpTest{
			{name: "student not allowed", method: http.MethodPost, path: path, token: rudoToken, body: grade("80"), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
			{
				name: "marks out of range", method: http.MethodPost, path: path, token: teacherToken, body: grade("120"),
				wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Detail: "marks must be between 0 and 100", Fields: map[string]string{"marks": "marks must be between 0 and 100"}}),
			},
			{
				name: "submission of another assignment", method: http.MethodPost, path: "/api/assignments/" + quiz.ID + "/submissions/" + sub.ID + "/grade", token: teacherToken, body: grade("10"),
				wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Detail: "not found"}),
			},
			{name: "graded", method: http.MethodPost, path: path, token: teacherToken, body: grade("80"), wantCode: http.StatusOK, wantData: []byte(`{"ok": true}`)},
		})
	})

	t.Run("student view", func(t *testing.T) {
		for _, token := range []string{rudoToken, teacherToken} {
			rec := e.do(http.MethodGet, "/api/assignments?student_id="+rudo.ID, token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var list []coursework.StudentAssignment
			unmarshal(t, rec, &list)
			require.Len(t, list, 2)

			// latest due date first, the other class' project is not listed
			assert.Equal(t, quiz.ID, list[0].ID)
			assert.False(t, list[0].SubmittedAt.Valid)
			assert.Equal(t, essay.ID, list[1].ID)
			assert.True(t, list[1].SubmittedAt.Valid)
			assert.Equal(t, 80.0, list[1].Marks.Float64)
			assert.Equal(t, "Well argued", list[1].Feedback.String)
			assert.Equal(t, "essay-v2.pdf", list[1].FileName.String)
		}
	})
	t.Run("another student's assignments", func(t *testing.T) {
		tino := testutil.CreateStudent(t, e.db, "", "Tino", "Dube", "M", s.Class1)
		rec := e.do(http.MethodGet, "/api/assignments?student_id="+tino.ID, rudoToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
