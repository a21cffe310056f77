package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/attendance"
	"github.com/trezcool/chikoro/core/coursework"
	"github.com/trezcool/chikoro/core/exam"
	"github.com/trezcool/chikoro/core/learning"
)

// OKResponse is the body of write endpoints with nothing else to return.
type OKResponse struct {
	OK    bool `json:"ok"`
	Saved *int `json:"saved,omitempty"`
}

func dateParam(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

type AttendanceAPI struct{ c *Client }

func (api AttendanceAPI) Class(ctx context.Context, classID string, from, to core.Date) ([]attendance.Record, error) {
	var records []attendance.Record
	q := params("class_id", classID, "from_date", dateParam(from), "to_date", dateParam(to))
	err := api.c.get(ctx, "/attendance", q, &records)
	return records, err
}

func (api AttendanceAPI) Student(ctx context.Context, studentID string, from, to core.Date) ([]attendance.Record, error) {
	var records []attendance.Record
	q := params("from_date", dateParam(from), "to_date", dateParam(to))
	err := api.c.get(ctx, pathID("/attendance/student", studentID), q, &records)
	return records, err
}

func (api AttendanceAPI) Mark(ctx context.Context, classID string, m attendance.Mark) error {
	return api.c.doJSON(ctx, http.MethodPost, "/attendance", params("class_id", classID), m, nil)
}

// BulkMark returns the number of saved entries.
func (api AttendanceAPI) BulkMark(ctx context.Context, classID string, bm attendance.BulkMark) (int, error) {
	var res OKResponse
	if err := api.c.doJSON(ctx, http.MethodPost, "/attendance/bulk", params("class_id", classID), bm, &res); err != nil {
		return 0, err
	}
	if res.Saved == nil {
		return 0, nil
	}
	return *res.Saved, nil
}

type AssignmentsAPI struct{ c *Client }

func (api AssignmentsAPI) List(ctx context.Context, classID string) ([]coursework.Assignment, error) {
	var assignments []coursework.Assignment
	err := api.c.get(ctx, "/assignments", params("class_id", classID), &assignments)
	return assignments, err
}

// OfStudent lists the assignments of a student with its submissions. An empty studentID is the signed-in student.
func (api AssignmentsAPI) OfStudent(ctx context.Context, studentID string) ([]coursework.StudentAssignment, error) {
	var assignments []coursework.StudentAssignment
	err := api.c.get(ctx, "/assignments", params("student_id", studentID), &assignments)
	return assignments, err
}

func (api AssignmentsAPI) Get(ctx context.Context, id string) (coursework.Assignment, error) {
	var a coursework.Assignment
	err := api.c.get(ctx, pathID("/assignments", id), nil, &a)
	return a, err
}

func (api AssignmentsAPI) Create(ctx context.Context, na coursework.NewAssignment) (coursework.Assignment, error) {
	var a coursework.Assignment
	err := api.c.post(ctx, "/assignments", na, &a)
	return a, err
}

func (api AssignmentsAPI) Submissions(ctx context.Context, id string) ([]coursework.Submission, error) {
	var subs []coursework.Submission
	err := api.c.get(ctx, pathID("/assignments", id, "/submissions"), nil, &subs)
	return subs, err
}

func (api AssignmentsAPI) Submit(ctx context.Context, id string, work coursework.SubmitWork) error {
	return api.c.post(ctx, pathID("/assignments", id, "/submit"), work, nil)
}

func (api AssignmentsAPI) Grade(ctx context.Context, id, submissionID string, g coursework.Grade) error {
	return api.c.post(ctx, pathID("/assignments", id, "/submissions/"+url.PathEscape(submissionID)+"/grade"), g, nil)
}

type ExamsAPI struct{ c *Client }

func (api ExamsAPI) List(ctx context.Context, filter exam.ExamFilter) ([]exam.Exam, error) {
	var exams []exam.Exam
	err := api.c.get(ctx, "/exams", params("term_id", filter.TermID, "class_id", filter.ClassID), &exams)
	return exams, err
}

func (api ExamsAPI) Get(ctx context.Context, id string) (exam.Exam, error) {
	var e exam.Exam
	err := api.c.get(ctx, pathID("/exams", id), nil, &e)
	return e, err
}

func (api ExamsAPI) Create(ctx context.Context, ne exam.NewExam) (exam.Exam, error) {
	var e exam.Exam
	err := api.c.post(ctx, "/exams", ne, &e)
	return e, err
}

func (api ExamsAPI) Results(ctx context.Context, id string) ([]exam.Result, error) {
	var results []exam.Result
	err := api.c.get(ctx, pathID("/exams", id, "/results"), nil, &results)
	return results, err
}

func (api ExamsAPI) EnterResult(ctx context.Context, id string, nr exam.NewResult) error {
	return api.c.post(ctx, pathID("/exams", id, "/results"), nr, nil)
}

func (api ExamsAPI) ApproveResults(ctx context.Context, id string) error {
	return api.c.post(ctx, pathID("/exams", id, "/results/approve"), nil, nil)
}

type ResultsAPI struct{ c *Client }

func (api ResultsAPI) OfStudent(ctx context.Context, studentID, termID, academicYearID string) ([]exam.StudentResult, error) {
	var results []exam.StudentResult
	q := params("term_id", termID, "academic_year_id", academicYearID)
	err := api.c.get(ctx, pathID("/results/student", studentID), q, &results)
	return results, err
}

func (api ResultsAPI) OfClass(ctx context.Context, classID, termID string) ([]exam.ClassResult, error) {
	var results []exam.ClassResult
	err := api.c.get(ctx, pathID("/results/class", classID), params("term_id", termID), &results)
	return results, err
}

type LearningAPI struct{ c *Client }

func (api LearningAPI) Materials(ctx context.Context, filter learning.MaterialFilter) ([]learning.Material, error) {
	var materials []learning.Material
	err := api.c.get(ctx, "/learning/materials", params("class_id", filter.ClassID, "student_id", filter.StudentID), &materials)
	return materials, err
}

func (api LearningAPI) CreateMaterial(ctx context.Context, nm learning.NewMaterial) (learning.Material, error) {
	var m learning.Material
	err := api.c.post(ctx, "/learning/materials", nm, &m)
	return m, err
}

func (api LearningAPI) Library(ctx context.Context, category string) ([]learning.LibraryItem, error) {
	var items []learning.LibraryItem
	err := api.c.get(ctx, "/learning/library", params("category", category), &items)
	return items, err
}
