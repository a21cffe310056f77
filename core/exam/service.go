package exam

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/user"
)

var ErrNotFound = errors.Wrap(core.ErrNotFound, "exam")

type (
	Repository interface {
		QueryExams(ctx context.Context, filter ExamFilter) ([]Exam, error)
		GetExam(ctx context.Context, id string) (Exam, error)
		CreateExam(ctx context.Context, e Exam) (Exam, error)

		QueryResults(ctx context.Context, examID string) ([]Result, error)
		// UpsertResult stores the marks of a student, replacing the previous marks for the same exam.
		UpsertResult(ctx context.Context, r Result) error
		// ApproveResults stamps the approver on every result of the exam and returns how many were approved.
		ApproveResults(ctx context.Context, examID, approverID string, at null.Time) (int64, error)

		QueryStudentResults(ctx context.Context, filter StudentResultFilter) ([]StudentResult, error)
		QueryClassResults(ctx context.Context, classID, termID string) ([]ClassResult, error)
	}

	StudentAccess interface {
		CheckStudentAccess(ctx context.Context, actor user.Actor, studentID string) error
	}

	Service struct {
		repo      Repository
		access    StudentAccess
		publisher core.Publisher
		logger    core.Logger
	}

	// ResultsApproved is published once the results of an exam are approved.
	ResultsApproved struct {
		ExamID     string `json:"exam_id"`
		ClassID    string `json:"class_id"`
		SubjectID  string `json:"subject_id"`
		Approved   int64  `json:"approved"`
		ApprovedBy string `json:"approved_by"`
	}
)

func NewService(repo Repository, access StudentAccess, publisher core.Publisher, logger core.Logger) *Service {
	return &Service{repo: repo, access: access, publisher: publisher, logger: logger}
}

func (svc *Service) Exams(ctx context.Context, filter ExamFilter) ([]Exam, error) {
	return svc.repo.QueryExams(ctx, filter)
}

func (svc *Service) GetExam(ctx context.Context, id string) (Exam, error) {
	return svc.repo.GetExam(ctx, id)
}

func (svc *Service) CreateExam(ctx context.Context, ne NewExam) (Exam, error) {
	e, err := svc.repo.CreateExam(ctx, Exam{
		ID:         core.NewID(),
		TermID:     ne.TermID,
		ClassID:    ne.ClassID,
		SubjectID:  ne.SubjectID,
		Name:       ne.Name,
		ExamType:   ne.ExamType,
		TotalMarks: *ne.TotalMarks,
		ExamDate:   ne.ExamDate,
		CreatedAt:  core.Now(),
	})
	if err != nil {
		return Exam{}, errors.Wrap(err, "creating exam")
	}
	return svc.repo.GetExam(ctx, e.ID)
}

func (svc *Service) Results(ctx context.Context, examID string) ([]Result, error) {
	if _, err := svc.repo.GetExam(ctx, examID); err != nil {
		return nil, err
	}
	return svc.repo.QueryResults(ctx, examID)
}

// EnterResult records the marks of a student. Marks must lie within 0 and the exam's total marks.
func (svc *Service) EnterResult(ctx context.Context, actor user.Actor, examID string, nr NewResult) error {
	e, err := svc.repo.GetExam(ctx, examID)
	if err != nil {
		return err
	}
	marks := *nr.Marks
	if marks < 0 || marks > e.TotalMarks {
		return core.NewFieldError("marks", fmt.Sprintf("marks must be between 0 and %g", e.TotalMarks))
	}

	now := core.Now()
	return svc.repo.UpsertResult(ctx, Result{
		ID:        core.NewID(),
		ExamID:    e.ID,
		StudentID: nr.StudentID,
		Marks:     marks,
		EnteredBy: null.NewString(actor.TeacherID, actor.TeacherID != ""),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// ApproveResults approves every result of the exam, which makes them visible to students and parents.
func (svc *Service) ApproveResults(ctx context.Context, actor user.Actor, examID string) (int64, error) {
	e, err := svc.repo.GetExam(ctx, examID)
	if err != nil {
		return 0, err
	}
	n, err := svc.repo.ApproveResults(ctx, e.ID, actor.UserID, null.TimeFrom(core.Now()))
	if err != nil {
		return 0, errors.Wrap(err, "approving results")
	}

	evt := ResultsApproved{ExamID: e.ID, ClassID: e.ClassID, SubjectID: e.SubjectID, Approved: n, ApprovedBy: actor.UserID}
	if err = svc.publisher.Publish(ctx, core.EventResultsApproved, evt); err != nil {
		svc.logger.Error("exam: publishing results approval", err, actor.Person())
	}
	return n, nil
}

// StudentResults returns the report of a student. Students and parents only see approved results.
func (svc *Service) StudentResults(ctx context.Context, actor user.Actor, filter StudentResultFilter) ([]StudentResult, error) {
	if err := svc.access.CheckStudentAccess(ctx, actor, filter.StudentID); err != nil {
		return nil, err
	}
	filter.ApprovedOnly = actor.HasRole(user.RoleStudent, user.RoleParent)
	return svc.repo.QueryStudentResults(ctx, filter)
}

func (svc *Service) ClassResults(ctx context.Context, classID, termID string) ([]ClassResult, error) {
	return svc.repo.QueryClassResults(ctx, classID, termID)
}
