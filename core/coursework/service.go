package coursework

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/user"
)

var (
	// errors
	ErrNotFound           = errors.Wrap(core.ErrNotFound, "coursework")
	ErrSubmissionNotFound = errors.Wrap(core.ErrNotFound, "submission")
)

type (
	Repository interface {
		// QueryAssignments lists the assignments of a class (newest first), or all of them.
		QueryAssignments(ctx context.Context, classID string) ([]Assignment, error)
		// QueryStudentAssignments lists the assignments of the student's classes, latest due date first.
		QueryStudentAssignments(ctx context.Context, studentID string) ([]StudentAssignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)

		QuerySubmissions(ctx context.Context, assignmentID string) ([]Submission, error)
		GetSubmission(ctx context.Context, id string) (Submission, error)
		// UpsertSubmission stores the student's work, replacing a previous submission to the same assignment.
		UpsertSubmission(ctx context.Context, sub Submission) (Submission, error)
		GradeSubmission(ctx context.Context, sub Submission) (Submission, error)
	}

	StudentAccess interface {
		CheckStudentAccess(ctx context.Context, actor user.Actor, studentID string) error
	}

	Service struct {
		repo   Repository
		access StudentAccess
	}
)

func NewService(repo Repository, access StudentAccess) *Service {
	return &Service{repo: repo, access: access}
}

// Assignments lists the assignments of classID (newest first), or all of them.
func (svc *Service) Assignments(ctx context.Context, classID string) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, classID)
}

// StudentAssignments lists the assignments of the student's classes together with the student's submissions.
func (svc *Service) StudentAssignments(ctx context.Context, actor user.Actor, studentID string) ([]StudentAssignment, error) {
	if err := svc.access.CheckStudentAccess(ctx, actor, studentID); err != nil {
		return nil, err
	}
	return svc.repo.QueryStudentAssignments(ctx, studentID)
}

func (svc *Service) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

// CreateAssignment stores a new assignment authored by the actor's teacher record, if any.
// Teachers without a teacher record may not create assignments.
func (svc *Service) CreateAssignment(ctx context.Context, actor user.Actor, na NewAssignment) (Assignment, error) {
	if actor.HasRole(user.RoleTeacher) && actor.TeacherID == "" {
		return Assignment{}, core.NewForbiddenError("Teacher profile not found")
	}
	a, err := svc.repo.CreateAssignment(ctx, Assignment{
		ID:          core.NewID(),
		ClassID:     na.ClassID,
		SubjectID:   na.SubjectID,
		TermID:      na.TermID,
		CreatedBy:   null.NewString(actor.TeacherID, actor.TeacherID != ""),
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate,
		TotalMarks:  *na.TotalMarks,
		CreatedAt:   core.Now(),
	})
	if err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}
	return svc.repo.GetAssignment(ctx, a.ID)
}

func (svc *Service) Submissions(ctx context.Context, assignmentID string) ([]Submission, error) {
	if _, err := svc.repo.GetAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	return svc.repo.QuerySubmissions(ctx, assignmentID)
}

// Submit hands in the actor's work. Submitting again replaces the file and resets the submission time.
func (svc *Service) Submit(ctx context.Context, actor user.Actor, assignmentID string, work SubmitWork) (Submission, error) {
	if actor.StudentID == "" {
		return Submission{}, core.NewForbiddenError("Student profile not found")
	}
	if _, err := svc.repo.GetAssignment(ctx, assignmentID); err != nil {
		return Submission{}, err
	}
	return svc.repo.UpsertSubmission(ctx, Submission{
		ID:           core.NewID(),
		AssignmentID: assignmentID,
		StudentID:    actor.StudentID,
		FilePath:     core.CleanString(work.FilePath),
		FileName:     core.CleanString(work.FileName),
		SubmittedAt:  core.Now(),
	})
}

// GradeSubmission sets the marks and feedback of a submission of assignmentID.
// Marks must lie within 0 and the assignment's total marks.
func (svc *Service) GradeSubmission(ctx context.Context, assignmentID, submissionID string, g Grade) (Submission, error) {
	a, err := svc.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return Submission{}, err
	}
	sub, err := svc.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if sub.AssignmentID != a.ID {
		return Submission{}, ErrSubmissionNotFound
	}
	if g.Marks.Valid && (g.Marks.Float64 < 0 || g.Marks.Float64 > a.TotalMarks) {
		return Submission{}, core.NewFieldError("marks", fmt.Sprintf("marks must be between 0 and %g", a.TotalMarks))
	}

	sub.Marks = g.Marks
	sub.Feedback = g.Feedback
	sub.GradedAt = null.TimeFrom(core.Now())
	return svc.repo.GradeSubmission(ctx, sub)
}
