package profile

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/school"
	"github.com/trezcool/chikoro/core/user"
)

var (
	// errors
	ErrNotFound        = errors.Wrap(core.ErrNotFound, "profile")
	ErrNotSelf         = core.NewForbiddenError("Not allowed")
	ErrNotLinked       = core.NewForbiddenError("Not linked to this student")
	ErrNoStudentRecord = core.NewForbiddenError("Student profile not found")
	ErrNoTeacherRecord = core.NewForbiddenError("Teacher profile not found")
)

type (
	Repository interface {
		QueryStudents(ctx context.Context, filter StudentFilter, page core.Page) ([]PlacedStudent, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		GetStudentByUserID(ctx context.Context, userID string) (Student, error)
		// GetPlacement returns the class of the student for the academic year.
		GetPlacement(ctx context.Context, studentID, academicYearID string) (Placement, error)
		CreateStudent(ctx context.Context, s Student) (Student, error)
		// Enroll places the student in the class, replacing any placement for the same academic year.
		Enroll(ctx context.Context, studentID, classID, academicYearID string) error

		QueryTeachers(ctx context.Context, page core.Page) ([]Teacher, error)
		GetTeacher(ctx context.Context, id string) (Teacher, error)
		GetTeacherByUserID(ctx context.Context, userID string) (Teacher, error)
		QueryTeacherClasses(ctx context.Context, teacherID, academicYearID string) ([]TeacherClass, error)
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		AssignTeacher(ctx context.Context, classID, subjectID, teacherID, academicYearID string) error

		QueryParents(ctx context.Context, page core.Page) ([]Parent, error)
		GetParentByUserID(ctx context.Context, userID string) (Parent, error)
		QueryLinkedStudents(ctx context.Context, parentID string) ([]LinkedStudent, error)
		CreateParent(ctx context.Context, p Parent) (Parent, error)
		LinkParent(ctx context.Context, parentID, studentID, relationship string) error
		IsLinked(ctx context.Context, parentID, studentID string) (bool, error)
	}

	// SchoolDirectory resolves the school structure a profile refers to.
	SchoolDirectory interface {
		ResolveAcademicYear(ctx context.Context, id string) (string, error)
		GetClass(ctx context.Context, id string) (school.Class, error)
	}

	// Service manages the student, teacher and parent records and the access rules between them.
	Service struct {
		repo   Repository
		school SchoolDirectory
	}
)

func NewService(repo Repository, schoolDir SchoolDirectory) *Service {
	return &Service{repo: repo, school: schoolDir}
}

// CheckStudentAccess reports whether actor may read the records of studentID.
// Students may only read their own records and parents the records of their linked students.
func (svc *Service) CheckStudentAccess(ctx context.Context, actor user.Actor, studentID string) error {
	switch actor.Role {
	case user.RoleStudent:
		if actor.StudentID == "" || actor.StudentID != studentID {
			return ErrNotSelf
		}
	case user.RoleParent:
		if actor.ParentID == "" {
			return ErrNotLinked
		}
		linked, err := svc.repo.IsLinked(ctx, actor.ParentID, studentID)
		if err != nil {
			return errors.Wrap(err, "checking parent link")
		}
		if !linked {
			return ErrNotLinked
		}
	}
	return nil
}

// LinkedStudentIDs returns the IDs of the students linked to parentID.
func (svc *Service) LinkedStudentIDs(ctx context.Context, parentID string) ([]string, error) {
	students, err := svc.repo.QueryLinkedStudents(ctx, parentID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// Students lists students: of a class when filter.ClassID is set, of a form for one academic year when both
// filter.FormID and filter.AcademicYearID are set, or all of them.
func (svc *Service) Students(ctx context.Context, filter StudentFilter, page core.Page) ([]PlacedStudent, error) {
	if filter.ClassID == "" && (filter.FormID == "" || filter.AcademicYearID == "") {
		filter = StudentFilter{}
	}
	return svc.repo.QueryStudents(ctx, filter, page)
}

func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

// StudentOf returns the student record of userID with its class for the current academic year.
func (svc *Service) StudentOf(ctx context.Context, userID string) (PlacedStudent, error) {
	s, err := svc.repo.GetStudentByUserID(ctx, userID)
	if err != nil {
		return PlacedStudent{}, err
	}
	out := PlacedStudent{Student: s}

	ayID, err := svc.school.ResolveAcademicYear(ctx, "")
	if err != nil || ayID == "" {
		return out, err
	}
	out.Placement, err = svc.repo.GetPlacement(ctx, s.ID, ayID)
	if err != nil && !core.IsNotFound(err) {
		return PlacedStudent{}, errors.Wrap(err, "getting placement")
	}
	return out, nil
}

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	return svc.repo.CreateStudent(ctx, Student{
		ID:               core.NewID(),
		UserID:           ns.UserID,
		FirstName:        core.CleanString(ns.FirstName),
		LastName:         core.CleanString(ns.LastName),
		DateOfBirth:      ns.DateOfBirth,
		Gender:           core.CleanString(ns.Gender),
		Phone:            core.CleanString(ns.Phone),
		EnrollmentStatus: StatusActive,
		CreatedAt:        core.Now(),
	})
}

// Enroll places the student in the class for the class's academic year.
func (svc *Service) Enroll(ctx context.Context, studentID, classID string) error {
	class, err := svc.school.GetClass(ctx, classID)
	if err != nil {
		return errors.Wrap(err, "getting class")
	}
	return svc.repo.Enroll(ctx, studentID, class.ID, class.AcademicYearID)
}

func (svc *Service) Teachers(ctx context.Context, page core.Page) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx, page)
}

func (svc *Service) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, id)
}

// TeacherOf returns the teacher record of userID with the classes taught in the current academic year.
func (svc *Service) TeacherOf(ctx context.Context, userID string) (TeacherDetail, error) {
	t, err := svc.repo.GetTeacherByUserID(ctx, userID)
	if err != nil {
		return TeacherDetail{}, err
	}
	out := TeacherDetail{Teacher: t, Classes: []TeacherClass{}}

	ayID, err := svc.school.ResolveAcademicYear(ctx, "")
	if err != nil || ayID == "" {
		return out, err
	}
	out.Classes, err = svc.repo.QueryTeacherClasses(ctx, t.ID, ayID)
	return out, errors.Wrap(err, "querying teacher classes")
}

func (svc *Service) CreateTeacher(ctx context.Context, t Teacher) (Teacher, error) {
	t.ID = core.NewID()
	t.CreatedAt = core.Now()
	return svc.repo.CreateTeacher(ctx, t)
}

// AssignTeacher makes teacherID the teacher of subjectID in classID.
func (svc *Service) AssignTeacher(ctx context.Context, classID, subjectID, teacherID string) error {
	class, err := svc.school.GetClass(ctx, classID)
	if err != nil {
		return errors.Wrap(err, "getting class")
	}
	return svc.repo.AssignTeacher(ctx, class.ID, subjectID, teacherID, class.AcademicYearID)
}

func (svc *Service) Parents(ctx context.Context, page core.Page) ([]Parent, error) {
	return svc.repo.QueryParents(ctx, page)
}

// ParentOf returns the parent record of userID with the linked students.
func (svc *Service) ParentOf(ctx context.Context, userID string) (ParentDetail, error) {
	p, err := svc.repo.GetParentByUserID(ctx, userID)
	if err != nil {
		return ParentDetail{}, err
	}
	students, err := svc.repo.QueryLinkedStudents(ctx, p.ID)
	if err != nil {
		return ParentDetail{}, errors.Wrap(err, "querying linked students")
	}
	return ParentDetail{Parent: p, Students: students}, nil
}

func (svc *Service) CreateParent(ctx context.Context, p Parent) (Parent, error) {
	p.ID = core.NewID()
	p.CreatedAt = core.Now()
	return svc.repo.CreateParent(ctx, p)
}

func (svc *Service) LinkParent(ctx context.Context, parentID, studentID, relationship string) error {
	return svc.repo.LinkParent(ctx, parentID, studentID, core.CleanString(relationship))
}

// ImportResult sums up a bulk student import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportStudents creates a student per row and enrolls it in classID.
// rows are sheet rows, header included: first name, last name, gender, date of birth (YYYY-MM-DD), phone.
// Rows without both names are skipped, so are rows with an unreadable date of birth.
func (svc *Service) ImportStudents(ctx context.Context, classID string, rows [][]string) (ImportResult, error) {
	var res ImportResult

	class, err := svc.school.GetClass(ctx, classID)
	if err != nil {
		return res, errors.Wrap(err, "getting class")
	}

	for i, row := range rows {
		if i == 0 { // header
			continue
		}
		cell := func(idx int) string {
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		ns := NewStudent{FirstName: cell(0), LastName: cell(1), Gender: cell(2), Phone: cell(4)}
		if ns.FirstName == "" || ns.LastName == "" {
			res.Skipped++
			continue
		}
		if dob := cell(3); dob != "" {
			if ns.DateOfBirth, err = core.ParseDate(dob); err != nil {
				res.Skipped++
				continue
			}
		}

		s, err := svc.CreateStudent(ctx, ns)
		if err != nil {
			return res, errors.Wrapf(err, "importing row %d", i+1)
		}
		if err = svc.repo.Enroll(ctx, s.ID, class.ID, class.AcademicYearID); err != nil {
			return res, errors.Wrapf(err, "enrolling row %d", i+1)
		}
		res.Imported++
	}
	return res, nil
}

// UserStudent is a convenience for NewStudent owned by a user account.
func UserStudent(userID, firstName, lastName, gender string) NewStudent {
	return NewStudent{UserID: null.StringFrom(userID), FirstName: firstName, LastName: lastName, Gender: gender}
}
