package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/profile"
)

const (
	studentColumns = `s.id, s.user_id, s.first_name, s.last_name, s.date_of_birth, s.gender, s.phone,
		s.enrollment_status, s.created_at`
	placementColumns = "c.id AS class_id, c.name AS class_name, f.name AS form_name, st.name AS stream_name"
	placementJoins   = `
		JOIN classes c ON c.id = sc.class_id
		JOIN forms f ON f.id = c.form_id
		JOIN streams st ON st.id = c.stream_id`
)

type profileRepository struct {
	db *sqlx.DB
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *sqlx.DB) *profileRepository {
	return &profileRepository{db: db}
}

func (repo profileRepository) QueryStudents(ctx context.Context, filter profile.StudentFilter, page core.Page) ([]profile.PlacedStudent, error) {
	var (
		query string
		args  []interface{}
	)
	switch {
	case filter.ClassID != "":
		query = "SELECT " + studentColumns + ", " + placementColumns + `
			FROM students s
			JOIN student_classes sc ON sc.student_id = s.id AND sc.class_id = ?` + placementJoins
		args = append(args, filter.ClassID)
	case filter.FormID != "" && filter.AcademicYearID != "":
		query = "SELECT " + studentColumns + ", " + placementColumns + `
			FROM students s
			JOIN student_classes sc ON sc.student_id = s.id AND sc.academic_year_id = ?` + placementJoins + `
			WHERE c.form_id = ?`
		args = append(args, filter.AcademicYearID, filter.FormID)
	default:
		query = "SELECT " + studentColumns + `, '' AS class_id, '' AS class_name, '' AS form_name, '' AS stream_name
			FROM students s`
	}
	query, args = paginate(query+" ORDER BY s.last_name, s.first_name", page, args)

	students := []profile.PlacedStudent{}
	err := selectAll(ctx, repo.db, &students, query, args...)
	return students, trap(err, profile.ErrNotFound, "querying students")
}

func (repo profileRepository) GetStudent(ctx context.Context, id string) (profile.Student, error) {
	var s profile.Student
	err := get(ctx, repo.db, &s, "SELECT "+studentColumns+" FROM students s WHERE s.id = ?", id)
	return s, trap(err, profile.ErrNotFound, "getting student")
}

func (repo profileRepository) GetStudentByUserID(ctx context.Context, userID string) (profile.Student, error) {
	var s profile.Student
	err := get(ctx, repo.db, &s, "SELECT "+studentColumns+" FROM students s WHERE s.user_id = ?", userID)
	return s, trap(err, profile.ErrNotFound, "getting student by user id")
}

func (repo profileRepository) GetPlacement(ctx context.Context, studentID, academicYearID string) (profile.Placement, error) {
	var p profile.Placement
	err := get(ctx, repo.db, &p, "SELECT "+placementColumns+" FROM student_classes sc"+placementJoins+`
		WHERE sc.student_id = ? AND sc.academic_year_id = ?`, studentID, academicYearID)
	return p, trap(err, profile.ErrNotFound, "getting placement")
}

func (repo profileRepository) CreateStudent(ctx context.Context, s profile.Student) (profile.Student, error) {
	_, err := exec(ctx, repo.db, `
		INSERT INTO students (id, user_id, first_name, last_name, date_of_birth, gender, phone, enrollment_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.FirstName, s.LastName, s.DateOfBirth, s.Gender, s.Phone, s.EnrollmentStatus, s.CreatedAt)
	return s, trap(err, profile.ErrNotFound, "inserting student")
}

func (repo profileRepository) Enroll(ctx context.Context, studentID, classID, academicYearID string) error {
	_, err := exec(ctx, repo.db, `
		INSERT INTO student_classes (student_id, class_id, academic_year_id) VALUES (?, ?, ?)
		ON CONFLICT (student_id, academic_year_id) DO UPDATE SET class_id = excluded.class_id`,
		studentID, classID, academicYearID)
	return trap(err, profile.ErrNotFound, "enrolling student")
}

func (repo profileRepository) QueryTeachers(ctx context.Context, page core.Page) ([]profile.Teacher, error) {
	query, args := paginate("SELECT * FROM teachers ORDER BY last_name, first_name", page, nil)
	teachers := []profile.Teacher{}
	err := selectAll(ctx, repo.db, &teachers, query, args...)
	return teachers, trap(err, profile.ErrNotFound, "querying teachers")
}

func (repo profileRepository) GetTeacher(ctx context.Context, id string) (profile.Teacher, error) {
	var t profile.Teacher
	err := get(ctx, repo.db, &t, "SELECT * FROM teachers WHERE id = ?", id)
	return t, trap(err, profile.ErrNotFound, "getting teacher")
}

func (repo profileRepository) GetTeacherByUserID(ctx context.Context, userID string) (profile.Teacher, error) {
	var t profile.Teacher
	err := get(ctx, repo.db, &t, "SELECT * FROM teachers WHERE user_id = ?", userID)
	return t, trap(err, profile.ErrNotFound, "getting teacher by user id")
}

func (repo profileRepository) QueryTeacherClasses(ctx context.Context, teacherID, academicYearID string) ([]profile.TeacherClass, error) {
	classes := []profile.TeacherClass{}
	err := selectAll(ctx, repo.db, &classes, `
		SELECT c.id AS class_id, c.name AS class_name, sub.id AS subject_id, sub.name AS subject_name
		FROM class_teachers ct
		JOIN classes c ON c.id = ct.class_id
		JOIN subjects sub ON sub.id = ct.subject_id
		WHERE ct.teacher_id = ? AND ct.academic_year_id = ?
		ORDER BY c.name, sub.name`, teacherID, academicYearID)
	return classes, trap(err, profile.ErrNotFound, "querying teacher classes")
}

func (repo profileRepository) CreateTeacher(ctx context.Context, t profile.Teacher) (profile.Teacher, error) {
	_, err := exec(ctx, repo.db, `
		INSERT INTO teachers (id, user_id, first_name, last_name, title, phone, employee_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.FirstName, t.LastName, t.Title, t.Phone, t.EmployeeNumber, t.CreatedAt)
	return t, trap(err, profile.ErrNotFound, "inserting teacher")
}

func (repo profileRepository) AssignTeacher(ctx context.Context, classID, subjectID, teacherID, academicYearID string) error {
	_, err := exec(ctx, repo.db, `
		INSERT INTO class_teachers (class_id, subject_id, teacher_id, academic_year_id) VALUES (?, ?, ?, ?)
		ON CONFLICT (class_id, subject_id, academic_year_id) DO UPDATE SET teacher_id = excluded.teacher_id`,
		classID, subjectID, teacherID, academicYearID)
	return trap(err, profile.ErrNotFound, "assigning teacher")
}

func (repo profileRepository) QueryParents(ctx context.Context, page core.Page) ([]profile.Parent, error) {
	query, args := paginate("SELECT * FROM parents ORDER BY last_name, first_name", page, nil)
	parents := []profile.Parent{}
	err := selectAll(ctx, repo.db, &parents, query, args...)
	return parents, trap(err, profile.ErrNotFound, "querying parents")
}

func (repo profileRepository) GetParentByUserID(ctx context.Context, userID string) (profile.Parent, error) {
	var p profile.Parent
	err := get(ctx, repo.db, &p, "SELECT * FROM parents WHERE user_id = ?", userID)
	return p, trap(err, profile.ErrNotFound, "getting parent by user id")
}

func (repo profileRepository) QueryLinkedStudents(ctx context.Context, parentID string) ([]profile.LinkedStudent, error) {
	students := []profile.LinkedStudent{}
	err := selectAll(ctx, repo.db, &students, `
		SELECT s.id, s.first_name, s.last_name, s.gender, l.relationship
		FROM parent_student_links l
		JOIN students s ON s.id = l.student_id
		WHERE l.parent_id = ?
		ORDER BY s.last_name, s.first_name`, parentID)
	return students, trap(err, profile.ErrNotFound, "querying linked students")
}

func (repo profileRepository) CreateParent(ctx context.Context, p profile.Parent) (profile.Parent, error) {
	_, err := exec(ctx, repo.db,
		"INSERT INTO parents (id, user_id, first_name, last_name, phone, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.UserID, p.FirstName, p.LastName, p.Phone, p.CreatedAt)
	return p, trap(err, profile.ErrNotFound, "inserting parent")
}

func (repo profileRepository) LinkParent(ctx context.Context, parentID, studentID, relationship string) error {
	_, err := exec(ctx, repo.db, `
		INSERT INTO parent_student_links (parent_id, student_id, relationship) VALUES (?, ?, ?)
		ON CONFLICT (parent_id, student_id) DO UPDATE SET relationship = excluded.relationship`,
		parentID, studentID, relationship)
	return trap(err, profile.ErrNotFound, "linking parent")
}

func (repo profileRepository) IsLinked(ctx context.Context, parentID, studentID string) (bool, error) {
	var count int
	err := get(ctx, repo.db, &count,
		"SELECT COUNT(*) FROM parent_student_links WHERE parent_id = ? AND student_id = ?", parentID, studentID)
	return count > 0, trap(err, profile.ErrNotFound, "checking parent link")
}
