// Package testutil prepares databases, configs and records for tests.
package testutil

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/profile"
	"github.com/trezcool/chikoro/core/school"
	"github.com/trezcool/chikoro/core/user"
	appfs "github.com/trezcool/chikoro/fs"
	logsvc "github.com/trezcool/chikoro/services/logger"
	"github.com/trezcool/chikoro/storage/database"
	sqlxrepos "github.com/trezcool/chikoro/storage/database/sqlx"
)

// Password is the password of every user created by CreateUser.
const Password = "Sup3r$ecret!"

// NewConfig returns a TEST config writing to temporary directories.
func NewConfig(t *testing.T) *core.Config {
	conf := core.NewConfig()
	conf.Env = "TEST"
	conf.Debug = false
	conf.TestMode = true
	conf.SecretKey = "test-secret-key"
	conf.RollbarToken = ""
	conf.SendgridApiKey = ""
	conf.Database.Engine = "sqlite"
	conf.Database.Path = filepath.Join(t.TempDir(), "test.db")
	conf.Uploads.Dir = t.TempDir()
	conf.Uploads.MaxMB = 1
	conf.Redis.Address = ""
	conf.Nats.URL = ""
	conf.Server.CORSOrigins = []string{"http://localhost:5173"}
	return conf
}

// NewLogger returns a logger that discards everything.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

// PrepareDB opens a fresh migrated SQLite database, closed when the test ends.
func PrepareDB(t *testing.T, conf ...*core.Config) *sqlx.DB {
	path := filepath.Join(t.TempDir(), "test.db")
	if len(conf) > 0 && conf[0].Database.Path != "" {
		path = conf[0].Database.Path
	}

	db, err := database.OpenSQLite(path)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	goose.SetLogger(log.New(io.Discard, "", 0))
	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// LoadTemplates parses the email templates and the common passwords list.
func LoadTemplates(conf *core.Config) {
	core.ParseEmailTemplates(appfs.FS, conf, NewLogger(conf))
	user.LoadCommonPasswords(appfs.FS, NewLogger(conf))
}

func CreateUser(
	t *testing.T,
	db *sqlx.DB,
	email, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := core.Now()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC().Truncate(time.Microsecond)
	}
	usr := user.User{
		ID:        core.NewID(),
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if err := usr.SetPassword(Password); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := sqlxrepos.NewUserRepository(db).CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// School is a minimal school structure: one current academic year with a term, Form 1 and Form 4 with
// a "Blue" stream each and a class per form, and one subject.
type School struct {
	Year    school.AcademicYear
	Term    school.Term
	Form1   school.Form
	Form4   school.Form
	Stream1 school.Stream
	Stream4 school.Stream
	Class1  school.Class
	Class4  school.Class
	Subject school.Subject
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seeding failed: %v", err)
	}
}

func SeedSchool(t *testing.T, db *sqlx.DB) School {
	ctx := context.Background()
	repo := sqlxrepos.NewSchoolRepository(db)
	now := core.Now()
	var (
		s   School
		err error
	)

	start, _ := core.ParseDate("2024-01-08")
	end, _ := core.ParseDate("2024-12-06")
	s.Year, err = repo.CreateAcademicYear(ctx, school.AcademicYear{
		ID: core.NewID(), Name: "2024", StartDate: start, EndDate: end, IsCurrent: true, CreatedAt: now,
	})
	must(t, err)

	termEnd, _ := core.ParseDate("2024-04-05")
	s.Term, err = repo.CreateTerm(ctx, school.Term{
		ID: core.NewID(), AcademicYearID: s.Year.ID, Name: "Term 1", TermNumber: 1, StartDate: start, EndDate: termEnd,
	})
	must(t, err)

	s.Form1, err = repo.CreateForm(ctx, school.Form{ID: core.NewID(), Name: "Form 1", Level: 1, DisplayOrder: 1})
	must(t, err)
	s.Form4, err = repo.CreateForm(ctx, school.Form{ID: core.NewID(), Name: "Form 4", Level: 4, DisplayOrder: 4})
	must(t, err)

	s.Stream1, err = repo.CreateStream(ctx, school.Stream{ID: core.NewID(), FormID: s.Form1.ID, Name: "Blue"})
	must(t, err)
	s.Stream4, err = repo.CreateStream(ctx, school.Stream{ID: core.NewID(), FormID: s.Form4.ID, Name: "Blue"})
	must(t, err)

	for _, c := range []struct {
		dest   *school.Class
		name   string
		form   school.Form
		stream school.Stream
	}{
		{&s.Class1, "Form 1 Blue", s.Form1, s.Stream1},
		{&s.Class4, "Form 4 Blue", s.Form4, s.Stream4},
	} {
		id := core.NewID()
		_, err = repo.CreateClass(ctx, school.Class{
			ID: id, Name: c.name, FormID: c.form.ID, StreamID: c.stream.ID, AcademicYearID: s.Year.ID, CreatedAt: now,
		})
		must(t, err)
		*c.dest, err = repo.GetClass(ctx, id)
		must(t, err)
	}

	s.Subject, err = repo.CreateSubject(ctx, school.Subject{ID: core.NewID(), Name: "Mathematics", Code: "MATH", CreatedAt: now})
	must(t, err)
	return s
}

// CreateStudent stores a student owned by userID (when set) and enrolls it in class.
func CreateStudent(t *testing.T, db *sqlx.DB, userID, firstName, lastName, gender string, class school.Class) profile.Student {
	ctx := context.Background()
	repo := sqlxrepos.NewProfileRepository(db)
	s, err := repo.CreateStudent(ctx, profile.Student{
		ID:               core.NewID(),
		UserID:           null.NewString(userID, userID != ""),
		FirstName:        firstName,
		LastName:         lastName,
		Gender:           gender,
		EnrollmentStatus: profile.StatusActive,
		CreatedAt:        core.Now(),
	})
	must(t, err)
	if class.ID != "" {
		must(t, repo.Enroll(ctx, s.ID, class.ID, class.AcademicYearID))
	}
	return s
}

func CreateTeacher(t *testing.T, db *sqlx.DB, userID, firstName, lastName string) profile.Teacher {
	tch, err := sqlxrepos.NewProfileRepository(db).CreateTeacher(context.Background(), profile.Teacher{
		ID:        core.NewID(),
		UserID:    null.NewString(userID, userID != ""),
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: core.Now(),
	})
	must(t, err)
	return tch
}

// CreateParent stores a parent owned by userID and links it to the given students.
func CreateParent(t *testing.T, db *sqlx.DB, userID, firstName, lastName string, students ...profile.Student) profile.Parent {
	ctx := context.Background()
	repo := sqlxrepos.NewProfileRepository(db)
	p, err := repo.CreateParent(ctx, profile.Parent{
		ID:        core.NewID(),
		UserID:    null.NewString(userID, userID != ""),
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: core.Now(),
	})
	must(t, err)
	for _, s := range students {
		must(t, repo.LinkParent(ctx, p.ID, s.ID, "Guardian"))
	}
	return p
}
