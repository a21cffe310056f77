// Package dig_container wires the API dependencies with go.uber.org/dig.
package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/chikoro/apps/api/echo"
	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/admission"
	"github.com/trezcool/chikoro/core/attendance"
	"github.com/trezcool/chikoro/core/coursework"
	"github.com/trezcool/chikoro/core/exam"
	"github.com/trezcool/chikoro/core/finance"
	"github.com/trezcool/chikoro/core/learning"
	"github.com/trezcool/chikoro/core/message"
	"github.com/trezcool/chikoro/core/profile"
	"github.com/trezcool/chikoro/core/report"
	"github.com/trezcool/chikoro/core/school"
	"github.com/trezcool/chikoro/core/user"
	cachesvc "github.com/trezcool/chikoro/services/cache"
	emailsvc "github.com/trezcool/chikoro/services/email"
	eventsvc "github.com/trezcool/chikoro/services/events"
	filesvc "github.com/trezcool/chikoro/services/files"
	logsvc "github.com/trezcool/chikoro/services/logger"
	"github.com/trezcool/chikoro/services/spreadsheet"
	"github.com/trezcool/chikoro/storage/database"
	sqlxrepos "github.com/trezcool/chikoro/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// DrainFunc flushes and closes the event bus connection.
type DrainFunc func()

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newCache(conf *core.Config, logger core.Logger) core.Cache {
	cache, err := cachesvc.New(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up cache: %v", err), err)
	}
	return cache
}

func newPublisher(conf *core.Config, logger core.Logger) (core.Publisher, DrainFunc) {
	publisher, drain, err := eventsvc.New(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up event bus: %v", err), err)
	}
	return publisher, drain
}

func newFileStore(conf *core.Config, logger core.Logger) *filesvc.LocalStore {
	store, err := filesvc.NewLocalStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up uploads: %v", err), err)
	}
	return store
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// Services depending on one another

func newProfileService(repo profile.Repository, schoolSvc *school.Service) *profile.Service {
	return profile.NewService(repo, schoolSvc)
}

func newAttendanceService(repo attendance.Repository, profileSvc *profile.Service) *attendance.Service {
	return attendance.NewService(repo, profileSvc)
}

func newCourseworkService(repo coursework.Repository, profileSvc *profile.Service) *coursework.Service {
	return coursework.NewService(repo, profileSvc)
}

func newExamService(
	repo exam.Repository,
	profileSvc *profile.Service,
	publisher core.Publisher,
	logger core.Logger,
) *exam.Service {
	return exam.NewService(repo, profileSvc, publisher, logger)
}

func newFinanceService(
	repo finance.Repository,
	profileSvc *profile.Service,
	schoolSvc *school.Service,
	publisher core.Publisher,
	logger core.Logger,
) *finance.Service {
	return finance.NewService(repo, profileSvc, schoolSvc, publisher, logger)
}

func newMessageService(
	repo message.Repository,
	userSvc *user.Service,
	publisher core.Publisher,
	logger core.Logger,
) *message.Service {
	return message.NewService(repo, userSvc, publisher, logger)
}

func newReportService(repo report.Repository, schoolSvc *school.Service, excel spreadsheet.Excel) *report.Service {
	return report.NewService(repo, schoolSvc, excel)
}

func newAdmissionService(
	repo admission.Repository,
	schoolSvc *school.Service,
	mailSvc core.EmailService,
	publisher core.Publisher,
	logger core.Logger,
) *admission.Service {
	return admission.NewService(repo, schoolSvc, mailSvc, publisher, logger)
}

func newLearningService(repo learning.Repository, profileSvc *profile.Service) *learning.Service {
	return learning.NewService(repo, profileSvc)
}

type ServerParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator

	UserSvc       *user.Service
	SchoolSvc     *school.Service
	ProfileSvc    *profile.Service
	AttendanceSvc *attendance.Service
	CourseworkSvc *coursework.Service
	ExamSvc       *exam.Service
	FinanceSvc    *finance.Service
	MessageSvc    *message.Service
	ReportSvc     *report.Service
	AdmissionSvc  *admission.Service
	LearningSvc   *learning.Service
	Files         *filesvc.LocalStore
	Excel         spreadsheet.Excel
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		UserSvc:       p.UserSvc,
		SchoolSvc:     p.SchoolSvc,
		ProfileSvc:    p.ProfileSvc,
		AttendanceSvc: p.AttendanceSvc,
		CourseworkSvc: p.CourseworkSvc,
		ExamSvc:       p.ExamSvc,
		FinanceSvc:    p.FinanceSvc,
		MessageSvc:    p.MessageSvc,
		ReportSvc:     p.ReportSvc,
		AdmissionSvc:  p.AdmissionSvc,
		LearningSvc:   p.LearningSvc,
		Files:         p.Files,
		Sheets:        p.Excel,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	// infrastructure
	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newCache))
	must(c.Provide(newPublisher))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(newFileStore))
	must(c.Provide(spreadsheet.NewExcel))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewSchoolRepository, dig.As(new(school.Repository))))
	must(c.Provide(sqlxrepos.NewProfileRepository, dig.As(new(profile.Repository))))
	must(c.Provide(sqlxrepos.NewAttendanceRepository, dig.As(new(attendance.Repository))))
	must(c.Provide(sqlxrepos.NewCourseworkRepository, dig.As(new(coursework.Repository))))
	must(c.Provide(sqlxrepos.NewExamRepository, dig.As(new(exam.Repository))))
	must(c.Provide(sqlxrepos.NewFinanceRepository, dig.As(new(finance.Repository))))
	must(c.Provide(sqlxrepos.NewMessageRepository, dig.As(new(message.Repository))))
	must(c.Provide(sqlxrepos.NewReportRepository, dig.As(new(report.Repository))))
	must(c.Provide(sqlxrepos.NewAdmissionRepository, dig.As(new(admission.Repository))))
	must(c.Provide(sqlxrepos.NewLearningRepository, dig.As(new(learning.Repository))))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(school.NewService))
	must(c.Provide(newProfileService))
	must(c.Provide(newAttendanceService))
	must(c.Provide(newCourseworkService))
	must(c.Provide(newExamService))
	must(c.Provide(newFinanceService))
	must(c.Provide(newMessageService))
	must(c.Provide(newReportService))
	must(c.Provide(newAdmissionService))
	must(c.Provide(newLearningService))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
