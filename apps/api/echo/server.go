package echoapi

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

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
	filesvc "github.com/trezcool/chikoro/services/files"
)

type (
	// SheetReader reads the rows of the first sheet of an uploaded workbook.
	SheetReader interface {
		ReadRows(r io.Reader) ([][]string, error)
	}

	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool

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
		Sheets        SheetReader
	}

	Server struct {
		opts     *Options
		app      *echo.Echo
		tokens   *TokenIssuer
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(opts *Options) *Server {
	s := &Server{
		opts:     opts,
		app:      echo.New(),
		tokens:   NewTokenIssuer(opts.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: conf.Server.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	metrics := newMetrics()
	s.app.Use(metrics.middleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/metrics", metrics.handler())

	g := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(s.tokens.jwtConfig())

	registerAuthAPI(g, jwt, s.tokens, s.opts.UserSvc, s.opts.Validate)
	registerUserAPI(g, jwt, s.opts.UserSvc, s.opts.Validate)
	registerPublicAPI(g, jwt, s.opts.SchoolSvc, s.opts.Validate)
	registerSchoolAPI(g, jwt, s.opts.SchoolSvc)
	registerProfileAPI(g, jwt, s.opts.ProfileSvc, s.opts.Sheets)
	registerAttendanceAPI(g, jwt, s.opts.AttendanceSvc, s.opts.Validate)
	registerCourseworkAPI(g, jwt, s.opts.CourseworkSvc, s.opts.Validate)
	registerExamAPI(g, jwt, s.opts.ExamSvc, s.opts.Validate)
	registerFinanceAPI(g, jwt, s.opts.FinanceSvc, s.opts.Validate)
	registerMessageAPI(g, jwt, s.opts.MessageSvc, s.opts.Validate)
	registerReportAPI(g, jwt, s.opts.ReportSvc)
	registerUploadAPI(g, jwt, s.opts.Files, conf.Uploads.MaxUploadBytes())
	registerAdmissionAPI(g, jwt, s.opts.AdmissionSvc, s.opts.Validate)
	registerLearningAPI(g, jwt, s.opts.LearningSvc, s.opts.Validate)
}

// Start serves HTTP until Shutdown or Close is called. Serving errors are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	srv := &http.Server{
		Addr:         s.opts.Conf.Server.Address,
		ReadTimeout:  s.opts.Conf.Server.ReadTimeout,
		WriteTimeout: s.opts.Conf.Server.WriteTimeout,
	}
	if err := s.app.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

// Tokens is the issuer of the access tokens accepted by the server.
func (s *Server) Tokens() *TokenIssuer {
	return s.tokens
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"name":  s.opts.Conf.AppName + " API",
		"docs":  "https://github.com/trezcool/chikoro#rest-api",
		"build": s.opts.Conf.Build,
	})
}
