package admission

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/profile"
	"github.com/trezcool/chikoro/core/user"
)

var (
	// errors
	ErrNotFound      = errors.Wrap(core.ErrNotFound, "application")
	ErrNotReviewable = errors.Wrap(core.ErrNotFound, "application not found or already processed")
)

type (
	Repository interface {
		QueryApplications(ctx context.Context, status string, page core.Page) ([]Application, error)
		GetApplication(ctx context.Context, id string) (Application, error)
		CreateApplication(ctx context.Context, app Application) (Application, error)
		QueryDocuments(ctx context.Context, applicationID string) ([]Document, error)
		CreateDocument(ctx context.Context, doc Document) (Document, error)
		// ReviewApplication stores the review of a PENDING application. When student is not nil it is created
		// and linked to the application in the same transaction. It returns ErrNotReviewable when the
		// application is no longer PENDING.
		ReviewApplication(ctx context.Context, app Application, student *profile.Student) (Application, error)
	}

	StreamChecker interface {
		CheckStream(ctx context.Context, formID, streamID string) error
	}

	Service struct {
		repo      Repository
		streams   StreamChecker
		mailSvc   core.EmailService
		publisher core.Publisher
		logger    core.Logger
	}

	// Event is published when an application is submitted or reviewed.
	Event struct {
		ApplicationID string `json:"application_id"`
		Status        string `json:"status"`
		Email         string `json:"email"`
		StudentID     string `json:"student_id,omitempty"`
	}
)

func NewService(
	repo Repository,
	streams StreamChecker,
	mailSvc core.EmailService,
	publisher core.Publisher,
	logger core.Logger,
) *Service {
	return &Service{repo: repo, streams: streams, mailSvc: mailSvc, publisher: publisher, logger: logger}
}

// Submit stores a PENDING application, acknowledges it by email and announces it.
func (svc *Service) Submit(ctx context.Context, na NewApplication) (Application, error) {
	if err := svc.streams.CheckStream(ctx, na.DesiredFormID, na.IntendedStreamID); err != nil {
		return Application{}, err
	}

	now := core.Now()
	app, err := svc.repo.CreateApplication(ctx, Application{
		ID:               core.NewID(),
		FirstName:        na.FirstName,
		LastName:         na.LastName,
		Email:            na.Email,
		Phone:            na.Phone,
		DateOfBirth:      na.DateOfBirth,
		Gender:           na.Gender,
		Address:          na.Address,
		DesiredFormID:    null.StringFrom(na.DesiredFormID),
		IntendedStreamID: null.StringFrom(na.IntendedStreamID),
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return Application{}, errors.Wrap(err, "creating application")
	}

	svc.notify(ctx, app, "Application received", "application_received", core.EventApplicationReceived)
	return app, nil
}

func (svc *Service) notify(ctx context.Context, app Application, subject, template, event string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: app.FirstName + " " + app.LastName, Address: app.Email}},
		Subject:      subject,
		TemplateName: template,
		TemplateData: app,
	})
	evt := Event{ApplicationID: app.ID, Status: app.Status, Email: app.Email, StudentID: app.StudentID.String}
	if err := svc.publisher.Publish(ctx, event, evt); err != nil {
		svc.logger.Error("admission: publishing "+event, err)
	}
}

// AddDocument attaches an uploaded file to an application still PENDING.
func (svc *Service) AddDocument(ctx context.Context, applicationID string, nd NewDocument) (Document, error) {
	app, err := svc.repo.GetApplication(ctx, applicationID)
	if err != nil {
		if core.IsNotFound(err) {
			return Document{}, ErrNotReviewable
		}
		return Document{}, err
	}
	if app.Status != StatusPending {
		return Document{}, ErrNotReviewable
	}
	return svc.repo.CreateDocument(ctx, Document{
		ID:            core.NewID(),
		ApplicationID: app.ID,
		DocumentType:  nd.DocumentType,
		FilePath:      nd.FilePath,
		FileName:      nd.FileName,
		CreatedAt:     core.Now(),
	})
}

func (svc *Service) Applications(ctx context.Context, status string, page core.Page) ([]Application, error) {
	return svc.repo.QueryApplications(ctx, core.CleanString(status), page)
}

func (svc *Service) Get(ctx context.Context, id string) (ApplicationDetail, error) {
	app, err := svc.repo.GetApplication(ctx, id)
	if err != nil {
		return ApplicationDetail{}, err
	}
	docs, err := svc.repo.QueryDocuments(ctx, app.ID)
	if err != nil {
		return ApplicationDetail{}, errors.Wrap(err, "querying documents")
	}
	return ApplicationDetail{Application: app, Documents: docs}, nil
}

// Review approves or rejects a PENDING application. An approved applicant becomes a student.
func (svc *Service) Review(ctx context.Context, actor user.Actor, id string, r Review) (Application, error) {
	app, err := svc.repo.GetApplication(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return Application{}, ErrNotReviewable
		}
		return Application{}, err
	}
	if app.Status != StatusPending {
		return Application{}, ErrNotReviewable
	}

	now := core.Now()
	app.Status = r.Status
	app.ReviewNotes = r.ReviewNotes
	app.ReviewedBy = null.StringFrom(actor.UserID)
	app.ReviewedAt = null.TimeFrom(now)
	app.UpdatedAt = now

	var student *profile.Student
	if r.Status == StatusApproved {
		student = &profile.Student{
			ID:               core.NewID(),
			FirstName:        app.FirstName,
			LastName:         app.LastName,
			DateOfBirth:      app.DateOfBirth,
			Gender:           app.Gender,
			Phone:            app.Phone,
			EnrollmentStatus: profile.StatusActive,
			CreatedAt:        now,
		}
		app.StudentID = null.StringFrom(student.ID)
	}

	app, err = svc.repo.ReviewApplication(ctx, app, student)
	if err != nil {
		return Application{}, err
	}

	svc.notify(ctx, app, "Application "+app.Status, "application_reviewed", core.EventApplicationReviewed)
	return app, nil
}
