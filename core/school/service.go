package school

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
)

var (
	// errors
	ErrNotFound       = errors.Wrap(core.ErrNotFound, "school")
	ErrNoCurrentYear  = errors.Wrap(core.ErrNotFound, "no current academic year")
	ErrEmptySettings  = errors.New("no settings to save")
	ErrStreamMismatch = errors.New("stream does not belong to the selected form")
)

// public site cache keys
const (
	cacheKeySettings      = "public:settings"
	cacheKeyNews          = "public:news"
	cacheKeyForms         = "public:forms"
	cacheKeyStreamsPrefix = "public:streams:"

	publicNewsLimit = 20
)

type (
	Repository interface {
		CurrentAcademicYear(ctx context.Context) (AcademicYear, error)
		GetAcademicYear(ctx context.Context, id string) (AcademicYear, error)
		QueryAcademicYears(ctx context.Context) ([]AcademicYear, error)
		CreateAcademicYear(ctx context.Context, ay AcademicYear) (AcademicYear, error)

		QueryTerms(ctx context.Context, academicYearID string) ([]Term, error)
		CreateTerm(ctx context.Context, term Term) (Term, error)

		QueryForms(ctx context.Context) ([]Form, error)
		CreateForm(ctx context.Context, form Form) (Form, error)

		// QueryStreams returns the streams of formID, or all streams when formID is empty.
		QueryStreams(ctx context.Context, formID string) ([]Stream, error)
		GetStream(ctx context.Context, id string) (Stream, error)
		CreateStream(ctx context.Context, stream Stream) (Stream, error)

		QueryClasses(ctx context.Context, filter ClassFilter) ([]Class, error)
		GetClass(ctx context.Context, id string) (Class, error)
		CreateClass(ctx context.Context, class Class) (Class, error)

		QuerySubjects(ctx context.Context) ([]Subject, error)
		CreateSubject(ctx context.Context, subject Subject) (Subject, error)

		GetSettings(ctx context.Context) (Settings, error)
		SaveSettings(ctx context.Context, settings Settings) error

		// QueryNews returns the latest published news items, newest event first.
		QueryNews(ctx context.Context, limit int) ([]NewsItem, error)
		CreateNews(ctx context.Context, item NewsItem) (NewsItem, error)
	}

	// Service owns the school structure (years, terms, forms, streams, classes, subjects) and the public site data.
	// Public site reads go through the cache.
	Service struct {
		repo   Repository
		cache  core.Cache
		ttl    time.Duration
		logger core.Logger
	}
)

func NewService(repo Repository, cache core.Cache, conf *core.Config, logger core.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: conf.Cache.PublicTTL, logger: logger}
}

// cached fills dest from the cache, or with load on a miss and stores the result.
// Cache failures are logged and never fail the read.
func (svc *Service) cached(ctx context.Context, key string, dest interface{}, load func() error) error {
	hit, err := svc.cache.Get(ctx, key, dest)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("school: reading cache key %q", key), err)
	}
	if hit {
		return nil
	}
	if err = load(); err != nil {
		return err
	}
	if err = svc.cache.Set(ctx, key, dest, svc.ttl); err != nil {
		svc.logger.Warn(fmt.Sprintf("school: writing cache key %q", key), err)
	}
	return nil
}

func (svc *Service) invalidate(ctx context.Context, keys ...string) {
	if err := svc.cache.Delete(ctx, keys...); err != nil {
		svc.logger.Warn(fmt.Sprintf("school: invalidating cache keys %v", keys), err)
	}
}

// CurrentAcademicYear returns ErrNoCurrentYear when no year is flagged as current.
func (svc *Service) CurrentAcademicYear(ctx context.Context) (AcademicYear, error) {
	ay, err := svc.repo.CurrentAcademicYear(ctx)
	if core.IsNotFound(err) {
		return AcademicYear{}, ErrNoCurrentYear
	}
	return ay, err
}

// ResolveAcademicYear returns id when set, else the ID of the current academic year.
// An empty ID without error means there is no current year.
func (svc *Service) ResolveAcademicYear(ctx context.Context, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	ay, err := svc.repo.CurrentAcademicYear(ctx)
	if err != nil {
		if core.IsNotFound(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "getting current academic year")
	}
	return ay.ID, nil
}

func (svc *Service) AcademicYears(ctx context.Context) ([]AcademicYear, error) {
	return svc.repo.QueryAcademicYears(ctx)
}

func (svc *Service) GetAcademicYear(ctx context.Context, id string) (AcademicYear, error) {
	return svc.repo.GetAcademicYear(ctx, id)
}

// Terms lists the terms of academicYearID (default: the current year).
func (svc *Service) Terms(ctx context.Context, academicYearID string) ([]Term, error) {
	ayID, err := svc.ResolveAcademicYear(ctx, academicYearID)
	if err != nil || ayID == "" {
		return []Term{}, err
	}
	return svc.repo.QueryTerms(ctx, ayID)
}

func (svc *Service) Forms(ctx context.Context) ([]Form, error) {
	var forms []Form
	err := svc.cached(ctx, cacheKeyForms, &forms, func() (err error) {
		forms, err = svc.repo.QueryForms(ctx)
		return
	})
	return forms, err
}

func (svc *Service) Streams(ctx context.Context, formID string) ([]Stream, error) {
	var streams []Stream
	err := svc.cached(ctx, cacheKeyStreamsPrefix+formID, &streams, func() (err error) {
		streams, err = svc.repo.QueryStreams(ctx, formID)
		return
	})
	return streams, err
}

// CheckStream ensures the stream exists and belongs to formID.
func (svc *Service) CheckStream(ctx context.Context, formID, streamID string) error {
	stream, err := svc.repo.GetStream(ctx, streamID)
	if err != nil {
		if core.IsNotFound(err) {
			return core.NewFieldError("intended_stream_id", ErrStreamMismatch.Error())
		}
		return errors.Wrap(err, "getting stream")
	}
	if stream.FormID != formID {
		return core.NewFieldError("intended_stream_id", ErrStreamMismatch.Error())
	}
	return nil
}

// Classes lists the classes of filter.AcademicYearID (default: the current year).
func (svc *Service) Classes(ctx context.Context, filter ClassFilter) ([]Class, error) {
	ayID, err := svc.ResolveAcademicYear(ctx, filter.AcademicYearID)
	if err != nil || ayID == "" {
		return []Class{}, err
	}
	filter.AcademicYearID = ayID
	return svc.repo.QueryClasses(ctx, filter)
}

func (svc *Service) GetClass(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

func (svc *Service) Subjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

func (svc *Service) Settings(ctx context.Context) (Settings, error) {
	var settings Settings
	err := svc.cached(ctx, cacheKeySettings, &settings, func() (err error) {
		settings, err = svc.repo.GetSettings(ctx)
		return
	})
	return settings, err
}

// SaveSettings upserts the given keys; the other settings are left untouched.
func (svc *Service) SaveSettings(ctx context.Context, settings Settings) (Settings, error) {
	clean := make(Settings, len(settings))
	for k, v := range settings {
		if k = core.CleanString(k); k != "" {
			clean[k] = v
		}
	}
	if len(clean) == 0 {
		return nil, core.NewValidationError(ErrEmptySettings)
	}
	if err := svc.repo.SaveSettings(ctx, clean); err != nil {
		return nil, errors.Wrap(err, "saving settings")
	}
	svc.invalidate(ctx, cacheKeySettings)
	return svc.repo.GetSettings(ctx)
}

func (svc *Service) News(ctx context.Context) ([]NewsItem, error) {
	var news []NewsItem
	err := svc.cached(ctx, cacheKeyNews, &news, func() (err error) {
		news, err = svc.repo.QueryNews(ctx, publicNewsLimit)
		return
	})
	return news, err
}

func (svc *Service) CreateNews(ctx context.Context, nn NewNewsItem) (NewsItem, error) {
	item, err := svc.repo.CreateNews(ctx, NewsItem{
		ID:          core.NewID(),
		Title:       nn.Title,
		Content:     nn.Content,
		EventDate:   nn.EventDate,
		IsPublished: nn.IsPublished,
		CreatedAt:   core.Now(),
	})
	if err != nil {
		return NewsItem{}, errors.Wrap(err, "creating news item")
	}
	svc.invalidate(ctx, cacheKeyNews)
	return item, nil
}

// The Create* methods below set up the school structure (admin seeding, imports).

func (svc *Service) CreateAcademicYear(ctx context.Context, ay AcademicYear) (AcademicYear, error) {
	ay.ID = core.NewID()
	ay.CreatedAt = core.Now()
	return svc.repo.CreateAcademicYear(ctx, ay)
}

func (svc *Service) CreateTerm(ctx context.Context, term Term) (Term, error) {
	term.ID = core.NewID()
	return svc.repo.CreateTerm(ctx, term)
}

func (svc *Service) CreateForm(ctx context.Context, form Form) (Form, error) {
	form.ID = core.NewID()
	form, err := svc.repo.CreateForm(ctx, form)
	if err == nil {
		svc.invalidate(ctx, cacheKeyForms)
	}
	return form, err
}

func (svc *Service) CreateStream(ctx context.Context, stream Stream) (Stream, error) {
	stream.ID = core.NewID()
	stream, err := svc.repo.CreateStream(ctx, stream)
	if err == nil {
		svc.invalidate(ctx, cacheKeyStreamsPrefix, cacheKeyStreamsPrefix+stream.FormID)
	}
	return stream, err
}

func (svc *Service) CreateClass(ctx context.Context, class Class) (Class, error) {
	class.ID = core.NewID()
	class.CreatedAt = core.Now()
	if _, err := svc.repo.CreateClass(ctx, class); err != nil {
		return Class{}, err
	}
	return svc.repo.GetClass(ctx, class.ID)
}

func (svc *Service) CreateSubject(ctx context.Context, subject Subject) (Subject, error) {
	subject.ID = core.NewID()
	subject.CreatedAt = core.Now()
	return svc.repo.CreateSubject(ctx, subject)
}
