package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chikoro/core/school"
)

const classSelect = `
	SELECT c.id, c.name, c.form_id, c.stream_id, c.academic_year_id, c.created_at,
		f.name AS form_name, s.name AS stream_name, ay.name AS academic_year_name
	FROM classes c
	JOIN forms f ON f.id = c.form_id
	JOIN streams s ON s.id = c.stream_id
	JOIN academic_years ay ON ay.id = c.academic_year_id`

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo schoolRepository) CurrentAcademicYear(ctx context.Context) (school.AcademicYear, error) {
	var ay school.AcademicYear
	err := get(ctx, repo.db, &ay,
		"SELECT * FROM academic_years WHERE is_current = ? ORDER BY start_date DESC LIMIT 1", true)
	return ay, trap(err, school.ErrNotFound, "getting current academic year")
}

func (repo schoolRepository) GetAcademicYear(ctx context.Context, id string) (school.AcademicYear, error) {
	var ay school.AcademicYear
	err := get(ctx, repo.db, &ay, "SELECT * FROM academic_years WHERE id = ?", id)
	return ay, trap(err, school.ErrNotFound, "getting academic year")
}

func (repo schoolRepository) QueryAcademicYears(ctx context.Context) ([]school.AcademicYear, error) {
	years := []school.AcademicYear{}
	err := selectAll(ctx, repo.db, &years, "SELECT * FROM academic_years ORDER BY start_date DESC")
	return years, trap(err, school.ErrNotFound, "querying academic years")
}

// CreateAcademicYear makes ay the only current year when ay.IsCurrent is set.
func (repo schoolRepository) CreateAcademicYear(ctx context.Context, ay school.AcademicYear) (school.AcademicYear, error) {
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if ay.IsCurrent {
			if _, err := exec(ctx, tx, "UPDATE academic_years SET is_current = ?", false); err != nil {
				return err
			}
		}
		_, err := exec(ctx, tx,
			"INSERT INTO academic_years (id, name, start_date, end_date, is_current, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			ay.ID, ay.Name, ay.StartDate, ay.EndDate, ay.IsCurrent, ay.CreatedAt)
		return err
	})
	return ay, trap(err, school.ErrNotFound, "inserting academic year")
}

func (repo schoolRepository) QueryTerms(ctx context.Context, academicYearID string) ([]school.Term, error) {
	terms := []school.Term{}
	err := selectAll(ctx, repo.db, &terms,
		"SELECT * FROM terms WHERE academic_year_id = ? ORDER BY term_number", academicYearID)
	return terms, trap(err, school.ErrNotFound, "querying terms")
}

func (repo schoolRepository) CreateTerm(ctx context.Context, term school.Term) (school.Term, error) {
	_, err := exec(ctx, repo.db,
		"INSERT INTO terms (id, academic_year_id, name, term_number, start_date, end_date) VALUES (?, ?, ?, ?, ?, ?)",
		term.ID, term.AcademicYearID, term.Name, term.TermNumber, term.StartDate, term.EndDate)
	return term, trap(err, school.ErrNotFound, "inserting term")
}

func (repo schoolRepository) QueryForms(ctx context.Context) ([]school.Form, error) {
	forms := []school.Form{}
	err := selectAll(ctx, repo.db, &forms, "SELECT * FROM forms ORDER BY display_order, name")
	return forms, trap(err, school.ErrNotFound, "querying forms")
}

func (repo schoolRepository) CreateForm(ctx context.Context, form school.Form) (school.Form, error) {
	_, err := exec(ctx, repo.db,
		"INSERT INTO forms (id, name, level, display_order) VALUES (?, ?, ?, ?)",
		form.ID, form.Name, form.Level, form.DisplayOrder)
	return form, trap(err, school.ErrNotFound, "inserting form")
}

func (repo schoolRepository) QueryStreams(ctx context.Context, formID string) ([]school.Stream, error) {
	var cond conditions
	if formID != "" {
		cond.add("s.form_id = ?", formID)
	}
	streams := []school.Stream{}
	err := selectAll(ctx, repo.db, &streams,
		"SELECT s.id, s.form_id, s.name FROM streams s JOIN forms f ON f.id = s.form_id"+cond.where()+
			" ORDER BY f.display_order, s.name", cond.args...)
	return streams, trap(err, school.ErrNotFound, "querying streams")
}

func (repo schoolRepository) GetStream(ctx context.Context, id string) (school.Stream, error) {
	var stream school.Stream
	err := get(ctx, repo.db, &stream, "SELECT * FROM streams WHERE id = ?", id)
	return stream, trap(err, school.ErrNotFound, "getting stream")
}

func (repo schoolRepository) CreateStream(ctx context.Context, stream school.Stream) (school.Stream, error) {
	_, err := exec(ctx, repo.db,
		"INSERT INTO streams (id, form_id, name) VALUES (?, ?, ?)", stream.ID, stream.FormID, stream.Name)
	return stream, trap(err, school.ErrNotFound, "inserting stream")
}

func (repo schoolRepository) QueryClasses(ctx context.Context, filter school.ClassFilter) ([]school.Class, error) {
	var cond conditions
	if filter.AcademicYearID != "" {
		cond.add("c.academic_year_id = ?", filter.AcademicYearID)
	}
	if filter.FormID != "" {
		cond.add("c.form_id = ?", filter.FormID)
	}
	classes := []school.Class{}
	err := selectAll(ctx, repo.db, &classes,
		classSelect+cond.where()+" ORDER BY f.display_order, s.name", cond.args...)
	return classes, trap(err, school.ErrNotFound, "querying classes")
}

func (repo schoolRepository) GetClass(ctx context.Context, id string) (school.Class, error) {
	var class school.Class
	err := get(ctx, repo.db, &class, classSelect+" WHERE c.id = ?", id)
	return class, trap(err, school.ErrNotFound, "getting class")
}

func (repo schoolRepository) CreateClass(ctx context.Context, class school.Class) (school.Class, error) {
	_, err := exec(ctx, repo.db,
		"INSERT INTO classes (id, name, form_id, stream_id, academic_year_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		class.ID, class.Name, class.FormID, class.StreamID, class.AcademicYearID, class.CreatedAt)
	return class, trap(err, school.ErrNotFound, "inserting class")
}

func (repo schoolRepository) QuerySubjects(ctx context.Context) ([]school.Subject, error) {
	subjects := []school.Subject{}
	err := selectAll(ctx, repo.db, &subjects, "SELECT * FROM subjects ORDER BY name")
	return subjects, trap(err, school.ErrNotFound, "querying subjects")
}

func (repo schoolRepository) CreateSubject(ctx context.Context, subject school.Subject) (school.Subject, error) {
	_, err := exec(ctx, repo.db,
		"INSERT INTO subjects (id, name, code, created_at) VALUES (?, ?, ?, ?)",
		subject.ID, subject.Name, subject.Code, subject.CreatedAt)
	return subject, trap(err, school.ErrNotFound, "inserting subject")
}

func (repo schoolRepository) GetSettings(ctx context.Context) (school.Settings, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := selectAll(ctx, repo.db, &rows, "SELECT key, value FROM institution_settings"); err != nil {
		return nil, trap(err, school.ErrNotFound, "querying settings")
	}
	settings := make(school.Settings, len(rows))
	for _, r := range rows {
		settings[r.Key] = r.Value
	}
	return settings, nil
}

func (repo schoolRepository) SaveSettings(ctx context.Context, settings school.Settings) error {
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for k, v := range settings {
			_, err := exec(ctx, tx, `
				INSERT INTO institution_settings (key, value) VALUES (?, ?)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value`, k, v)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return trap(err, school.ErrNotFound, "saving settings")
}

func (repo schoolRepository) QueryNews(ctx context.Context, limit int) ([]school.NewsItem, error) {
	news := []school.NewsItem{}
	err := selectAll(ctx, repo.db, &news, `
		SELECT * FROM news_events WHERE is_published = ?
		ORDER BY event_date IS NULL, event_date DESC, created_at DESC LIMIT ?`, true, limit)
	return news, trap(err, school.ErrNotFound, "querying news")
}

func (repo schoolRepository) CreateNews(ctx context.Context, item school.NewsItem) (school.NewsItem, error) {
	_, err := exec(ctx, repo.db,
		"INSERT INTO news_events (id, title, content, event_date, is_published, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		item.ID, item.Title, item.Content, item.EventDate, item.IsPublished, item.CreatedAt)
	return item, trap(err, school.ErrNotFound, "inserting news item")
}
