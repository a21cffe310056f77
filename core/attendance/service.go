package attendance

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/user"
)

var ErrNotFound = errors.Wrap(core.ErrNotFound, "attendance")

type (
	Repository interface {
		// QueryAttendance returns the records matching filter, newest date first then by student last name.
		QueryAttendance(ctx context.Context, filter Filter) ([]Record, error)
		// UpsertAttendance inserts rec or updates the status and notes of the (student, class, date) record.
		UpsertAttendance(ctx context.Context, rec Record) error
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

func (svc *Service) ClassAttendance(ctx context.Context, classID string, from, to core.Date) ([]Record, error) {
	return svc.repo.QueryAttendance(ctx, Filter{ClassID: classID, FromDate: from, ToDate: to})
}

func (svc *Service) StudentAttendance(ctx context.Context, actor user.Actor, studentID string, from, to core.Date) ([]Record, error) {
	if err := svc.access.CheckStudentAccess(ctx, actor, studentID); err != nil {
		return nil, err
	}
	return svc.repo.QueryAttendance(ctx, Filter{StudentID: studentID, FromDate: from, ToDate: to})
}

func markedBy(actor user.Actor) null.String {
	return null.NewString(actor.TeacherID, actor.TeacherID != "")
}

// Mark records the attendance of one student in classID. Marking twice the same day overwrites the first mark.
func (svc *Service) Mark(ctx context.Context, actor user.Actor, classID string, m Mark) error {
	now := core.Now()
	return svc.repo.UpsertAttendance(ctx, Record{
		ID:        core.NewID(),
		StudentID: m.StudentID,
		ClassID:   classID,
		Date:      m.Date,
		Status:    m.Status,
		Notes:     m.Notes,
		MarkedBy:  markedBy(actor),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// BulkMark records a register for classID. Entries without student or with an unknown status are skipped;
// a missing status means PRESENT. It returns the number of saved entries.
func (svc *Service) BulkMark(ctx context.Context, actor user.Actor, classID string, bm BulkMark) (int, error) {
	var saved int
	now := core.Now()
	for _, e := range bm.Entries {
		sid := core.CleanString(e.StudentID)
		status := core.CleanString(e.Status)
		if status == "" {
			status = StatusPresent
		}
		if sid == "" || !IsValidStatus(status) {
			continue
		}
		err := svc.repo.UpsertAttendance(ctx, Record{
			ID:        core.NewID(),
			StudentID: sid,
			ClassID:   classID,
			Date:      bm.Date,
			Status:    status,
			MarkedBy:  markedBy(actor),
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return saved, errors.Wrapf(err, "marking student %s", sid)
		}
		saved++
	}
	return saved, nil
}
