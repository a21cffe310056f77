package learning

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/user"
)

var ErrNotFound = errors.Wrap(core.ErrNotFound, "learning")

type (
	Repository interface {
		// QueryMaterials returns published materials, newest first.
		// filter.StudentID restricts them to the student's classes, filter.ClassID to one class.
		QueryMaterials(ctx context.Context, filter MaterialFilter) ([]Material, error)
		CreateMaterial(ctx context.Context, m Material) (Material, error)

		// QueryLibrary returns the public library items, newest first.
		QueryLibrary(ctx context.Context, category string) ([]LibraryItem, error)
		CreateLibraryItem(ctx context.Context, item LibraryItem) (LibraryItem, error)
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

func (svc *Service) Materials(ctx context.Context, actor user.Actor, filter MaterialFilter) ([]Material, error) {
	if filter.StudentID != "" {
		if err := svc.access.CheckStudentAccess(ctx, actor, filter.StudentID); err != nil {
			return nil, err
		}
		filter.ClassID = ""
	}
	return svc.repo.QueryMaterials(ctx, filter)
}

func (svc *Service) CreateMaterial(ctx context.Context, actor user.Actor, nm NewMaterial) (Material, error) {
	return svc.repo.CreateMaterial(ctx, Material{
		ID:          core.NewID(),
		ClassID:     nm.ClassID,
		SubjectID:   nm.SubjectID,
		UploadedBy:  null.NewString(actor.TeacherID, actor.TeacherID != ""),
		Title:       nm.Title,
		Description: nm.Description,
		FilePath:    core.CleanString(nm.FilePath),
		FileName:    core.CleanString(nm.FileName),
		IsPublished: true,
		CreatedAt:   core.Now(),
	})
}

func (svc *Service) Library(ctx context.Context, category string) ([]LibraryItem, error) {
	return svc.repo.QueryLibrary(ctx, core.CleanString(category))
}

func (svc *Service) CreateLibraryItem(ctx context.Context, item LibraryItem) (LibraryItem, error) {
	item.ID = core.NewID()
	item.IsPublic = true
	item.CreatedAt = core.Now()
	return svc.repo.CreateLibraryItem(ctx, item)
}
