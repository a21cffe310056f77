package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chikoro/core/learning"
)

type learningRepository struct {
	db *sqlx.DB
}

var _ learning.Repository = (*learningRepository)(nil) // interface compliance check

func NewLearningRepository(db *sqlx.DB) *learningRepository {
	return &learningRepository{db: db}
}

func (repo learningRepository) QueryMaterials(ctx context.Context, filter learning.MaterialFilter) ([]learning.Material, error) {
	var cond conditions
	cond.add("m.is_published = ?", true)
	if filter.ClassID != "" {
		cond.add("m.class_id = ?", filter.ClassID)
	}
	if filter.StudentID != "" {
		cond.add("m.class_id IN (SELECT class_id FROM student_classes WHERE student_id = ?)", filter.StudentID)
	}

	materials := []learning.Material{}
	err := selectAll(ctx, repo.db, &materials, `
		SELECT m.*, sub.name AS subject_name, c.name AS class_name
		FROM learning_materials m
		JOIN subjects sub ON sub.id = m.subject_id
		JOIN classes c ON c.id = m.class_id`+cond.where()+`
		ORDER BY m.created_at DESC`, cond.args...)
	return materials, trap(err, learning.ErrNotFound, "querying materials")
}

func (repo learningRepository) CreateMaterial(ctx context.Context, m learning.Material) (learning.Material, error) {
	_, err := exec(ctx, repo.db, `
		INSERT INTO learning_materials
			(id, class_id, subject_id, uploaded_by, title, description, file_path, file_name, is_published, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ClassID, m.SubjectID, m.UploadedBy, m.Title, m.Description, m.FilePath, m.FileName, m.IsPublished, m.CreatedAt)
	return m, trap(err, learning.ErrNotFound, "inserting material")
}

func (repo learningRepository) QueryLibrary(ctx context.Context, category string) ([]learning.LibraryItem, error) {
	var cond conditions
	cond.add("is_public = ?", true)
	if category != "" {
		cond.add("category = ?", category)
	}
	items := []learning.LibraryItem{}
	err := selectAll(ctx, repo.db, &items,
		"SELECT * FROM library_items"+cond.where()+" ORDER BY created_at DESC", cond.args...)
	return items, trap(err, learning.ErrNotFound, "querying library")
}

func (repo learningRepository) CreateLibraryItem(ctx context.Context, item learning.LibraryItem) (learning.LibraryItem, error) {
	_, err := exec(ctx, repo.db, `
		INSERT INTO library_items (id, title, author, category, description, file_path, file_name, is_public, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.Author, item.Category, item.Description, item.FilePath, item.FileName, item.IsPublic, item.CreatedAt)
	return item, trap(err, learning.ErrNotFound, "inserting library item")
}
