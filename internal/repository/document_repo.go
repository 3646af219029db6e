package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/models"
)

// DocumentFilter narrows document listings. OwnerStudentID/OwnerTeacherID are
// set when a student or teacher may only see their own documents.
type DocumentFilter struct {
	StudentID      *uint
	TeacherID      *uint
	DocumentType   models.DocumentType
	GeneralOnly    bool
	UnverifiedOnly bool
}

// DocumentRepository persists document metadata; file bytes live in pkg/storage.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uint) (models.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]models.Document, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Document, error)
	Delete(ctx context.Context, id uint) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository constructs the document repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepository) GetByID(ctx context.Context, id uint) (models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return models.Document{}, err
	}

	return doc, nil
}

func (r *documentRepository) List(ctx context.Context, filter DocumentFilter) ([]models.Document, error) {
	query := r.db.WithContext(ctx).Model(&models.Document{})

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.GeneralOnly {
		query = query.Where("student_id IS NULL AND teacher_id IS NULL")
	}
	if filter.UnverifiedOnly {
		query = query.Where("is_verified = ?", false)
	}
	if filter.DocumentType != "" {
		query = query.Where("document_type = ?", filter.DocumentType)
	}

	var docs []models.Document
	err := query.Order("created_at DESC").Find(&docs).Error
	return docs, err
}

func (r *documentRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Document, error) {
	tx := r.db.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id)
	if err := tx.Updates(updates).Error; err != nil {
		return models.Document{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *documentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Document{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
