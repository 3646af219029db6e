package dto

import (
	"time"

	"github.com/darsa-school/darsa-api/internal/models"
)

// DocumentUploadRequest is the metadata accompanying a file upload. At most
// one of StudentID/TeacherID may be set; with neither, the document is
// general.
type DocumentUploadRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description"`
	DocumentType string `json:"document_type"`
	StudentID    *uint  `json:"student_id"`
	TeacherID    *uint  `json:"teacher_id"`
}

// DocumentVerifyRequest toggles verification on a document.
type DocumentVerifyRequest struct {
	IsVerified bool `json:"is_verified"`
}

// DocumentResponse is the public shape of a stored document.
type DocumentResponse struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	DocumentType string     `json:"document_type"`
	FileName     string     `json:"file_name"`
	FileSize     int64      `json:"file_size"`
	ContentType  string     `json:"content_type,omitempty"`
	StudentID    *uint      `json:"student_id,omitempty"`
	TeacherID    *uint      `json:"teacher_id,omitempty"`
	UploadedBy   *uint      `json:"uploaded_by,omitempty"`
	IsVerified   bool       `json:"is_verified"`
	VerifiedBy   *uint      `json:"verified_by,omitempty"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewDocumentResponse maps a document model to its response shape.
func NewDocumentResponse(doc models.Document) DocumentResponse {
	return DocumentResponse{
		ID:           doc.ID,
		Title:        doc.Title,
		Description:  doc.Description,
		DocumentType: string(doc.DocumentType),
		FileName:     doc.FileName,
		FileSize:     doc.FileSize,
		ContentType:  doc.ContentType,
		StudentID:    doc.StudentID,
		TeacherID:    doc.TeacherID,
		UploadedBy:   doc.UploadedByID,
		IsVerified:   doc.IsVerified,
		VerifiedBy:   doc.VerifiedByID,
		VerifiedAt:   doc.VerifiedAt,
		CreatedAt:    doc.CreatedAt,
	}
}
