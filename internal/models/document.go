package models

import "time"

// DocumentType categorises uploaded files.
type DocumentType string

const (
	DocCertificate DocumentType = "certificate"
	DocTranscript  DocumentType = "transcript"
	DocIDDocument  DocumentType = "id_document"
	DocMedical     DocumentType = "medical"
	DocLetter      DocumentType = "letter"
	DocContract    DocumentType = "contract"
	DocOther       DocumentType = "other"
)

// IsValid reports whether the document type is one of the known values.
func (d DocumentType) IsValid() bool {
	switch d {
	case DocCertificate, DocTranscript, DocIDDocument, DocMedical, DocLetter, DocContract, DocOther:
		return true
	default:
		return false
	}
}

// Document is an uploaded file attached to at most one profile. With neither
// owner set it is a general school document.
type Document struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Title        string       `gorm:"size:255;not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	DocumentType DocumentType `gorm:"size:50;default:other" json:"document_type"`

	FilePath    string `gorm:"size:512;not null" json:"-"`
	FileName    string `gorm:"size:255;not null" json:"file_name"`
	FileSize    int64  `gorm:"not null" json:"file_size"`
	ContentType string `gorm:"size:128" json:"content_type"`

	StudentID *uint    `json:"student_id"`
	Student   *Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	TeacherID *uint    `json:"teacher_id"`
	Teacher   *Teacher `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"teacher,omitempty"`

	UploadedByID *uint      `json:"uploaded_by"`
	UploadedBy   *User      `gorm:"foreignKey:UploadedByID;constraint:OnDelete:SET NULL" json:"-"`
	IsVerified   bool       `gorm:"default:false" json:"is_verified"`
	VerifiedByID *uint      `json:"verified_by"`
	VerifiedBy   *User      `gorm:"foreignKey:VerifiedByID;constraint:OnDelete:SET NULL" json:"-"`
	VerifiedAt   *time.Time `json:"verified_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
